package ec2meta

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
)

// IMDSClient is the subset of the AWS SDK's IMDS client used by the Getter.
// *imds.Client satisfies it.
type IMDSClient interface {
	GetMetadata(ctx context.Context, params *imds.GetMetadataInput, optFns ...func(*imds.Options)) (*imds.GetMetadataOutput, error)
	GetUserData(ctx context.Context, params *imds.GetUserDataInput, optFns ...func(*imds.Options)) (*imds.GetUserDataOutput, error)
}

// Provider is a source of raw metadata values. Get returns the body for the
// given field and optional sub-path, exactly as the metadata service would:
// directories are newline-delimited lists of their children.
type Provider interface {
	Get(ctx context.Context, field Field, subPath string) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, field Field, subPath string) (string, error)

func (f ProviderFunc) Get(ctx context.Context, field Field, subPath string) (string, error) {
	return f(ctx, field, subPath)
}

// PublicKey is one entry of the public-keys field.
type PublicKey struct {
	KeyName string `json:"keyname"`
	Index   string `json:"index"`
	Format  string `json:"format"`
	Key     string `json:"key"`
}
