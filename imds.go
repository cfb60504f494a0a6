package ec2meta

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
)

// imdsProvider reads values from the real metadata service through the AWS
// SDK's IMDS client.
type imdsProvider struct {
	client IMDSClient
}

var _ Provider = (*imdsProvider)(nil)

func (p *imdsProvider) Get(ctx context.Context, field Field, subPath string) (string, error) {
	var (
		rc  io.ReadCloser
		err error
	)

	if field.Kind == KindUserData {
		if strings.Trim(subPath, "/") != "" {
			return "", fmt.Errorf("%w: %s has no sub-paths", fs.ErrNotExist, field.Name)
		}

		rc, err = p.getUserData(ctx)
	} else {
		rc, err = p.getMetaData(ctx, field.requestPath(subPath))
	}

	if err != nil {
		return "", convertAWSError(err)
	}

	if rc == nil {
		return "", nil
	}

	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("readAll: %w", err)
	}

	return string(b), nil
}

func (p *imdsProvider) getMetaData(ctx context.Context, s string) (io.ReadCloser, error) {
	out, err := p.client.GetMetadata(ctx, &imds.GetMetadataInput{Path: s})
	if err != nil {
		return nil, fmt.Errorf("getMetaData: %w", err)
	}

	if out != nil && out.Content != nil {
		return out.Content, nil
	}

	return nil, nil
}

func (p *imdsProvider) getUserData(ctx context.Context) (io.ReadCloser, error) {
	out, err := p.client.GetUserData(ctx, &imds.GetUserDataInput{})
	if err != nil {
		return nil, fmt.Errorf("getUserData: %w", err)
	}

	if out != nil && out.Content != nil {
		return out.Content, nil
	}

	return nil, nil
}

// getClient returns the configured IMDS client, creating a default one on
// first use. Retries are disabled so that requests fail fast when not on EC2.
func (g *Getter) getClient(ctx context.Context) (IMDSClient, error) {
	if g.imdsclient != nil {
		return g.imdsclient, nil
	}

	// the SDK can only apply AWS_CA_BUNDLE to a buildable client, so a plain
	// *http.Client is used only when the caller supplies one
	var httpclient awsconfig.HTTPClient = awshttp.NewBuildableClient().WithTimeout(g.timeout)
	if g.httpclient != nil {
		httpclient = g.httpclient
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithHTTPClient(httpclient))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	g.imdsclient = imds.NewFromConfig(cfg, func(o *imds.Options) {
		o.Retryer = aws.NopRetryer{}
		o.Endpoint = g.base.Scheme + "://" + g.base.Host
	})

	return g.imdsclient, nil
}
