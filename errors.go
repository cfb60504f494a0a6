package ec2meta

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

var (
	// ErrCacheDir is returned by New when the cache directory can't be used.
	ErrCacheDir = errors.New("cache directory is not writable")

	// ErrNotEC2 is returned when the metadata endpoint can't be reached and
	// dummy mode is not enabled.
	ErrNotEC2 = errors.New("not running on EC2")

	// ErrUnsupportedField is returned for names missing from the field table.
	ErrUnsupportedField = errors.New("unsupported field")

	// ErrUnknownAccessor is returned by Getter.Call for names that aren't of
	// the form "get<FieldName>".
	ErrUnknownAccessor = errors.New("unknown accessor")
)

// convertAWSError converts an AWS error to an error suitable for returning
// from the package. We don't want to leak SDK error types.
func convertAWSError(err error) error {
	if err == nil {
		return nil
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", fs.ErrNotExist, respErr.Response.Status)
		default:
			return fmt.Errorf("%w: HTTP error %s", fs.ErrInvalid, respErr.Response.Status)
		}
	}

	var opErr *smithy.OperationError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%s: %w", opErr.OperationName, opErr.Err)
	}

	return err
}
