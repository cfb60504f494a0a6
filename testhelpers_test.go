package ec2meta

import (
	"testing"
	"time"

	"github.com/hairyhenderson/go-ec2meta/internal/tests/fakeimds"
	"github.com/stretchr/testify/require"
)

// newFakeGetter returns a Getter reading from srv with a fresh cache dir.
func newFakeGetter(t *testing.T, srv *fakeimds.Server, opts ...Option) *Getter {
	t.Helper()

	opts = append([]Option{
		WithEndpoint(srv.Endpoint),
		WithTimeout(5 * time.Second),
	}, opts...)

	g, err := New(t.TempDir(), opts...)
	require.NoError(t, err)

	return g
}

func newDummyGetter(t *testing.T, opts ...Option) *Getter {
	t.Helper()

	g, err := New(t.TempDir(), append([]Option{WithDummy()}, opts...)...)
	require.NoError(t, err)

	return g
}
