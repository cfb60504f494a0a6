//go:build !windows

package integration

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hairyhenderson/go-ec2meta"
	"github.com/hairyhenderson/go-ec2meta/internal/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gotestfs "gotest.tools/v3/fs"
	"gotest.tools/v3/icmd"
)

const mockBinary = "ec2-metadata-mock"

// startIMDSMock runs the amazon-ec2-metadata-mock binary on a free port and
// returns its address.
func startIMDSMock(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath(mockBinary); err != nil {
		t.Skipf("%s not found in PATH", mockBinary)
	}

	port, addr := freeport(t)

	mock := icmd.Command(mockBinary, "--port", strconv.Itoa(port))
	result := icmd.StartCmd(mock)

	t.Cleanup(func() {
		err := result.Cmd.Process.Kill()
		assert.NoError(t, err)

		_ = result.Cmd.Wait()

		t.Logf("%s logs:\n%s\n", mockBinary, result.Combined())
	})

	t.Logf("Fired up %s: %v", mockBinary, mock)

	err := waitForURL(context.Background(), t, "http://"+addr+"/latest/meta-data/instance-id")
	require.NoError(t, err)

	return "http://" + addr
}

func TestIMDSMock(t *testing.T) {
	ctx := context.Background()
	endpoint := startIMDSMock(t)
	cacheDir := gotestfs.NewDir(t, "ec2meta-inttests")

	g, err := ec2meta.New(cacheDir.Path(),
		ec2meta.WithEndpoint(tests.MustURL(endpoint)),
		ec2meta.WithTimeout(2*time.Second),
	)
	require.NoError(t, err)

	require.NoError(t, g.IsRunningOnEC2(ctx))

	id, err := g.InstanceID(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "i-"), id)

	names := []string{"InstanceId", "InstanceType", "Mac", "PublicKeys", "BlockDeviceMapping"}

	res, err := g.Multiple(ctx, names)
	require.NoError(t, err)
	assert.Equal(t, id, res.Scalar("InstanceId"))
	assert.NotEmpty(t, res.Scalar("InstanceType"))
	assert.NotEmpty(t, res["PublicKeys"])
	assert.Contains(t, res["BlockDeviceMapping"], "root")

	path, err := g.CachePath(names)
	require.NoError(t, err)
	assert.FileExists(t, path)

	// a new Getter pointed nowhere still reads the cached result
	g, err = ec2meta.New(cacheDir.Path(), ec2meta.WithEndpoint(tests.MustURL("http://127.0.0.1:1")))
	require.NoError(t, err)

	cached, err := g.Multiple(ctx, names)
	require.NoError(t, err)
	assert.Equal(t, res, cached)
}
