package ec2meta

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hairyhenderson/go-ec2meta/internal/tests/fakeimds"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	ctx := context.Background()
	srv := fakeimds.NewServer(t)
	g := newFakeGetter(t, srv)

	res, err := g.All(ctx)
	require.NoError(t, err)
	assert.Len(t, res, len(Fields()))
	assert.Equal(t, fakeimds.InstanceID, res.Scalar("InstanceId"))
	assert.Equal(t, "us-east-1", res.Scalar("Region"))
	assert.Equal(t, "1234,john,reboot,true\n", res.Scalar("UserData"))
	assert.Equal(t, "sdcs", res["BlockDeviceMapping"].(map[string]string)["swap"])

	path, err := g.CachePath(Fields())
	require.NoError(t, err)
	assert.FileExists(t, path)

	before := srv.Requests()

	cached, err := g.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, res, cached)
	assert.Equal(t, before, srv.Requests(), "cached All must not make requests")
}

func TestAll_SharedCacheDir(t *testing.T) {
	ctx := context.Background()
	srv := fakeimds.NewServer(t)
	dir := t.TempDir()

	g, err := New(dir, WithEndpoint(fakeimds.ClosedEndpoint(t)))
	require.NoError(t, err)

	_, err = g.All(ctx)
	require.ErrorIs(t, err, ErrNotEC2)

	g, err = New(dir, WithEndpoint(srv.Endpoint), WithTimeout(5*time.Second))
	require.NoError(t, err)

	res, err := g.All(ctx)
	require.NoError(t, err)

	// a second Getter on the same directory reads the cached result, even
	// though it can't reach the metadata service
	g, err = New(dir, WithEndpoint(fakeimds.ClosedEndpoint(t)))
	require.NoError(t, err)

	cached, err := g.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, res, cached)
}

func TestMultiple(t *testing.T) {
	ctx := context.Background()
	srv := fakeimds.NewServer(t)
	g := newFakeGetter(t, srv)

	res, err := g.Multiple(ctx, []string{"Region", "InstanceId", "PublicKeys"})
	require.NoError(t, err)
	assert.Equal(t, Result{
		"Region":     "us-east-1",
		"InstanceId": fakeimds.InstanceID,
		"PublicKeys": []PublicKey{{KeyName: "my-key", Index: "0", Format: "openssh-key", Key: fakeimds.PublicKey}},
	}, res)

	before := srv.Requests()

	// same set in a different order hits the same entry
	cached, err := g.Multiple(ctx, []string{"PublicKeys", "InstanceId", "Region"})
	require.NoError(t, err)
	assert.Equal(t, res, cached)
	assert.Equal(t, before, srv.Requests())

	// a different set does not
	_, err = g.Multiple(ctx, []string{"Region"})
	require.NoError(t, err)
	assert.Greater(t, srv.Requests(), before)
}

func TestMultiple_UnsupportedField(t *testing.T) {
	srv := fakeimds.NewServer(t)
	g := newFakeGetter(t, srv)

	_, err := g.Multiple(context.Background(), []string{"Region", "Flavour"})
	require.ErrorIs(t, err, ErrUnsupportedField)
	assert.Equal(t, int64(0), srv.Requests())

	entries, err := os.ReadDir(g.CacheDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAll_MissingFields(t *testing.T) {
	ctx := context.Background()
	srv := fakeimds.NewServer(t, fakeimds.Without(
		"latest/meta-data/kernel-id",
		"latest/meta-data/ramdisk-id",
		"latest/meta-data/product-codes",
		"latest/meta-data/public-ipv4",
		"latest/user-data",
	))
	g := newFakeGetter(t, srv)

	res, err := g.All(ctx)
	require.NoError(t, err)
	assert.Len(t, res, len(Fields())-5)
	assert.Equal(t, fakeimds.InstanceID, res.Scalar("InstanceId"))

	for _, name := range []string{"KernelId", "RamdiskId", "ProductCodes", "PublicIpv4", "UserData"} {
		_, ok := res[name]
		assert.False(t, ok, name)
	}

	// absent fields stay absent when read back from the cache
	before := srv.Requests()

	cached, err := g.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, res, cached)
	assert.Equal(t, before, srv.Requests())
}

func TestMultiple_CompositeFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	srv := fakeimds.NewServer(t, fakeimds.Without("latest/meta-data/block-device-mapping/swap"))
	g := newFakeGetter(t, srv)

	names := []string{"InstanceId", "BlockDeviceMapping"}

	_, err := g.Multiple(ctx, names)
	require.ErrorIs(t, err, fs.ErrNotExist)

	path, err := g.CachePath(names)
	require.NoError(t, err)
	assert.NoFileExists(t, path)
}

func TestMultiple_NotEC2IsFatal(t *testing.T) {
	g, err := New(t.TempDir(), WithEndpoint(fakeimds.ClosedEndpoint(t)))
	require.NoError(t, err)

	res, err := g.Multiple(context.Background(), []string{"KernelId"})
	require.ErrorIs(t, err, ErrNotEC2)
	assert.Nil(t, res)
}

func TestMultiple_NullEntryIsAMiss(t *testing.T) {
	g := newDummyGetter(t)

	path, err := g.CachePath([]string{"Region"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`null`), 0o600))

	res, err := g.Multiple(context.Background(), []string{"Region"})
	require.NoError(t, err)
	assert.Equal(t, Result{"Region": "ap-northeast-1"}, res)
}

func TestMultiple_StaleEntryIsReturned(t *testing.T) {
	g, err := New(t.TempDir(), WithEndpoint(fakeimds.ClosedEndpoint(t)))
	require.NoError(t, err)

	path, err := g.CachePath([]string{"Region"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`{"Region":"mars-north-1"}`), 0o600))

	res, err := g.Multiple(context.Background(), []string{"Region"})
	require.NoError(t, err)
	assert.Equal(t, Result{"Region": "mars-north-1"}, res)
}

func TestMultiple_UndecodableEntryIsAMiss(t *testing.T) {
	g := newDummyGetter(t)

	path, err := g.CachePath([]string{"Region"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	res, err := g.Multiple(context.Background(), []string{"Region"})
	require.NoError(t, err)
	assert.Equal(t, Result{"Region": "ap-northeast-1"}, res)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Region":"ap-northeast-1"}`, string(b))
}

func TestMultiple_CacheWriteFailure(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	dir := t.TempDir()

	g, err := New(dir, WithDummy(), WithLogger(log))
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))

	res, err := g.Multiple(context.Background(), []string{"InstanceType"})
	require.NoError(t, err)
	assert.Equal(t, Result{"InstanceType": "t3.micro"}, res)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "failed to write cache entry", entry.Message)
}

func TestCacheKey(t *testing.T) {
	g := newDummyGetter(t)

	a, err := g.CacheKey([]string{"Region", "InstanceId"})
	require.NoError(t, err)

	b, err := g.CacheKey([]string{"InstanceId", "Region"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	path, err := g.CachePath([]string{"InstanceId", "Region"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.CacheDir(), a+".json"), path)

	_, err = g.CacheKey([]string{"Flavour"})
	require.ErrorIs(t, err, ErrUnsupportedField)
}

func TestForget(t *testing.T) {
	ctx := context.Background()
	srv := fakeimds.NewServer(t)
	g := newFakeGetter(t, srv)

	names := []string{"Region"}

	_, err := g.Multiple(ctx, names)
	require.NoError(t, err)

	require.NoError(t, g.Forget(names))

	path, err := g.CachePath(names)
	require.NoError(t, err)
	assert.NoFileExists(t, path)

	before := srv.Requests()

	_, err = g.Multiple(ctx, names)
	require.NoError(t, err)
	assert.Greater(t, srv.Requests(), before)

	// forgetting twice is fine
	require.NoError(t, g.Forget([]string{"InstanceId"}))
	require.NoError(t, g.Forget([]string{"InstanceId"}))
}

func TestMultiple_LogsCacheHits(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	g := newDummyGetter(t, WithLogger(log))

	_, err := g.Multiple(context.Background(), []string{"Mac"})
	require.NoError(t, err)

	hook.Reset()

	_, err = g.Multiple(context.Background(), []string{"Mac"})
	require.NoError(t, err)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "cache hit", hook.LastEntry().Message)
	assert.Contains(t, hook.LastEntry().Data, "cache_key")
}
