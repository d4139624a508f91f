package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayUploadAndDelete(t *testing.T) {
	ctx := context.Background()
	disk := NewMemoryDisk("http://cdn.test")
	gw := NewGateway(disk)
	gw.newID = func() string { return "fixed" }

	obj, err := gw.Upload(ctx, []byte("img"), "image/png", "lunches/7/")
	require.NoError(t, err)
	assert.Equal(t, "lunches/7/fixed.png", obj.Key)
	assert.Equal(t, "http://cdn.test/lunches/7/fixed.png", obj.URL)
	assert.True(t, disk.Exists(ctx, obj.Key))

	require.NoError(t, gw.Delete(ctx, obj.Key))
	assert.False(t, disk.Exists(ctx, obj.Key))
}

func TestGatewayWrapsDiskErrors(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("bucket unavailable")
	disk := NewMemoryDisk("")
	disk.PutErr = cause
	disk.DeleteErr = cause
	gw := NewGateway(disk)

	_, err := gw.Upload(ctx, []byte("x"), "image/jpeg", "")
	var upErr *UploadError
	require.ErrorAs(t, err, &upErr)
	assert.True(t, strings.HasPrefix(upErr.Key, "images/"))
	assert.ErrorIs(t, err, cause)

	err = gw.Delete(ctx, "lunches/1/a.jpg")
	var delErr *DeleteError
	require.ErrorAs(t, err, &delErr)
	assert.Equal(t, "lunches/1/a.jpg", delErr.Key)
	assert.ErrorIs(t, err, cause)
}

func TestIsManagedKey(t *testing.T) {
	assert.True(t, IsManagedKey("lunches/1/abc.jpg"))
	assert.False(t, IsManagedKey("seed-12"))
	assert.False(t, IsManagedKey("local-xyz"))
	assert.False(t, IsManagedKey(""))
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":                 "jpg",
		"image/png":                  "png",
		"IMAGE/WEBP":                 "webp",
		"image/bmp":                  "bmp",
		"image/svg+xml":              "svg",
		"image/jpeg; charset=binary": "jpg",
		"":                           "jpg",
	}
	for in, want := range cases {
		assert.Equal(t, want, extensionFor(in), in)
	}
}

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := NewLocalDisk(t.TempDir(), "http://localhost:3001/storage/")

	require.NoError(t, d.Put(ctx, "lunches/1/a.jpg", []byte("data"), "image/jpeg"))
	assert.True(t, d.Exists(ctx, "lunches/1/a.jpg"))
	assert.Equal(t, "http://localhost:3001/storage/lunches/1/a.jpg", d.URL("lunches/1/a.jpg"))

	got, err := d.Get(ctx, "lunches/1/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	files, err := d.AllFiles(ctx, "lunches")
	require.NoError(t, err)
	assert.Equal(t, []string{"lunches/1/a.jpg"}, files)

	require.NoError(t, d.Delete(ctx, "lunches/1/a.jpg"))
	require.NoError(t, d.Delete(ctx, "lunches/1/a.jpg"))
	_, err = d.Get(ctx, "lunches/1/a.jpg")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d := NewLocalDisk(root, "")

	require.NoError(t, d.Put(ctx, "../../escape.txt", []byte("x"), ""))
	files, err := d.AllFiles(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"escape.txt"}, files)
}

func TestMemoryDiskAllFilesPrefix(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDisk("")
	require.NoError(t, d.Put(ctx, "lunches/1/a.jpg", nil, ""))
	require.NoError(t, d.Put(ctx, "lunches/2/b.jpg", nil, ""))
	require.NoError(t, d.Put(ctx, "avatars/c.jpg", nil, ""))

	files, err := d.AllFiles(ctx, "lunches")
	require.NoError(t, err)
	assert.Equal(t, []string{"lunches/1/a.jpg", "lunches/2/b.jpg"}, files)
	assert.Equal(t, 3, d.Len())
}
