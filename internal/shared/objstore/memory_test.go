package objstore

import (
	"context"
	"io"
	"testing"

	"shop-admin/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore("images", "videos")
	require.NoError(t, m.EnsureBuckets(ctx))

	require.NoError(t, m.Put(ctx, "images", "a.png", []byte("png"), "image/png"))
	assert.Equal(t, 1, m.Len("images"))
	assert.Equal(t, 0, m.Len("videos"))

	ok, err := m.Exists(ctx, "images", "a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	obj, err := m.Get(ctx, "images", "a.png")
	require.NoError(t, err)
	defer obj.Body.Close()
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, int64(3), obj.Size)
	assert.Equal(t, "image/png", obj.ContentType)

	_, err = m.Get(ctx, "videos", "a.png")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Delete(ctx, "images", "a.png"))
	require.NoError(t, m.Delete(ctx, "images", "a.png"))
	ok, _ = m.Exists(ctx, "images", "a.png")
	assert.False(t, ok)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(config.MinIOConfig{})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewClient(config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.ErrorContains(t, err, "access_key")

	c, err := NewClient(config.MinIOConfig{
		Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s",
		ImagesBucket: "images", VideosBucket: "videos",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"images", "videos"}, c.buckets)
}
