package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/objstore"
	"shop-admin/internal/shared/storage"
	"shop-admin/internal/shared/storage/repository"
	"shop-admin/internal/testutil"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

var testBuckets = Buckets{Images: "images", Videos: "videos"}

type mediaEnv struct {
	store *repository.Store
	blobs *objstore.MemoryStore
	svc   *Service
}

func newMediaEnv(t *testing.T) *mediaEnv {
	t.Helper()
	store := testutil.NewStore(t)
	blobs := objstore.NewMemoryStore(testBuckets.Images, testBuckets.Videos)
	svc := NewService(store, blobs, testBuckets, 1024, nil)
	tick := time.UnixMilli(1700000000000)
	svc.now = func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}
	return &mediaEnv{store: store, blobs: blobs, svc: svc}
}

func ptr(id int64) *int64 { return &id }

func TestIngestDeduplicatesIdenticalBytes(t *testing.T) {
	env := newMediaEnv(t)
	ctx := context.Background()
	p1 := testutil.CreateProduct(t, env.store, "5.00", "en", "Mug")
	p2 := testutil.CreateProduct(t, env.store, "7.00", "en", "Cup")

	a1, l1, err := env.svc.Ingest(ctx, IngestRequest{Data: pngBytes, Filename: "mug.png", MimeType: "image/png", ProductID: ptr(p1.ID)})
	require.NoError(t, err)
	a2, l2, err := env.svc.Ingest(ctx, IngestRequest{Data: pngBytes, Filename: "other-name.png", MimeType: "image/png", ProductID: ptr(p2.ID)})
	require.NoError(t, err)

	assert.Equal(t, a1.ID, a2.ID)
	assert.Equal(t, "1700000000001-mug.png", a1.StorageKey)
	assert.Equal(t, "/media/1700000000001-mug.png", a1.URL)
	assert.Equal(t, Hash(pngBytes), a1.Hash)
	assert.Equal(t, 1, env.blobs.Len("images"))
	assert.Equal(t, 0, l1.DisplayOrder)
	assert.Equal(t, 0, l2.DisplayOrder)

	refs, err := env.store.CountMediaRefs(ctx, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, refs)

	// 同一商品重复上传：保持原关联
	_, l3, err := env.svc.Ingest(ctx, IngestRequest{Data: pngBytes, Filename: "mug.png", MimeType: "image/png", ProductID: ptr(p1.ID), Thumbnail: true})
	require.NoError(t, err)
	assert.Equal(t, l1.DisplayOrder, l3.DisplayOrder)
}

func TestIngestOrdering(t *testing.T) {
	env := newMediaEnv(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, env.store, "5.00", "en", "Lamp")

	ingest := func(data string, thumb bool) *model.ProductMedia {
		_, link, err := env.svc.Ingest(ctx, IngestRequest{
			Data: []byte(data), Filename: "x.jpg", MimeType: "image/jpeg", ProductID: ptr(p.ID), Thumbnail: thumb,
		})
		require.NoError(t, err)
		return link
	}
	first := ingest("one", false)
	second := ingest("two", false)
	thumb := ingest("three", true)
	assert.Equal(t, 0, first.DisplayOrder)
	assert.Equal(t, 1, second.DisplayOrder)
	assert.Equal(t, 0, thumb.DisplayOrder)

	views, err := env.store.ListProductMedia(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, thumb.AssetID, views[0].AssetID)
	assert.Equal(t, []int{0, 1, 2}, []int{views[0].DisplayOrder, views[1].DisplayOrder, views[2].DisplayOrder})
}

func TestIngestValidation(t *testing.T) {
	env := newMediaEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  IngestRequest
		kind apierr.Kind
	}{
		{"empty", IngestRequest{MimeType: "image/png"}, apierr.KindValidation},
		{"too large", IngestRequest{Data: make([]byte, 1025), MimeType: "image/png"}, apierr.KindValidation},
		{"svg", IngestRequest{Data: []byte("<svg/>"), MimeType: "image/svg+xml"}, apierr.KindValidation},
		{"sniffed text", IngestRequest{Data: []byte("hello world")}, apierr.KindValidation},
		{"unknown product", IngestRequest{Data: pngBytes, MimeType: "image/png", ProductID: ptr(999)}, apierr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.svc.Ingest(ctx, tt.req)
			assert.True(t, apierr.Is(err, tt.kind), "%v", err)
		})
	}
	assert.Equal(t, 0, env.blobs.Len("images"))
}

func TestIngestSniffsMissingMime(t *testing.T) {
	env := newMediaEnv(t)
	asset, link, err := env.svc.Ingest(context.Background(), IngestRequest{Data: pngBytes, Filename: "pixel"})
	require.NoError(t, err)
	assert.Nil(t, link)
	assert.Equal(t, "image/png", asset.MimeType)
	assert.Equal(t, "images", asset.Bucket)
	assert.Equal(t, "1700000000001-pixel.png", asset.StorageKey)
}

func TestIngestVideoBucket(t *testing.T) {
	env := newMediaEnv(t)
	asset, _, err := env.svc.Ingest(context.Background(), IngestRequest{Data: []byte("fake-mp4"), Filename: "clip.mp4", MimeType: "video/mp4"})
	require.NoError(t, err)
	assert.Equal(t, "videos", asset.Bucket)
	assert.Equal(t, model.MediaTypeVideo, asset.MediaType)
	assert.Equal(t, 1, env.blobs.Len("videos"))
}

func TestUnlinkRefCounting(t *testing.T) {
	env := newMediaEnv(t)
	ctx := context.Background()
	p1 := testutil.CreateProduct(t, env.store, "5.00", "en", "A")
	p2 := testutil.CreateProduct(t, env.store, "5.00", "en", "B")

	asset, _, err := env.svc.Ingest(ctx, IngestRequest{Data: pngBytes, MimeType: "image/png", ProductID: ptr(p1.ID)})
	require.NoError(t, err)
	_, _, err = env.svc.Ingest(ctx, IngestRequest{Data: pngBytes, MimeType: "image/png", ProductID: ptr(p2.ID)})
	require.NoError(t, err)

	// 非最后一个关联：资源保留
	deleted, err := env.svc.Unlink(ctx, p1.ID, asset.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	exists, err := env.blobs.Exists(ctx, asset.Bucket, asset.StorageKey)
	require.NoError(t, err)
	assert.True(t, exists)

	// 重复移除：404
	_, err = env.svc.Unlink(ctx, p1.ID, asset.ID)
	assert.True(t, apierr.Is(err, apierr.KindNotFound))

	// 最后一个关联：blob 与记录一并删除
	deleted, err = env.svc.Unlink(ctx, p2.ID, asset.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	exists, err = env.blobs.Exists(ctx, asset.Bucket, asset.StorageKey)
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = env.store.GetMediaAsset(ctx, asset.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestCollectOrphansAfterProductDelete(t *testing.T) {
	env := newMediaEnv(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, env.store, "5.00", "en", "A")
	asset, _, err := env.svc.Ingest(ctx, IngestRequest{Data: pngBytes, MimeType: "image/png", ProductID: ptr(p.ID)})
	require.NoError(t, err)

	ids, err := env.store.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{asset.ID}, ids)

	removed, err := env.svc.CollectOrphans(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, env.blobs.Len("images"))

	// 已回收的 ID 再次回收：无操作
	removed, err = env.svc.CollectOrphans(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestOpenResolvesBothBuckets(t *testing.T) {
	env := newMediaEnv(t)
	ctx := context.Background()
	require.NoError(t, env.blobs.Put(ctx, "videos", "v.mp4", []byte("vid"), "video/mp4"))

	obj, err := env.svc.Open(ctx, "v.mp4")
	require.NoError(t, err)
	obj.Body.Close()
	assert.Equal(t, "video/mp4", obj.ContentType)

	_, err = env.svc.Open(ctx, "missing.png")
	assert.ErrorIs(t, err, objstore.ErrNotFound)
}

func TestLocate(t *testing.T) {
	env := newMediaEnv(t)
	ctx := context.Background()
	asset, _, err := env.svc.Ingest(ctx, IngestRequest{Data: pngBytes, Filename: "x.png", MimeType: "image/png"})
	require.NoError(t, err)

	bucket, err := env.svc.Locate(ctx, asset.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, testBuckets.Images, bucket)

	_, err = env.svc.Locate(ctx, "0-missing.png")
	assert.ErrorIs(t, err, objstore.ErrNotFound)
}
