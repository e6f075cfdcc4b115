// Package media 内容寻址的媒体资源管理
//
// 上传的字节按 SHA-256 去重：同一内容只写一次 blob、一行 media_assets，
// 由 product_media 关联计数决定资源生命周期，最后一个关联移除时删除 blob 与记录。
package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/apiserver/metrics"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/objstore"
	"shop-admin/internal/shared/storage"
)

// DefaultMaxBytes 单文件上传上限
const DefaultMaxBytes int64 = 10 << 20

// URLPrefix 媒体访问路径前缀
const URLPrefix = "/media/"

// Store 媒体服务依赖的存储
type Store interface {
	storage.MediaStore
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
}

// Buckets 两个媒体 bucket
type Buckets struct {
	Images string
	Videos string
}

// For 返回媒体大类对应的 bucket
func (b Buckets) For(t model.MediaType) string {
	if t == model.MediaTypeVideo {
		return b.Videos
	}
	return b.Images
}

// IngestRequest 上传请求
type IngestRequest struct {
	Data      []byte
	Filename  string
	MimeType  string // 为空时按内容嗅探
	ProductID *int64
	Thumbnail bool
}

// Service 媒体服务
type Service struct {
	store    Store
	blobs    objstore.BlobStore
	buckets  Buckets
	maxBytes int64
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService 创建媒体服务；maxBytes <= 0 时使用 DefaultMaxBytes
func NewService(store Store, blobs objstore.BlobStore, buckets Buckets, maxBytes int64, m *metrics.Metrics) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{
		store:    store,
		blobs:    blobs,
		buckets:  buckets,
		maxBytes: maxBytes,
		metrics:  m,
		now:      time.Now,
	}
}

// MaxBytes 单文件上限
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Hash 内容摘要（SHA-256 hex）
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Ingest 校验、去重并存储上传内容；指定商品时同时建立关联
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*model.MediaAsset, *model.ProductMedia, error) {
	if len(req.Data) == 0 {
		return nil, nil, apierr.Validation("file is empty")
	}
	if int64(len(req.Data)) > s.maxBytes {
		return nil, nil, apierr.Validation("file exceeds %d bytes", s.maxBytes)
	}
	mimeType := normalizeMime(req.MimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = normalizeMime(http.DetectContentType(req.Data))
	}
	mediaType, ok := Classify(mimeType)
	if !ok {
		return nil, nil, apierr.Validation("unsupported media type %q", mimeType)
	}

	if req.ProductID != nil {
		if _, err := s.store.GetProduct(ctx, *req.ProductID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, nil, apierr.NotFound("product %d not found", *req.ProductID)
			}
			return nil, nil, err
		}
	}

	asset, err := s.storeAsset(ctx, req, mimeType, mediaType)
	if err != nil {
		return nil, nil, err
	}
	if req.ProductID == nil {
		return asset, nil, nil
	}

	link, err := s.Link(ctx, *req.ProductID, asset.ID, req.Thumbnail)
	if err != nil {
		return nil, nil, err
	}
	return asset, link, nil
}

// storeAsset 按 hash 复用已有资源，否则写 blob 并插入记录
func (s *Service) storeAsset(ctx context.Context, req IngestRequest, mimeType string, mediaType model.MediaType) (*model.MediaAsset, error) {
	hash := Hash(req.Data)
	existing, err := s.store.GetMediaAssetByHash(ctx, hash)
	if err == nil {
		s.metrics.RecordMediaIngest(true)
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	bucket := s.buckets.For(mediaType)
	key := fmt.Sprintf("%d-%s", s.now().UnixMilli(), SanitizeFilename(req.Filename, mimeType))
	if err := s.blobs.Put(ctx, bucket, key, req.Data, mimeType); err != nil {
		return nil, fmt.Errorf("put blob %s/%s: %w", bucket, key, err)
	}

	asset := &model.MediaAsset{
		Hash:             hash,
		Bucket:           bucket,
		StorageKey:       key,
		Size:             int64(len(req.Data)),
		MimeType:         mimeType,
		MediaType:        mediaType,
		OriginalFilename: req.Filename,
		URL:              URLPrefix + key,
	}
	if err := s.store.CreateMediaAsset(ctx, asset); err != nil {
		// 并发上传同一内容：以先写入者为准，丢弃本次 blob
		if errors.Is(err, storage.ErrDuplicate) {
			s.discardBlob(ctx, bucket, key)
			winner, gerr := s.store.GetMediaAssetByHash(ctx, hash)
			if gerr != nil {
				return nil, gerr
			}
			s.metrics.RecordMediaIngest(true)
			return winner, nil
		}
		log.Printf("[media] asset insert failed, blob %s/%s may be orphaned: %v", bucket, key, err)
		s.discardBlob(ctx, bucket, key)
		return nil, err
	}
	s.metrics.RecordMediaIngest(false)
	return asset, nil
}

func (s *Service) discardBlob(ctx context.Context, bucket, key string) {
	if err := s.blobs.Delete(ctx, bucket, key); err != nil {
		log.Printf("[media] failed to discard blob %s/%s: %v", bucket, key, err)
	}
}

// Link 建立商品与资源的关联
// 已关联时保持原样；缩略图插入到 0 位并后移已有关联；否则追加到末尾
func (s *Service) Link(ctx context.Context, productID, assetID int64, thumbnail bool) (*model.ProductMedia, error) {
	existing, err := s.store.GetProductMedia(ctx, productID, assetID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	link := &model.ProductMedia{ProductID: productID, AssetID: assetID}
	if thumbnail {
		if err := s.store.ShiftDisplayOrder(ctx, productID, 1); err != nil {
			return nil, err
		}
		link.DisplayOrder = 0
	} else {
		maxOrder, ok, err := s.store.MaxDisplayOrder(ctx, productID)
		if err != nil {
			return nil, err
		}
		if ok {
			link.DisplayOrder = maxOrder + 1
		}
	}

	if err := s.store.CreateProductMedia(ctx, link); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return s.store.GetProductMedia(ctx, productID, assetID)
		}
		return nil, err
	}
	return link, nil
}

// Unlink 移除商品与资源的关联；资源不再被引用时删除 blob 与记录
// 返回资源是否已被删除
func (s *Service) Unlink(ctx context.Context, productID, assetID int64) (bool, error) {
	if err := s.store.DeleteProductMedia(ctx, productID, assetID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, apierr.NotFound("media %d is not linked to product %d", assetID, productID)
		}
		return false, err
	}
	removed, err := s.CollectOrphans(ctx, []int64{assetID})
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// CollectOrphans 删除引用计数为 0 的资源（blob + 记录），返回删除数量
// blob 删除失败时保留记录，下次回收时重试
func (s *Service) CollectOrphans(ctx context.Context, assetIDs []int64) (int, error) {
	removed := 0
	var firstErr error
	for _, id := range assetIDs {
		refs, err := s.store.CountMediaRefs(ctx, id)
		if err != nil {
			return removed, err
		}
		if refs > 0 {
			continue
		}
		asset, err := s.store.GetMediaAsset(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, err
		}
		if err := s.blobs.Delete(ctx, asset.Bucket, asset.StorageKey); err != nil && !errors.Is(err, objstore.ErrNotFound) {
			log.Printf("[media] delete blob %s/%s failed: %v", asset.Bucket, asset.StorageKey, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.store.DeleteMediaAsset(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return removed, err
		}
		s.metrics.RecordBlobDelete()
		log.Printf("[media] removed orphaned asset %d (%s/%s)", id, asset.Bucket, asset.StorageKey)
		removed++
	}
	return removed, firstErr
}

// Locate 返回 key 所在的 bucket，不读取对象内容
func (s *Service) Locate(ctx context.Context, key string) (string, error) {
	for _, bucket := range []string{s.buckets.Images, s.buckets.Videos} {
		ok, err := s.blobs.Exists(ctx, bucket, key)
		if err != nil {
			return "", err
		}
		if ok {
			return bucket, nil
		}
	}
	return "", objstore.ErrNotFound
}

// Open 按 key 依次在 images、videos bucket 中查找对象
func (s *Service) Open(ctx context.Context, key string) (*objstore.Object, error) {
	for _, bucket := range []string{s.buckets.Images, s.buckets.Videos} {
		obj, err := s.blobs.Get(ctx, bucket, key)
		if err == nil {
			return obj, nil
		}
		if !errors.Is(err, objstore.ErrNotFound) {
			return nil, err
		}
	}
	return nil, objstore.ErrNotFound
}
