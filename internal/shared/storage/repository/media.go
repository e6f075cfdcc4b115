package repository

import (
	"context"

	"shop-admin/internal/shared/model"

	"github.com/jmoiron/sqlx"
)

const mediaColumns = `id, hash, bucket, storage_key, size, mime_type, media_type, original_filename, url, created_at`

// CreateMediaAsset 写入资源元数据；hash 或 key 冲突返回 storage.ErrDuplicate
func (s *Store) CreateMediaAsset(ctx context.Context, a *model.MediaAsset) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	id, err := s.insertID(ctx, s.db,
		`INSERT INTO media_assets (hash, bucket, storage_key, size, mime_type, media_type, original_filename, url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.Hash, a.Bucket, a.StorageKey, a.Size, a.MimeType, a.MediaType, a.OriginalFilename, a.URL, a.CreatedAt.UTC())
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// GetMediaAsset 按 ID 获取资源
func (s *Store) GetMediaAsset(ctx context.Context, id int64) (*model.MediaAsset, error) {
	a := &model.MediaAsset{}
	if err := s.get(ctx, s.db, a, `SELECT `+mediaColumns+` FROM media_assets WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return a, nil
}

// GetMediaAssetByHash 按内容摘要获取资源
func (s *Store) GetMediaAssetByHash(ctx context.Context, hash string) (*model.MediaAsset, error) {
	a := &model.MediaAsset{}
	if err := s.get(ctx, s.db, a, `SELECT `+mediaColumns+` FROM media_assets WHERE hash = $1`, hash); err != nil {
		return nil, err
	}
	return a, nil
}

// GetMediaAssetByKey 按存储 key 获取资源
func (s *Store) GetMediaAssetByKey(ctx context.Context, key string) (*model.MediaAsset, error) {
	a := &model.MediaAsset{}
	if err := s.get(ctx, s.db, a, `SELECT `+mediaColumns+` FROM media_assets WHERE storage_key = $1`, key); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteMediaAsset 删除资源元数据（调用方保证已无关联）
func (s *Store) DeleteMediaAsset(ctx context.Context, id int64) error {
	return s.execOne(ctx, s.db, `DELETE FROM media_assets WHERE id = $1`, id)
}

// ListMediaAssets 分页列出资源及其引用数
func (s *Store) ListMediaAssets(ctx context.Context, page model.Page) ([]*model.MediaAssetWithRefs, int, error) {
	total, err := s.count(ctx, s.db, `SELECT COUNT(*) FROM media_assets`)
	if err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	assets := []*model.MediaAssetWithRefs{}
	err = s.sel(ctx, s.db, &assets,
		`SELECT a.id, a.hash, a.bucket, a.storage_key, a.size, a.mime_type, a.media_type,
		        a.original_filename, a.url, a.created_at,
		        (SELECT COUNT(*) FROM product_media pm WHERE pm.asset_id = a.id) AS ref_count
		 FROM media_assets a ORDER BY a.created_at DESC, a.id DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// CountMediaRefs 资源当前被多少商品引用
func (s *Store) CountMediaRefs(ctx context.Context, assetID int64) (int, error) {
	return s.count(ctx, s.db, `SELECT COUNT(*) FROM product_media WHERE asset_id = $1`, assetID)
}

// ============================================================================
// 商品-资源关联
// ============================================================================

// GetProductMedia 获取单条关联
func (s *Store) GetProductMedia(ctx context.Context, productID, assetID int64) (*model.ProductMedia, error) {
	pm := &model.ProductMedia{}
	if err := s.get(ctx, s.db, pm,
		`SELECT product_id, asset_id, display_order FROM product_media WHERE product_id = $1 AND asset_id = $2`,
		productID, assetID); err != nil {
		return nil, err
	}
	return pm, nil
}

// ListProductMedia 按展示顺序列出商品媒体
func (s *Store) ListProductMedia(ctx context.Context, productID int64) ([]model.ProductMediaView, error) {
	views := []model.ProductMediaView{}
	err := s.sel(ctx, s.db, &views,
		`SELECT pm.asset_id, pm.display_order, a.url, a.mime_type, a.media_type
		 FROM product_media pm JOIN media_assets a ON a.id = pm.asset_id
		 WHERE pm.product_id = $1 ORDER BY pm.display_order, pm.asset_id`, productID)
	if err != nil {
		return nil, err
	}
	return views, nil
}

// MaxDisplayOrder 返回商品当前最大展示顺序；无关联时 ok = false
func (s *Store) MaxDisplayOrder(ctx context.Context, productID int64) (int, bool, error) {
	var max *int
	if err := s.get(ctx, s.db, &max,
		`SELECT MAX(display_order) FROM product_media WHERE product_id = $1`, productID); err != nil {
		return 0, false, err
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

// ShiftDisplayOrder 商品全部关联的展示顺序整体平移 delta
func (s *Store) ShiftDisplayOrder(ctx context.Context, productID int64, delta int) error {
	_, err := s.exec(ctx, s.db,
		`UPDATE product_media SET display_order = display_order + $1 WHERE product_id = $2`, delta, productID)
	return err
}

// CreateProductMedia 新增关联；(product, asset) 已存在返回 storage.ErrDuplicate
func (s *Store) CreateProductMedia(ctx context.Context, pm *model.ProductMedia) error {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO product_media (product_id, asset_id, display_order) VALUES ($1, $2, $3)`,
		pm.ProductID, pm.AssetID, pm.DisplayOrder)
	return err
}

// DeleteProductMedia 删除关联，不存在返回 storage.ErrNotFound
func (s *Store) DeleteProductMedia(ctx context.Context, productID, assetID int64) error {
	return s.execOne(ctx, s.db,
		`DELETE FROM product_media WHERE product_id = $1 AND asset_id = $2`, productID, assetID)
}

// ReplaceProductMedia 整体替换商品媒体：删除全部后按顺序重新插入（下标即展示顺序）
// 返回不再被该商品引用的资源 ID，供调用方回收
func (s *Store) ReplaceProductMedia(ctx context.Context, productID int64, assetIDs []int64) ([]int64, error) {
	var removed []int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		previous := []int64{}
		if err := s.sel(ctx, tx, &previous,
			`SELECT asset_id FROM product_media WHERE product_id = $1 ORDER BY asset_id`, productID); err != nil {
			return err
		}
		if _, err := s.exec(ctx, tx, `DELETE FROM product_media WHERE product_id = $1`, productID); err != nil {
			return err
		}

		kept := make(map[int64]bool, len(assetIDs))
		order := 0
		for _, id := range assetIDs {
			if kept[id] {
				continue
			}
			kept[id] = true
			if _, err := s.exec(ctx, tx,
				`INSERT INTO product_media (product_id, asset_id, display_order) VALUES ($1, $2, $3)`,
				productID, id, order); err != nil {
				return err
			}
			order++
		}

		removed = []int64{}
		for _, id := range previous {
			if !kept[id] {
				removed = append(removed, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
