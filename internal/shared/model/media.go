package model

import "time"

// MediaType 媒体大类，决定写入哪个 bucket
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// MediaAsset 内容寻址的媒体资源，hash 全局唯一
type MediaAsset struct {
	ID               int64     `json:"id" db:"id"`
	Hash             string    `json:"hash" db:"hash"` // SHA-256 hex
	Bucket           string    `json:"bucket" db:"bucket"`
	StorageKey       string    `json:"storageKey" db:"storage_key"`
	Size             int64     `json:"size" db:"size"`
	MimeType         string    `json:"mimeType" db:"mime_type"`
	MediaType        MediaType `json:"mediaType" db:"media_type"`
	OriginalFilename string    `json:"originalFilename" db:"original_filename"`
	URL              string    `json:"url" db:"url"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// MediaAssetWithRefs 附带引用计数的资源（管理后台列表）
type MediaAssetWithRefs struct {
	MediaAsset
	RefCount int `json:"refCount" db:"ref_count"`
}

// ProductMedia 商品与资源的关联，display_order = 0 表示缩略图
type ProductMedia struct {
	ProductID    int64 `json:"productId" db:"product_id"`
	AssetID      int64 `json:"assetId" db:"asset_id"`
	DisplayOrder int   `json:"displayOrder" db:"display_order"`
}

// ProductMediaView 关联行 + 资源展示字段
type ProductMediaView struct {
	AssetID      int64     `json:"assetId" db:"asset_id"`
	DisplayOrder int       `json:"displayOrder" db:"display_order"`
	URL          string    `json:"url" db:"url"`
	MimeType     string    `json:"mimeType" db:"mime_type"`
	MediaType    MediaType `json:"mediaType" db:"media_type"`
}
