package storage

import (
	"context"
	"time"

	"shop-admin/internal/shared/model"
)

// UserStore 用户存储
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	ListUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, int, error)
}

// AdminLogStore 管理员操作日志存储
type AdminLogStore interface {
	CreateAdminLog(ctx context.Context, entry *model.AdminLogEntry) error
	ListAdminLogs(ctx context.Context, filter model.AdminLogFilter) ([]*model.AdminLogEntry, int, error)
	// DeleteAdminLogsBefore 删除 created_at 严格早于 cutoff 的记录，返回删除行数
	DeleteAdminLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CategoryStore 分类存储
type CategoryStore interface {
	CreateCategory(ctx context.Context, c *model.Category) error
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	ListLocalizedCategories(ctx context.Context, lang, defaultLang string) ([]*model.LocalizedCategory, error)
	UpsertCategoryTranslations(ctx context.Context, categoryID int64, ts []model.CategoryTranslation) error
	TouchCategory(ctx context.Context, id int64, at time.Time) error
	DeleteCategory(ctx context.Context, id int64) error
}

// ProductStore 商品存储
type ProductStore interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	// DeleteProduct 删除商品及其翻译、媒体关联、购物车行，返回原先关联的资源 ID
	DeleteProduct(ctx context.Context, id int64) ([]int64, error)
	ListProducts(ctx context.Context, page model.Page) ([]*model.Product, int, error)
	UpsertProductTranslations(ctx context.Context, productID int64, ts []model.ProductTranslation) error
	ListLocalizedProducts(ctx context.Context, filter model.ProductFilter) ([]*model.LocalizedProduct, int, error)
	GetLocalizedProduct(ctx context.Context, id int64, lang, defaultLang string) (*model.LocalizedProduct, error)
}

// MediaStore 媒体资源与商品关联存储
type MediaStore interface {
	CreateMediaAsset(ctx context.Context, a *model.MediaAsset) error
	GetMediaAsset(ctx context.Context, id int64) (*model.MediaAsset, error)
	GetMediaAssetByHash(ctx context.Context, hash string) (*model.MediaAsset, error)
	GetMediaAssetByKey(ctx context.Context, key string) (*model.MediaAsset, error)
	DeleteMediaAsset(ctx context.Context, id int64) error
	ListMediaAssets(ctx context.Context, page model.Page) ([]*model.MediaAssetWithRefs, int, error)
	CountMediaRefs(ctx context.Context, assetID int64) (int, error)

	GetProductMedia(ctx context.Context, productID, assetID int64) (*model.ProductMedia, error)
	ListProductMedia(ctx context.Context, productID int64) ([]model.ProductMediaView, error)
	MaxDisplayOrder(ctx context.Context, productID int64) (int, bool, error)
	ShiftDisplayOrder(ctx context.Context, productID int64, delta int) error
	CreateProductMedia(ctx context.Context, pm *model.ProductMedia) error
	DeleteProductMedia(ctx context.Context, productID, assetID int64) error
	// ReplaceProductMedia 整体替换商品的媒体关联（先删后插），返回被移除的资源 ID
	ReplaceProductMedia(ctx context.Context, productID int64, assetIDs []int64) ([]int64, error)
}

// CartStore 购物车存储
type CartStore interface {
	GetOrCreateCart(ctx context.Context, userID int64) (*model.Cart, error)
	GetCartItem(ctx context.Context, id int64) (*model.CartItem, error)
	// AddCartItem (cart, product) 已存在时累加数量，返回最新行；超出上限返回 ErrQuantityLimit
	AddCartItem(ctx context.Context, cartID, productID int64, quantity int) (*model.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) error
	DeleteCartItem(ctx context.Context, id int64) error
	ClearCart(ctx context.Context, cartID int64) error
	ListCartLines(ctx context.Context, cartID int64, lang, defaultLang string) ([]*model.CartLine, error)
}

// OrderStore 订单存储
type OrderStore interface {
	// Checkout 在单个事务中以服务端购物车生成订单并清空购物车
	Checkout(ctx context.Context, userID int64, shippingAddress, notes, defaultLang string) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]*model.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error
	DeleteOrder(ctx context.Context, id int64) error
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)
}

// PersistentStore 持久化存储总接口（由 repository.Store 实现）
type PersistentStore interface {
	UserStore
	AdminLogStore
	CategoryStore
	ProductStore
	MediaStore
	CartStore
	OrderStore

	Close() error
}
