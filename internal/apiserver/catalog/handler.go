// Package catalog 商品与分类：店面多语言浏览与管理后台维护
package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/apiserver/reqparam"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

// Store 目录依赖的存储
type Store interface {
	storage.CategoryStore
	storage.ProductStore
	GetMediaAsset(ctx context.Context, id int64) (*model.MediaAsset, error)
	ReplaceProductMedia(ctx context.Context, productID int64, assetIDs []int64) ([]int64, error)
}

// OrphanCollector 回收失去全部关联的媒体资源
type OrphanCollector interface {
	CollectOrphans(ctx context.Context, assetIDs []int64) (int, error)
}

// Handler 商品目录 HTTP 处理器
type Handler struct {
	store  Store
	langs  *Languages
	orphan OrphanCollector
}

// NewHandler 创建目录处理器
func NewHandler(store Store, langs *Languages, orphan OrphanCollector) *Handler {
	return &Handler{store: store, langs: langs, orphan: orphan}
}

// RegisterRoutes 注册店面与管理端目录路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux, guard *auth.Guard) {
	// 店面（公开）
	mux.HandleFunc("GET /api/products", apierr.Handle(h.ListProducts))
	mux.HandleFunc("GET /api/products/{id}", apierr.Handle(h.GetProduct))
	mux.HandleFunc("GET /api/categories", apierr.Handle(h.ListCategories))

	// 管理端
	mux.Handle("GET /api/admin/products", guard.Admin(apierr.Handle(h.AdminListProducts)))
	mux.Handle("POST /api/admin/products", guard.Admin(apierr.Handle(h.AdminCreateProduct)))
	mux.Handle("GET /api/admin/products/{id}", guard.Admin(apierr.Handle(h.AdminGetProduct)))
	mux.Handle("PUT /api/admin/products/{id}", guard.Admin(apierr.Handle(h.AdminUpdateProduct)))
	mux.Handle("DELETE /api/admin/products/{id}", guard.Admin(apierr.Handle(h.AdminDeleteProduct)))
	mux.Handle("GET /api/admin/categories", guard.Admin(apierr.Handle(h.AdminListCategories)))
	mux.Handle("POST /api/admin/categories", guard.Admin(apierr.Handle(h.AdminCreateCategory)))
	mux.Handle("PUT /api/admin/categories/{id}", guard.Admin(apierr.Handle(h.AdminUpdateCategory)))
	mux.Handle("DELETE /api/admin/categories/{id}", guard.Admin(apierr.Handle(h.AdminDeleteCategory)))
}

// ============================================================================
// 店面
// ============================================================================

// ListProducts 商品列表（分页、分类、推荐、关键字）
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	filter := model.ProductFilter{
		Language:        h.langs.Resolve(r),
		DefaultLanguage: h.langs.Default(),
		Search:          strings.TrimSpace(r.URL.Query().Get("search")),
		Page:            reqparam.Page(r),
	}
	var err error
	if filter.CategoryID, err = reqparam.OptionalID(r, "categoryId"); err != nil {
		return err
	}
	if filter.Featured, err = reqparam.OptionalBool(r, "featured"); err != nil {
		return err
	}

	products, total, err := h.store.ListLocalizedProducts(r.Context(), filter)
	if err != nil {
		return err
	}
	if products == nil {
		products = []*model.LocalizedProduct{}
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"products":   products,
		"pagination": model.NewPagination(filter.Page, total),
	})
	return nil
}

// GetProduct 商品详情（含全部媒体）
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return err
	}
	p, err := h.store.GetLocalizedProduct(r.Context(), id, h.langs.Resolve(r), h.langs.Default())
	if err != nil {
		return notFound(err, "product not found")
	}
	apierr.WriteJSON(w, http.StatusOK, p)
	return nil
}

// ListCategories 分类列表（含商品数）
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) error {
	cats, err := h.store.ListLocalizedCategories(r.Context(), h.langs.Resolve(r), h.langs.Default())
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": cats})
	return nil
}

// notFound 将 storage.ErrNotFound 转为带具体描述的 NotFound
func notFound(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apierr.NotFound("%s", msg)
	}
	return err
}
