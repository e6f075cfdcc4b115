package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/apiserver/reqparam"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

// ============================================================================
// 请求类型
// ============================================================================

type translationInput struct {
	Language    string `json:"language"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// nullableID 区分字段缺省与显式 null
type nullableID struct {
	Set   bool
	Value *int64
}

func (n *nullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

type productRequest struct {
	Price        *decimal.Decimal   `json:"price"`
	Featured     *bool              `json:"featured"`
	CategoryID   nullableID         `json:"categoryId"`
	Translations []translationInput `json:"translations"`
	Media        *[]int64           `json:"media"` // 资源 ID，下标即展示顺序，0 为缩略图
}

type categoryRequest struct {
	Translations []translationInput `json:"translations"`
}

// validateTranslations 校验语言与名称；同一语言不可重复
func (h *Handler) validateTranslations(in []translationInput, required bool) error {
	if required && len(in) == 0 {
		return apierr.Validation("at least one translation is required")
	}
	seen := make(map[string]bool, len(in))
	for i := range in {
		t := &in[i]
		t.Language = strings.ToLower(strings.TrimSpace(t.Language))
		t.Name = strings.TrimSpace(t.Name)
		if !h.langs.Supports(t.Language) {
			return apierr.Validation("unsupported language %q", t.Language)
		}
		if seen[t.Language] {
			return apierr.Validation("duplicate translation for %q", t.Language)
		}
		seen[t.Language] = true
		if t.Name == "" {
			return apierr.Validation("name is required for language %q", t.Language)
		}
	}
	return nil
}

func productTranslations(in []translationInput) []model.ProductTranslation {
	out := make([]model.ProductTranslation, len(in))
	for i, t := range in {
		out[i] = model.ProductTranslation{Language: t.Language, Name: t.Name, Description: t.Description}
	}
	return out
}

func categoryTranslations(in []translationInput) []model.CategoryTranslation {
	out := make([]model.CategoryTranslation, len(in))
	for i, t := range in {
		out[i] = model.CategoryTranslation{Language: t.Language, Name: t.Name, Description: t.Description}
	}
	return out
}

// checkCategory 分类不存在视为参数错误
func (h *Handler) checkCategory(r *http.Request, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := h.store.GetCategory(r.Context(), *id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apierr.Validation("category %d does not exist", *id)
		}
		return err
	}
	return nil
}

// checkAssets 媒体资源必须已存在
func (h *Handler) checkAssets(r *http.Request, ids []int64) error {
	for _, id := range ids {
		if _, err := h.store.GetMediaAsset(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apierr.Validation("media asset %d does not exist", id)
			}
			return err
		}
	}
	return nil
}

// replaceMedia 整体替换关联并回收孤儿资源
func (h *Handler) replaceMedia(r *http.Request, productID int64, ids []int64) error {
	removed, err := h.store.ReplaceProductMedia(r.Context(), productID, ids)
	if err != nil {
		return err
	}
	h.collect(r, removed)
	return nil
}

func (h *Handler) collect(r *http.Request, ids []int64) {
	if h.orphan == nil || len(ids) == 0 {
		return
	}
	if _, err := h.orphan.CollectOrphans(r.Context(), ids); err != nil {
		log.Printf("[catalog] collect orphaned media %v: %v", ids, err)
	}
}

// ============================================================================
// 商品
// ============================================================================

// AdminListProducts 商品分页列表（含全部翻译）
func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) error {
	page := reqparam.Page(r)
	products, total, err := h.store.ListProducts(r.Context(), page)
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"products":   products,
		"pagination": model.NewPagination(page, total),
	})
	return nil
}

// AdminGetProduct 商品详情（全部翻译与媒体）
func (h *Handler) AdminGetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return err
	}
	p, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		return notFound(err, "product not found")
	}
	apierr.WriteJSON(w, http.StatusOK, p)
	return nil
}

// AdminCreateProduct 创建商品
func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) error {
	var req productRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return err
	}
	if req.Price == nil {
		return apierr.Validation("price is required")
	}
	if req.Price.IsNegative() {
		return apierr.Validation("price must not be negative")
	}
	if err := h.validateTranslations(req.Translations, true); err != nil {
		return err
	}
	if err := h.checkCategory(r, req.CategoryID.Value); err != nil {
		return err
	}
	if req.Media != nil {
		if err := h.checkAssets(r, *req.Media); err != nil {
			return err
		}
	}

	p := &model.Product{
		Price:        *req.Price,
		Featured:     req.Featured != nil && *req.Featured,
		CategoryID:   req.CategoryID.Value,
		Translations: productTranslations(req.Translations),
	}
	if err := h.store.CreateProduct(r.Context(), p); err != nil {
		return err
	}
	if req.Media != nil && len(*req.Media) > 0 {
		if err := h.replaceMedia(r, p.ID, *req.Media); err != nil {
			return err
		}
	}

	created, err := h.store.GetProduct(r.Context(), p.ID)
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusCreated, created)
	return nil
}

// AdminUpdateProduct 更新商品：基础字段按需覆盖，翻译逐语言 upsert，media 提供时整体替换
func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return err
	}
	var req productRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return err
	}

	p, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		return notFound(err, "product not found")
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return apierr.Validation("price must not be negative")
		}
		p.Price = *req.Price
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
	if req.CategoryID.Set {
		if err := h.checkCategory(r, req.CategoryID.Value); err != nil {
			return err
		}
		p.CategoryID = req.CategoryID.Value
	}
	if err := h.validateTranslations(req.Translations, false); err != nil {
		return err
	}
	if req.Media != nil {
		if err := h.checkAssets(r, *req.Media); err != nil {
			return err
		}
	}

	if err := h.store.UpdateProduct(r.Context(), p); err != nil {
		return err
	}
	if len(req.Translations) > 0 {
		if err := h.store.UpsertProductTranslations(r.Context(), id, productTranslations(req.Translations)); err != nil {
			return err
		}
	}
	if req.Media != nil {
		if err := h.replaceMedia(r, id, *req.Media); err != nil {
			return err
		}
	}

	updated, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, updated)
	return nil
}

// AdminDeleteProduct 删除商品并回收孤儿媒体
func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return err
	}
	assetIDs, err := h.store.DeleteProduct(r.Context(), id)
	if err != nil {
		return notFound(err, "product not found")
	}
	h.collect(r, assetIDs)
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
	return nil
}

// ============================================================================
// 分类
// ============================================================================

// AdminListCategories 分类列表（含全部翻译）
func (h *Handler) AdminListCategories(w http.ResponseWriter, r *http.Request) error {
	cats, err := h.store.ListCategories(r.Context())
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": cats})
	return nil
}

// AdminCreateCategory 创建分类
func (h *Handler) AdminCreateCategory(w http.ResponseWriter, r *http.Request) error {
	var req categoryRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.validateTranslations(req.Translations, true); err != nil {
		return err
	}
	c := &model.Category{Translations: categoryTranslations(req.Translations)}
	if err := h.store.CreateCategory(r.Context(), c); err != nil {
		return err
	}
	created, err := h.store.GetCategory(r.Context(), c.ID)
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusCreated, created)
	return nil
}

// AdminUpdateCategory 按语言 upsert 分类翻译
func (h *Handler) AdminUpdateCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return err
	}
	var req categoryRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.validateTranslations(req.Translations, true); err != nil {
		return err
	}
	if _, err := h.store.GetCategory(r.Context(), id); err != nil {
		return notFound(err, "category not found")
	}
	if err := h.store.UpsertCategoryTranslations(r.Context(), id, categoryTranslations(req.Translations)); err != nil {
		return err
	}
	if err := h.store.TouchCategory(r.Context(), id, time.Now().UTC()); err != nil {
		return err
	}
	updated, err := h.store.GetCategory(r.Context(), id)
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, updated)
	return nil
}

// AdminDeleteCategory 删除分类，关联商品变为未分类
func (h *Handler) AdminDeleteCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		return notFound(err, "category not found")
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
	return nil
}
