package media

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/apiserver/reqparam"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/objstore"
)

// multipartOverhead multipart 边界与其他字段的额外余量
const multipartOverhead = 1 << 20

// Handler 媒体 HTTP 处理器
type Handler struct {
	svc   *Service
	store Store
}

// NewHandler 创建媒体处理器
func NewHandler(svc *Service, store Store) *Handler {
	return &Handler{svc: svc, store: store}
}

// RegisterRoutes 注册管理端媒体路由与公开的媒体访问路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux, guard *auth.Guard) {
	mux.Handle("POST /api/admin/media", guard.Admin(apierr.Handle(h.Upload)))
	mux.Handle("GET /api/admin/media", guard.Admin(apierr.Handle(h.List)))
	mux.Handle("DELETE /api/admin/products/{id}/media/{assetId}", guard.Admin(apierr.Handle(h.Unlink)))
	mux.HandleFunc("GET /media/{key...}", h.Serve)
}

// Upload 上传媒体文件（multipart 字段 file，可选 productId、thumbnail）
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) error {
	limit := h.svc.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apierr.Validation("file exceeds %d bytes", limit)
		}
		return apierr.Validation("invalid multipart form").WithDetails(err.Error())
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return apierr.Validation("file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return apierr.Internal(err)
	}

	req := IngestRequest{
		Data:     data,
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
	}
	if raw := strings.TrimSpace(r.FormValue("productId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return apierr.Validation("invalid productId: %q", raw)
		}
		req.ProductID = &id
	}
	if raw := strings.TrimSpace(r.FormValue("thumbnail")); raw != "" {
		thumb, err := strconv.ParseBool(raw)
		if err != nil {
			return apierr.Validation("invalid thumbnail: %q", raw)
		}
		req.Thumbnail = thumb
	}

	asset, link, err := h.svc.Ingest(r.Context(), req)
	if err != nil {
		return err
	}
	resp := map[string]interface{}{"asset": asset}
	if link != nil {
		resp["link"] = link
	}
	apierr.WriteJSON(w, http.StatusCreated, resp)
	return nil
}

// List 分页列出媒体资源（附引用计数）
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	page := reqparam.Page(r)
	assets, total, err := h.store.ListMediaAssets(r.Context(), page)
	if err != nil {
		return err
	}
	if assets == nil {
		assets = []*model.MediaAssetWithRefs{}
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"media":      assets,
		"pagination": model.NewPagination(page, total),
	})
	return nil
}

// Unlink 移除商品的某个媒体
func (h *Handler) Unlink(w http.ResponseWriter, r *http.Request) error {
	productID, err := reqparam.PathID(r, "id")
	if err != nil {
		return err
	}
	assetID, err := reqparam.PathID(r, "assetId")
	if err != nil {
		return err
	}
	assetDeleted, err := h.svc.Unlink(r.Context(), productID, assetID)
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "media unlinked",
		"assetDeleted": assetDeleted,
	})
	return nil
}

// Serve 按存储键返回媒体内容
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	h.ServeKey(w, r, r.PathValue("key"))
}

// ServeKey 依次在 images、videos bucket 中查找 key 并写出
// 存储键由时间戳与文件名组成，内容不可变，可长期缓存
func (h *Handler) ServeKey(w http.ResponseWriter, r *http.Request, key string) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		http.NotFound(w, r)
		return
	}
	if r.Method == http.MethodHead {
		h.headKey(w, r, key)
		return
	}
	obj, err := h.svc.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("[media] open %s failed: %v", key, err)
		http.Error(w, "failed to read media", http.StatusInternalServerError)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = ContentTypeFor(key)
	}
	w.Header().Set("Content-Type", contentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		log.Printf("[media] write %s failed: %v", key, err)
	}
}

// headKey HEAD 请求只检查对象是否存在
func (h *Handler) headKey(w http.ResponseWriter, r *http.Request, key string) {
	if _, err := h.svc.Locate(r.Context(), key); err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("[media] stat %s failed: %v", key, err)
		http.Error(w, "failed to read media", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ContentTypeFor(key))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
}
