// Package server 路由配置与 HTTP 基础设施
//
// 本文件组装各领域包的路由：
//   - auth: 注册、登录、个人资料
//   - catalog: 店面商品/分类浏览与管理端维护
//   - cart: 购物车、结算、用户订单
//   - media: 媒体上传、关联与访问
//   - admin: 用户、订单、首页统计
//   - audit: 管理员操作日志
//
// middleware.go 提供 CORS、请求 ID 与访问日志，static.go 提供店面静态文件。
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"shop-admin/internal/apiserver/admin"
	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/apiserver/audit"
	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/apiserver/cart"
	"shop-admin/internal/apiserver/catalog"
	"shop-admin/internal/apiserver/media"
	"shop-admin/internal/apiserver/metrics"
	"shop-admin/internal/config"
	"shop-admin/internal/shared/objstore"
	"shop-admin/internal/shared/storage"
	"shop-admin/pkg/logging"
)

// Options Handler 依赖
type Options struct {
	Store   storage.PersistentStore
	Blobs   objstore.BlobStore
	Config  *config.Config
	Metrics *metrics.Metrics // nil 时不采集指标，/metrics 不注册
	Logger  *logging.Logger  // nil 时使用默认 http 日志器
}

// Handler API 处理器
//
// Handler 是所有 HTTP API 的入口，负责：
//   - 创建各领域处理器并注册路由
//   - 挂载全局中间件
//   - 在配置了静态目录时提供店面 SPA
type Handler struct {
	store   storage.PersistentStore
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  *logging.Logger

	guard *auth.Guard
	media *media.Handler
	langs *catalog.Languages

	mediaSvc *media.Service
	recorder *audit.Recorder
}

// NewHandler 创建 Handler 实例
func NewHandler(opts Options) (*Handler, error) {
	if opts.Store == nil || opts.Blobs == nil || opts.Config == nil {
		return nil, fmt.Errorf("server: store, blobs and config are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default("http")
	}

	cfg := opts.Config
	recorder := audit.NewRecorder(opts.Store, opts.Metrics)
	buckets := media.Buckets{Images: cfg.MinIO.ImagesBucket, Videos: cfg.MinIO.VideosBucket}
	mediaSvc := media.NewService(opts.Store, opts.Blobs, buckets, cfg.Media.MaxUploadBytes, opts.Metrics)

	return &Handler{
		store:    opts.Store,
		cfg:      cfg,
		metrics:  opts.Metrics,
		logger:   logger,
		guard:    auth.NewGuard(opts.Store, cfg.Auth, recorder),
		media:    media.NewHandler(mediaSvc, opts.Store),
		langs:    catalog.NewLanguages(cfg.Catalog),
		mediaSvc: mediaSvc,
		recorder: recorder,
	}, nil
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查与指标:
//   - GET /health
//   - GET /metrics
//
// 认证 (auth):
//   - POST /api/auth/register | /api/auth/login | /api/auth/admin-login
//   - GET  /api/auth/me, PUT /api/auth/profile, PUT /api/auth/password
//
// 店面 (catalog / cart):
//   - GET /api/products, /api/products/{id}, /api/categories
//   - /api/cart, /api/cart/items/{id}, POST /api/cart/checkout
//   - GET /api/orders, /api/orders/{id}
//
// 管理端 (/api/admin/...):
//   - products, categories, media, users, orders, dashboard, logs
//
// 媒体:
//   - GET /media/{key}
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}

	auth.NewHandler(h.store, h.cfg.Auth).RegisterRoutes(mux, h.guard)
	catalog.NewHandler(h.store, h.langs, h.mediaSvc).RegisterRoutes(mux, h.guard)
	cart.NewHandler(h.store, h.langs).RegisterRoutes(mux, h.guard)
	h.media.RegisterRoutes(mux, h.guard)
	admin.NewHandler(h.store).RegisterRoutes(mux, h.guard)
	audit.NewHandler(h.store, h.cfg.Audit.RetentionDays, h.metrics).RegisterRoutes(mux, h.guard)

	// /api/ 下未匹配的路由统一返回 JSON 404
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		apierr.Write(w, r, apierr.NotFound("route not found"))
	})
	mux.Handle("/", h.fallback())

	var handler http.Handler = mux
	handler = h.metrics.Middleware(handler)
	handler = requestLogMiddleware(h.logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = corsMiddleware(h.cfg.APIServer.CORSOrigins)(handler)
	return handler
}

// fallback 非 API 路径：静态文件优先；不存在且扩展名为已知媒体类型时按存储键查找；其余交给 SPA
func (h *Handler) fallback() http.Handler {
	var spa *spaHandler
	if dir := h.cfg.APIServer.StaticDir; dir != "" {
		var err error
		if spa, err = newSPAHandler(os.DirFS(dir)); err != nil {
			h.logger.Warn("static dir unusable, storefront disabled", "dir", dir, "error", err)
			spa = nil
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if spa != nil && spa.hasFile(r.URL.Path) {
			spa.ServeHTTP(w, r)
			return
		}
		if (r.Method == http.MethodGet || r.Method == http.MethodHead) && media.IsMediaPath(r.URL.Path) {
			h.media.ServeKey(w, r, r.URL.Path)
			return
		}
		if spa == nil {
			http.NotFound(w, r)
			return
		}
		spa.ServeHTTP(w, r)
	})
}

// pinger 可探活的存储
type pinger interface {
	Ping(ctx context.Context) error
}

// Health 健康检查：数据库可达时返回 ok
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			apierr.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
