// Package admin 管理后台：用户、订单与首页统计
package admin

import (
	"net/http"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/shared/storage"
)

// Store 管理后台依赖的存储
type Store interface {
	storage.UserStore
	storage.OrderStore
}

// Handler 管理后台 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建管理后台处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册管理后台路由（管理层）
func (h *Handler) RegisterRoutes(mux *http.ServeMux, guard *auth.Guard) {
	mux.Handle("GET /api/admin/users", guard.Admin(apierr.Handle(h.ListUsers)))
	mux.Handle("GET /api/admin/users/{id}", guard.Admin(apierr.Handle(h.GetUser)))
	mux.Handle("PUT /api/admin/users/{id}", guard.Admin(apierr.Handle(h.UpdateUser)))
	mux.Handle("DELETE /api/admin/users/{id}", guard.Admin(apierr.Handle(h.DeleteUser)))

	mux.Handle("GET /api/admin/orders", guard.Admin(apierr.Handle(h.ListOrders)))
	mux.Handle("GET /api/admin/orders/{id}", guard.Admin(apierr.Handle(h.GetOrder)))
	mux.Handle("PUT /api/admin/orders/{id}", guard.Admin(apierr.Handle(h.UpdateOrder)))
	mux.Handle("DELETE /api/admin/orders/{id}", guard.Admin(apierr.Handle(h.DeleteOrder)))

	mux.Handle("GET /api/admin/dashboard", guard.Admin(apierr.Handle(h.Dashboard)))
}

// Dashboard 首页统计
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.store.DashboardStats(r.Context())
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, stats)
	return nil
}
