package audit

import (
	"net/http"
	"strings"
	"time"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/apiserver/metrics"
	"shop-admin/internal/apiserver/reqparam"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

const (
	// DefaultCleanupDays 显式清理的默认天数
	DefaultCleanupDays = 30
	// MaxCleanupDays 显式清理允许的最大天数
	MaxCleanupDays = 3650
)

// Handler 审计日志 HTTP 处理器
type Handler struct {
	store         storage.AdminLogStore
	retentionDays int
	metrics       *metrics.Metrics
}

// NewHandler 创建审计日志处理器；retentionDays 为列表可见窗口
func NewHandler(store storage.AdminLogStore, retentionDays int, m *metrics.Metrics) *Handler {
	return &Handler{store: store, retentionDays: retentionDays, metrics: m}
}

// RegisterRoutes 注册审计日志路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux, guard *auth.Guard) {
	mux.Handle("GET /api/admin/logs", guard.Admin(apierr.Handle(h.List)))
	mux.Handle("POST /api/admin/logs/cleanup", guard.SuperAdmin(apierr.Handle(h.Cleanup)))
}

// List 分页查询审计日志，不返回保留期之外的记录
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	filter := model.AdminLogFilter{
		Action:     strings.TrimSpace(q.Get("action")),
		TargetType: strings.TrimSpace(q.Get("targetType")),
		NotBefore:  time.Now().UTC().Add(-days(h.retentionDays)),
		Page:       reqparam.Page(r),
	}
	actorID, err := reqparam.OptionalID(r, "actorId")
	if err != nil {
		return err
	}
	if actorID != nil {
		filter.ActorID = *actorID
	}
	if filter.From, err = reqparam.OptionalTime(r, "from", false); err != nil {
		return err
	}
	if filter.To, err = reqparam.OptionalTime(r, "to", true); err != nil {
		return err
	}

	logs, total, err := h.store.ListAdminLogs(r.Context(), filter)
	if err != nil {
		return err
	}
	if logs == nil {
		logs = []*model.AdminLogEntry{}
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":       logs,
		"pagination": model.NewPagination(filter.Page, total),
	})
	return nil
}

// Cleanup 删除早于 days 天的审计日志（仅超级管理员）
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) error {
	n, err := reqparam.Int(r, "days", DefaultCleanupDays)
	if err != nil {
		return err
	}
	if n < 1 || n > MaxCleanupDays {
		return apierr.Validation("days must be between 1 and %d", MaxCleanupDays)
	}

	start := time.Now()
	deleted, err := PurgeOlderThan(r.Context(), h.store, time.Now().UTC(), n)
	if err != nil {
		return err
	}
	h.metrics.RecordAuditSweep(deleted, time.Since(start))

	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": deleted,
		"days":    n,
	})
	return nil
}
