// Package audit 管理员操作审计：请求记录、日志查询、保留期清理
package audit

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"

	"shop-admin/internal/apiserver/metrics"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

// adminPrefix 管理端路由前缀，审计目标从其后的路径段推导
const adminPrefix = "/api/admin/"

// Recorder 审计记录器，同步写入，失败只记日志与指标
type Recorder struct {
	store   storage.AdminLogStore
	metrics *metrics.Metrics
}

// NewRecorder 创建审计记录器
func NewRecorder(store storage.AdminLogStore, m *metrics.Metrics) *Recorder {
	return &Recorder{store: store, metrics: m}
}

// Record 写入一条审计记录
// 写入失败不向调用方返回错误
func (rec *Recorder) Record(ctx context.Context, entry *model.AdminLogEntry) {
	if err := rec.store.CreateAdminLog(ctx, entry); err != nil {
		log.Printf("[audit] failed to write admin log (actor=%d action=%s): %v", entry.ActorID, entry.Action, err)
		rec.metrics.RecordAuditFailure()
	}
}

// RecordRequest 由管理层中间件在授权通过后调用
func (rec *Recorder) RecordRequest(r *http.Request, actor *model.User) {
	rec.Record(r.Context(), EntryFor(r, actor))
}

// EntryFor 根据请求构造审计记录
func EntryFor(r *http.Request, actor *model.User) *model.AdminLogEntry {
	action, targetType, targetID := Describe(r.Method, r.URL.Path)
	details, _ := json.Marshal(map[string]string{
		"method": r.Method,
		"path":   r.URL.Path,
		"query":  r.URL.RawQuery,
	})
	return &model.AdminLogEntry{
		ActorID:    actor.ID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    types.JSONText(details),
		IP:         ClientIP(r),
		UserAgent:  r.UserAgent(),
		CreatedAt:  time.Now().UTC(),
	}
}

// Describe 由方法与路径推导动作标签和目标
//
//	GET    /api/admin/users           -> view.users
//	PUT    /api/admin/orders/7        -> update.orders, orders, 7
//	DELETE /api/admin/products/3/media/9 -> delete.products.media, products, 3
//	POST   /api/admin/logs/cleanup    -> create.logs.cleanup, logs
func Describe(method, path string) (action, targetType, targetID string) {
	rest := strings.Trim(strings.TrimPrefix(path, adminPrefix), "/")
	if !strings.HasPrefix(path, adminPrefix) || rest == "" {
		rest = "admin"
	}

	var resource []string
	for i, seg := range strings.Split(rest, "/") {
		if seg == "" {
			continue
		}
		if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
			if targetID == "" {
				targetID = seg
			}
			continue
		}
		if i == 0 {
			targetType = seg
		}
		resource = append(resource, seg)
	}
	return verb(method) + "." + strings.Join(resource, "."), targetType, targetID
}

func verb(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "view"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// ClientIP 客户端地址：X-Forwarded-For 首跳 > X-Real-IP > RemoteAddr
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
