// Package reqparam 路径与查询参数解析，错误统一为 Validation
package reqparam

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/shared/model"
)

// PathID 解析正整数路径参数
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.Validation("invalid %s: %q", name, raw)
	}
	return id, nil
}

// Page 解析 page / limit，非法值回退默认
func Page(r *http.Request) model.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return model.Page{Page: page, Limit: limit}.Normalize()
}

// Int 解析整数查询参数，缺省返回 def
func Int(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.Validation("invalid %s: %q", name, raw)
	}
	return n, nil
}

// OptionalID 解析可选的正整数查询参数，缺省返回 nil
func OptionalID(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apierr.Validation("invalid %s: %q", name, raw)
	}
	return &id, nil
}

// OptionalBool 解析可选布尔查询参数
func OptionalBool(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apierr.Validation("invalid %s: %q", name, raw)
	}
	return &b, nil
}

// OptionalTime 解析 RFC3339 或 YYYY-MM-DD 时间参数
// 仅日期的 to 参数取当天结束（次日 0 点前）
func OptionalTime(r *http.Request, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apierr.Validation("invalid %s: %q (expected RFC3339 or YYYY-MM-DD)", name, raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
