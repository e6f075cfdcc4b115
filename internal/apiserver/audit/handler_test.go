package audit

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/testutil"
)

func TestListAndCleanup(t *testing.T) {
	store := testutil.NewStore(t)
	cfg := testutil.AuthConfig()
	guard := auth.NewGuard(store, cfg, NewRecorder(store, nil))
	mux := http.NewServeMux()
	NewHandler(store, 90, nil).RegisterRoutes(mux, guard)

	admin := testutil.CreateUser(t, store, "a@x.com", model.UserRoleAdmin, model.UserStatusActive)
	super := testutil.CreateUser(t, store, "s@x.com", model.UserRoleSuperAdmin, model.UserStatusActive)
	adminToken, err := auth.IssueToken(cfg, admin)
	require.NoError(t, err)
	superToken, err := auth.IssueToken(cfg, super)
	require.NoError(t, err)

	seedLogs(t, store, admin.ID, 5, 31, 45, 120, 400)
	// 距 30 天截止线尚差一分钟，清理后应保留
	require.NoError(t, store.CreateAdminLog(context.Background(), &model.AdminLogEntry{
		ActorID:   admin.ID,
		Action:    "view.orders",
		CreatedAt: time.Now().UTC().Add(-30*24*time.Hour + time.Minute),
	}))

	// 列表请求本身也会写一条审计（天龄 0）
	rec := testutil.Do(t, mux, "GET", "/api/admin/logs?limit=50", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page struct {
		Logs       []model.AdminLogEntry `json:"logs"`
		Pagination model.Pagination      `json:"pagination"`
	}
	testutil.Decode(t, rec, &page)
	assert.Equal(t, 5, page.Pagination.Total, "rows older than 90 days are hidden")
	for _, l := range page.Logs {
		assert.Equal(t, "a@x.com", l.ActorEmail)
	}

	// 列表为只读：超过保留期的行仍在库中
	_, all, err := store.ListAdminLogs(context.Background(), model.AdminLogFilter{})
	require.NoError(t, err)
	assert.Equal(t, 7, all)

	rec = testutil.Do(t, mux, "POST", "/api/admin/logs/cleanup", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = testutil.Do(t, mux, "POST", "/api/admin/logs/cleanup?days=0", superToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", testutil.ErrorCode(t, rec))

	rec = testutil.Do(t, mux, "POST", "/api/admin/logs/cleanup?days=30", superToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Deleted int64 `json:"deleted"`
		Days    int   `json:"days"`
	}
	testutil.Decode(t, rec, &res)
	assert.Equal(t, int64(4), res.Deleted)
	assert.Equal(t, 30, res.Days)

	// 剩余：天龄 5 与截止线内的种子行 + 四次请求各自写入的审计行（被拒的请求同样已通过管理层）
	left, remaining, err := store.ListAdminLogs(context.Background(), model.AdminLogFilter{Page: model.Page{Limit: 50}})
	require.NoError(t, err)
	assert.Equal(t, 2+4, remaining)
	var inside int
	for _, l := range left {
		if l.Action == "view.orders" {
			inside++
		}
	}
	assert.Equal(t, 1, inside)
}

func TestListFilters(t *testing.T) {
	store := testutil.NewStore(t)
	cfg := testutil.AuthConfig()
	mux := http.NewServeMux()
	NewHandler(store, 90, nil).RegisterRoutes(mux, auth.NewGuard(store, cfg, nil))

	admin := testutil.CreateUser(t, store, "a@x.com", model.UserRoleAdmin, model.UserStatusActive)
	other := testutil.CreateUser(t, store, "b@x.com", model.UserRoleModerator, model.UserStatusActive)
	seedLogs(t, store, admin.ID, 1, 2)
	seedLogs(t, store, other.ID, 3)
	token, err := auth.IssueToken(cfg, admin)
	require.NoError(t, err)

	rec := testutil.Do(t, mux, "GET", "/api/admin/logs?actorId="+strconv.FormatInt(other.ID, 10), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Pagination model.Pagination `json:"pagination"`
	}
	testutil.Decode(t, rec, &page)
	assert.Equal(t, 1, page.Pagination.Total)

	rec = testutil.Do(t, mux, "GET", "/api/admin/logs?from=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
