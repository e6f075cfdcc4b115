package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/config"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
	"shop-admin/pkg/logging"
)

// Auditor 管理端请求审计
// 实现方必须吞掉写入失败，不影响请求本身
type Auditor interface {
	RecordRequest(r *http.Request, actor *model.User)
}

// Guard 认证与授权中间件链
//
//	用户层：Authenticate -> RequireActive
//	管理层：Authenticate -> RequireAdmin（审计）
//	超管层：Authenticate -> RequireAdmin -> RequireSuperAdmin
type Guard struct {
	store   storage.UserStore
	cfg     config.AuthConfig
	auditor Auditor
}

// NewGuard 创建中间件链；auditor 为 nil 时不写审计
func NewGuard(store storage.UserStore, cfg config.AuthConfig, auditor Auditor) *Guard {
	return &Guard{store: store, cfg: cfg, auditor: auditor}
}

// bearerToken 提取 Authorization: Bearer <token>
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", apierr.Unauthenticated("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apierr.Unauthenticated("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// authenticate 校验令牌并加载实时用户记录
func (g *Guard) authenticate(r *http.Request) (*model.User, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := VerifyToken(g.cfg, raw)
	if err != nil {
		log.Printf("[auth] token verify error: %v", err)
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, apierr.InvalidToken("invalid token subject")
	}
	user, err := g.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apierr.Unauthenticated("user not found")
		}
		return nil, apierr.Internal(err)
	}
	return user, nil
}

// Authenticate 认证中间件：令牌有效且用户存在
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.authenticate(r)
		if err != nil {
			apierr.Write(w, r, err)
			return
		}
		ctx := WithUser(r.Context(), user)
		ctx = logging.ContextWithUserID(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireActive 用户层：账户必须为 active
func (g *Guard) RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			apierr.Write(w, r, apierr.Unauthenticated("authentication required"))
			return
		}
		if user.Status != model.UserStatusActive {
			apierr.Write(w, r, apierr.Unauthenticated("account inactive"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin 管理层：角色须为管理层级，账户须为 active；通过后写审计
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			apierr.Write(w, r, apierr.Unauthenticated("authentication required"))
			return
		}
		if !user.Role.IsAdminTier() {
			apierr.Write(w, r, apierr.Forbidden("admin access required"))
			return
		}
		if user.Status != model.UserStatusActive {
			apierr.Write(w, r, apierr.AccountDisabled())
			return
		}
		if g.auditor != nil {
			g.auditor.RecordRequest(r, user)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperAdmin 超管层：角色须为 super_admin
func (g *Guard) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil || user.Role != model.UserRoleSuperAdmin {
			apierr.Write(w, r, apierr.Forbidden("super admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ============================================================================
// 组合链
// ============================================================================

// User 用户层路由
func (g *Guard) User(h http.HandlerFunc) http.Handler {
	return g.Authenticate(g.RequireActive(h))
}

// Admin 管理层路由
func (g *Guard) Admin(h http.HandlerFunc) http.Handler {
	return g.Authenticate(g.RequireAdmin(h))
}

// SuperAdmin 超管层路由
func (g *Guard) SuperAdmin(h http.HandlerFunc) http.Handler {
	return g.Authenticate(g.RequireAdmin(g.RequireSuperAdmin(h)))
}
