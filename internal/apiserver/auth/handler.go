package auth

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/config"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

// Handler 认证 HTTP 处理器
type Handler struct {
	store storage.UserStore
	cfg   config.AuthConfig
}

// NewHandler 创建认证处理器
func NewHandler(store storage.UserStore, cfg config.AuthConfig) *Handler {
	return &Handler{store: store, cfg: cfg}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux, guard *Guard) {
	mux.HandleFunc("POST /api/auth/register", apierr.Handle(h.Register))
	mux.HandleFunc("POST /api/auth/login", apierr.Handle(h.Login))
	mux.HandleFunc("POST /api/auth/admin-login", apierr.Handle(h.AdminLogin))
	mux.Handle("GET /api/auth/me", guard.User(apierr.Handle(h.Me)))
	mux.Handle("PUT /api/auth/profile", guard.User(apierr.Handle(h.UpdateProfile)))
	mux.Handle("PUT /api/auth/password", guard.User(apierr.Handle(h.ChangePassword)))
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name string `json:"name"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// ============================================================================
// Handlers
// ============================================================================

// Register 用户注册
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return err
	}
	req.Email = NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Name == "" || req.Password == "" {
		return apierr.Validation("email, name, password are required")
	}
	if !IsValidEmail(req.Email) {
		return apierr.Validation("invalid email format")
	}
	if err := ValidatePassword(req.Password); err != nil {
		return err
	}

	hash, err := HashPassword(req.Password, h.cfg.BcryptCost)
	if err != nil {
		return apierr.Internal(err)
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         model.UserRoleUser,
		Status:       model.UserStatusActive,
		AuthMethod:   model.AuthMethodPassword,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return apierr.Conflict("email already registered")
		}
		return apierr.Internal(err)
	}
	log.Printf("[auth.register] user %d registered", user.ID)

	return h.respondWithToken(w, http.StatusCreated, user)
}

// Login 用户登录
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	user, err := h.checkCredentials(r)
	if err != nil {
		return err
	}
	return h.respondWithToken(w, http.StatusOK, user)
}

// AdminLogin 管理后台登录：凭据校验之外要求管理层级角色
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) error {
	user, err := h.checkCredentials(r)
	if err != nil {
		return err
	}
	if !user.Role.IsAdminTier() {
		log.Printf("[auth.admin-login] user %d rejected: role %s", user.ID, user.Role)
		return apierr.Forbidden("admin access required")
	}
	return h.respondWithToken(w, http.StatusOK, user)
}

// checkCredentials 用户不存在、已删除、密码错误统一返回 InvalidCredentials
func (h *Handler) checkCredentials(r *http.Request) (*model.User, error) {
	var req loginRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	if req.Email == "" || req.Password == "" {
		return nil, apierr.Validation("email and password are required")
	}

	user, err := h.store.GetUserByEmail(r.Context(), NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apierr.InvalidCredentials()
		}
		return nil, apierr.Internal(err)
	}
	if user.Status == model.UserStatusDeleted || !CheckPassword(req.Password, user.PasswordHash) {
		return nil, apierr.InvalidCredentials()
	}
	if user.Status != model.UserStatusActive {
		return nil, apierr.AccountDisabled()
	}
	return user, nil
}

// Me 获取当前用户信息
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) error {
	user := UserFromContext(r.Context())
	if user == nil {
		return apierr.Unauthenticated("authentication required")
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	return nil
}

// UpdateProfile 修改昵称
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) error {
	user := UserFromContext(r.Context())
	if user == nil {
		return apierr.Unauthenticated("authentication required")
	}
	var req profileRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apierr.Validation("name is required")
	}

	updated := *user
	updated.Name = name
	if err := h.store.UpdateUser(r.Context(), &updated); err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": &updated})
	return nil
}

// ChangePassword 修改密码
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	user := UserFromContext(r.Context())
	if user == nil {
		return apierr.Unauthenticated("authentication required")
	}
	var req changePasswordRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return err
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apierr.Validation("currentPassword and newPassword are required")
	}
	if !CheckPassword(req.CurrentPassword, user.PasswordHash) {
		return apierr.InvalidCredentials()
	}
	if err := ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := HashPassword(req.NewPassword, h.cfg.BcryptCost)
	if err != nil {
		return apierr.Internal(err)
	}
	if err := h.store.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
	return nil
}

func (h *Handler) respondWithToken(w http.ResponseWriter, status int, user *model.User) error {
	token, err := IssueToken(h.cfg, user)
	if err != nil {
		return apierr.Internal(err)
	}
	apierr.WriteJSON(w, status, authResponse{Token: token, User: user})
	return nil
}

// ============================================================================
// 工具函数
// ============================================================================

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail 邮箱格式校验
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NormalizeEmail 去空白并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
