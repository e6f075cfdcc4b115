package admin

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/apiserver/reqparam"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

type updateUserRequest struct {
	Name   *string           `json:"name"`
	Email  *string           `json:"email"`
	Role   *model.UserRole   `json:"role"`
	Status *model.UserStatus `json:"status"`
}

// ListUsers 用户分页列表
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	filter := model.UserFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Status: model.UserStatus(q.Get("status")),
		Role:   model.UserRole(q.Get("role")),
		Page:   reqparam.Page(r),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return apierr.Validation("invalid status %q", filter.Status)
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return apierr.Validation("invalid role %q", filter.Role)
	}

	users, total, err := h.store.ListUsers(r.Context(), filter)
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users":      users,
		"pagination": model.NewPagination(filter.Page, total),
	})
	return nil
}

func (h *Handler) loadUser(r *http.Request) (*model.User, error) {
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apierr.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// GetUser 用户详情
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) error {
	user, err := h.loadUser(r)
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, user)
	return nil
}

// checkModify 校验操作者能否把 target 改成 next
//
//   - 只有 super_admin 能修改 super_admin 账户，或授予/撤销 super_admin
//   - 不能降低自己的角色，不能停用或删除自己
func checkModify(actor, target, next *model.User) error {
	touchesSuper := target.Role == model.UserRoleSuperAdmin || next.Role == model.UserRoleSuperAdmin
	if touchesSuper && actor.Role != model.UserRoleSuperAdmin {
		return apierr.Forbidden("only a super admin can modify super admin accounts")
	}
	if actor.ID == target.ID {
		if next.Role != target.Role {
			return apierr.Forbidden("cannot change your own role")
		}
		if next.Status != model.UserStatusActive {
			return apierr.Forbidden("cannot disable or delete your own account")
		}
	}
	return nil
}

// UpdateUser 修改用户资料、角色与状态
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) error {
	actor := auth.UserFromContext(r.Context())
	if actor == nil {
		return apierr.Unauthenticated("authentication required")
	}
	target, err := h.loadUser(r)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return err
	}

	next := *target
	if req.Name != nil {
		next.Name = strings.TrimSpace(*req.Name)
		if next.Name == "" {
			return apierr.Validation("name must not be empty")
		}
	}
	if req.Email != nil {
		next.Email = auth.NormalizeEmail(*req.Email)
		if !auth.IsValidEmail(next.Email) {
			return apierr.Validation("invalid email format")
		}
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return apierr.Validation("invalid role %q", *req.Role)
		}
		next.Role = *req.Role
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return apierr.Validation("invalid status %q", *req.Status)
		}
		next.Status = *req.Status
	}
	if err := checkModify(actor, target, &next); err != nil {
		return err
	}

	if err := h.store.UpdateUser(r.Context(), &next); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return apierr.Conflict("email already in use")
		}
		return err
	}
	if next.Role != target.Role || next.Status != target.Status {
		log.Printf("[admin.users] actor %d changed user %d: role %s->%s status %s->%s",
			actor.ID, target.ID, target.Role, next.Role, target.Status, next.Status)
	}
	apierr.WriteJSON(w, http.StatusOK, &next)
	return nil
}

// DeleteUser 软删除：状态置为 deleted，行保留
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	actor := auth.UserFromContext(r.Context())
	if actor == nil {
		return apierr.Unauthenticated("authentication required")
	}
	target, err := h.loadUser(r)
	if err != nil {
		return err
	}
	next := *target
	next.Status = model.UserStatusDeleted
	if err := checkModify(actor, target, &next); err != nil {
		return err
	}
	if err := h.store.UpdateUser(r.Context(), &next); err != nil {
		return err
	}
	log.Printf("[admin.users] actor %d deleted user %d", actor.ID, target.ID)
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
	return nil
}
