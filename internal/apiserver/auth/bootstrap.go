package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

// EnsureSuperAdmin 确保指定邮箱的超级管理员存在
// 账户已存在时提升为 super_admin 并恢复 active，密码保持不变
func EnsureSuperAdmin(ctx context.Context, store storage.UserStore, email, password string, cost int) (*model.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil
	}
	if !IsValidEmail(email) {
		return nil, fmt.Errorf("invalid super admin email %q", email)
	}

	existing, err := store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == model.UserRoleSuperAdmin && existing.Status == model.UserStatusActive {
			log.Printf("[auth] Super admin already exists: %s (%d)", email, existing.ID)
			return existing, nil
		}
		log.Printf("[auth] Upgrading user %s to super_admin", email)
		existing.Role = model.UserRoleSuperAdmin
		existing.Status = model.UserStatusActive
		if err := store.UpdateUser(ctx, existing); err != nil {
			return nil, fmt.Errorf("upgrade super admin: %w", err)
		}
		return existing, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("check super admin: %w", err)
	}

	if err := ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("super admin password: %w", err)
	}
	hash, err := HashPassword(password, cost)
	if err != nil {
		return nil, fmt.Errorf("hash super admin password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Name:         "Super Admin",
		PasswordHash: hash,
		Role:         model.UserRoleSuperAdmin,
		Status:       model.UserStatusActive,
		AuthMethod:   model.AuthMethodPassword,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create super admin: %w", err)
	}
	log.Printf("[auth] Created super admin: %s (%d)", email, user.ID)
	return user, nil
}
