package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleUser       UserRole = "user"
	UserRoleModerator  UserRole = "moderator"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperAdmin UserRole = "super_admin"
)

// Valid 是否为已知角色
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleModerator, UserRoleAdmin, UserRoleSuperAdmin:
		return true
	}
	return false
}

// IsAdminTier 是否属于管理层级（admin / moderator / super_admin）
func (r UserRole) IsAdminTier() bool {
	return r == UserRoleModerator || r == UserRoleAdmin || r == UserRoleSuperAdmin
}

// UserStatus 用户状态
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusDisabled  UserStatus = "disabled"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted" // 软删除，行保留
)

// Valid 是否为已知状态
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusDisabled, UserStatusSuspended, UserStatusDeleted:
		return true
	}
	return false
}

// AuthMethod 登录方式
type AuthMethod string

const (
	AuthMethodPassword AuthMethod = "password"
	AuthMethodOAuth    AuthMethod = "oauth"
)

// User 用户
type User struct {
	ID           int64      `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"` // never expose in JSON
	Role         UserRole   `json:"role" db:"role"`
	Status       UserStatus `json:"status" db:"status"`
	AuthMethod   AuthMethod `json:"authMethod" db:"auth_method"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// UserFilter 管理后台用户列表过滤条件
type UserFilter struct {
	Search string // 匹配 email / name
	Status UserStatus
	Role   UserRole
	Page
}
