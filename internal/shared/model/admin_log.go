package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AdminLogEntry 管理员操作日志（只追加，不修改）
type AdminLogEntry struct {
	ID         int64          `json:"id" db:"id"`
	ActorID    int64          `json:"actorId" db:"actor_id"`
	ActorEmail string         `json:"actorEmail,omitempty" db:"actor_email"`
	Action     string         `json:"action" db:"action"`
	TargetType string         `json:"targetType,omitempty" db:"target_type"`
	TargetID   string         `json:"targetId,omitempty" db:"target_id"`
	Details    types.JSONText `json:"details,omitempty" db:"details"`
	IP         string         `json:"ip" db:"ip"`
	UserAgent  string         `json:"userAgent" db:"user_agent"`
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
}

// AdminLogFilter 日志列表过滤条件
type AdminLogFilter struct {
	ActorID    int64
	Action     string
	TargetType string
	From       *time.Time
	To         *time.Time
	// NotBefore 保留窗口下界，早于此时间的记录不返回
	NotBefore time.Time
	Page
}
