package repository

import (
	"context"
	"time"

	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage/dbutil"

	"github.com/jmoiron/sqlx/types"
)

// CreateAdminLog 追加一条管理员操作日志
func (s *Store) CreateAdminLog(ctx context.Context, entry *model.AdminLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now()
	}
	if len(entry.Details) == 0 {
		entry.Details = types.JSONText("{}")
	}
	id, err := s.insertID(ctx, s.db,
		`INSERT INTO admin_logs (actor_id, action, target_type, target_id, details, ip, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ActorID, entry.Action, entry.TargetType, entry.TargetID,
		entry.Details, entry.IP, entry.UserAgent, entry.CreatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// ListAdminLogs 按时间倒序分页列出日志（附带操作者邮箱）
func (s *Store) ListAdminLogs(ctx context.Context, filter model.AdminLogFilter) ([]*model.AdminLogEntry, int, error) {
	c := &dbutil.Conditions{}
	if !filter.NotBefore.IsZero() {
		c.Add("l.created_at >= ?", filter.NotBefore.UTC())
	}
	if filter.ActorID > 0 {
		c.Add("l.actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		c.Add("l.action = ?", filter.Action)
	}
	if filter.TargetType != "" {
		c.Add("l.target_type = ?", filter.TargetType)
	}
	if filter.From != nil {
		c.Add("l.created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		c.Add("l.created_at <= ?", filter.To.UTC())
	}

	total, err := s.count(ctx, s.db, `SELECT COUNT(*) FROM admin_logs l`+c.Where(), c.Args()...)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	lc := c.Clone()
	query := `SELECT l.id, l.actor_id, COALESCE(u.email, '') AS actor_email, l.action, l.target_type,
	                 l.target_id, l.details, l.ip, l.user_agent, l.created_at
	          FROM admin_logs l LEFT JOIN users u ON u.id = l.actor_id` + lc.Where() +
		` ORDER BY l.created_at DESC, l.id DESC LIMIT ` + lc.Next(page.Limit) + ` OFFSET ` + lc.Next(page.Offset())

	entries := []*model.AdminLogEntry{}
	if err := s.sel(ctx, s.db, &entries, query, lc.Args()...); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// DeleteAdminLogsBefore 删除 created_at 严格早于 cutoff 的日志
func (s *Store) DeleteAdminLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.exec(ctx, s.db, `DELETE FROM admin_logs WHERE created_at < $1`, cutoff.UTC())
}
