package repository

import (
	"context"

	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage/dbutil"
)

const userColumns = `id, email, name, password_hash, role, status, auth_method, created_at, updated_at`

// CreateUser 创建用户，回填 ID 与时间戳；邮箱重复返回 storage.ErrDuplicate
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	ts := now()
	id, err := s.insertID(ctx, s.db,
		`INSERT INTO users (email, name, password_hash, role, status, auth_method, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.Email, user.Name, user.PasswordHash,
		user.Role, user.Status, user.AuthMethod, ts, ts,
	)
	if err != nil {
		return err
	}
	user.ID = id
	user.CreatedAt = ts
	user.UpdatedAt = ts
	return nil
}

// GetUserByEmail 通过邮箱查找用户
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	if err := s.get(ctx, s.db, user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID 通过 ID 查找用户
func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	if err := s.get(ctx, s.db, user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser 更新资料、角色与状态（不含密码）
func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = now()
	return s.execOne(ctx, s.db,
		`UPDATE users SET email = $1, name = $2, role = $3, status = $4, updated_at = $5 WHERE id = $6`,
		user.Email, user.Name, user.Role, user.Status, user.UpdatedAt, user.ID,
	)
}

// UpdateUserPassword 更新用户密码
func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return s.execOne(ctx, s.db,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, now(), id,
	)
}

// ListUsers 分页列出用户，返回当前页与总数
func (s *Store) ListUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, int, error) {
	c := &dbutil.Conditions{}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		c.Add("(LOWER(email) LIKE LOWER(?) OR LOWER(name) LIKE LOWER(?))", like, like)
	}
	if filter.Status != "" {
		c.Add("status = ?", filter.Status)
	}
	if filter.Role != "" {
		c.Add("role = ?", filter.Role)
	}

	total, err := s.count(ctx, s.db, `SELECT COUNT(*) FROM users`+c.Where(), c.Args()...)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	lc := c.Clone()
	query := `SELECT ` + userColumns + ` FROM users` + lc.Where() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + lc.Next(page.Limit) + ` OFFSET ` + lc.Next(page.Offset())

	users := []*model.User{}
	if err := s.sel(ctx, s.db, &users, query, lc.Args()...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
