// Package repository 数据库无关的业务逻辑存储层
//
// 通过 dbutil.Dialect 接口屏蔽不同数据库的 SQL 差异，
// 所有 SQL 以 PostgreSQL 风格编写，运行时由 Dialect.Rebind() 转换。
// 行映射使用 sqlx（按 db tag 扫描）。
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shop-admin/internal/shared/storage"
	"shop-admin/internal/shared/storage/dbutil"

	"github.com/jmoiron/sqlx"
)

// Store 通用存储实现
// 实现了 storage.PersistentStore 接口
type Store struct {
	db      *sqlx.DB
	dialect dbutil.Dialect
}

var _ storage.PersistentStore = (*Store)(nil)

// NewStore 创建通用存储
func NewStore(db *sql.DB, dialect dbutil.Dialect) *Store {
	return &Store{db: sqlx.NewDb(db, dialect.DriverName()), dialect: dialect}
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping 检查数据库连接
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB 返回底层数据库连接（仅用于测试）
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// Dialect 返回当前方言
func (s *Store) Dialect() dbutil.Dialect {
	return s.dialect
}

// rebind 快捷方法：将 PG 风格 SQL 转换为当前方言
func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// now 统一使用 UTC，保证 SQLite 文本时间可按字典序比较
func now() time.Time {
	return time.Now().UTC()
}

// ============================================================================
// 通用查询辅助
// ============================================================================

// get 查询单行，不存在时返回 storage.ErrNotFound
func (s *Store) get(ctx context.Context, q sqlx.QueryerContext, dest interface{}, query string, args ...interface{}) error {
	err := sqlx.GetContext(ctx, q, dest, s.rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// sel 查询多行
func (s *Store) sel(ctx context.Context, q sqlx.QueryerContext, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, q, dest, s.rebind(query), args...)
}

// insertID 执行 INSERT ... RETURNING id 并返回新 ID
func (s *Store) insertID(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := sqlx.GetContext(ctx, q, &id, s.rebind(query+" RETURNING id"), args...); err != nil {
		return 0, s.mapErr(err)
	}
	return id, nil
}

// exec 执行写操作，返回影响行数
func (s *Store) exec(ctx context.Context, e sqlx.ExecerContext, query string, args ...interface{}) (int64, error) {
	res, err := e.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, s.mapErr(err)
	}
	return res.RowsAffected()
}

// execOne 执行写操作，0 行受影响时返回 storage.ErrNotFound
func (s *Store) execOne(ctx context.Context, e sqlx.ExecerContext, query string, args ...interface{}) error {
	n, err := s.exec(ctx, e, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// count 执行 COUNT 查询
func (s *Store) count(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, s.rebind(query), args...); err != nil {
		return 0, err
	}
	return n, nil
}

// mapErr 唯一约束冲突统一转换为 storage.ErrDuplicate
func (s *Store) mapErr(err error) error {
	if err != nil && s.dialect.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
	}
	return err
}

// withTx 在事务中执行 fn，fn 内只能使用 tx（SQLite 内存库为单连接）
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// inArgs 生成 "$n, $n+1, ..." 占位符，用于 IN 子句
func inArgs(c *dbutil.Conditions, ids []int64) string {
	ph := ""
	for i, id := range ids {
		if i > 0 {
			ph += ", "
		}
		ph += c.Next(id)
	}
	return ph
}
