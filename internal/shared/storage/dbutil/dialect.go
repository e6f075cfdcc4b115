// Package dbutil 提供数据库方言抽象和工具函数
//
// 通过 Dialect 接口屏蔽不同数据库（PostgreSQL、SQLite）的 SQL 差异，
// 使 repository 层可以编写与数据库无关的业务逻辑。
package dbutil

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// DriverType 数据库驱动类型
type DriverType string

const (
	DriverPostgres DriverType = "postgres"
	DriverSQLite   DriverType = "sqlite"
)

// Dialect 数据库方言接口
//
// 不同数据库的 SQL 语法差异通过该接口屏蔽：
//   - 占位符：PostgreSQL 用 $1, $2；SQLite 用 ?
//   - UPSERT：冲突处理子句
//   - 唯一约束冲突的错误识别
type Dialect interface {
	// DriverType 返回驱动类型标识
	DriverType() DriverType

	// DriverName 返回 database/sql 注册的驱动名（sqlx.NewDb 使用）
	DriverName() string

	// Rebind 将 PostgreSQL 风格的占位符 ($1, $2, ...) 转换为目标数据库的占位符格式
	Rebind(query string) string

	// UpsertConflict 生成 UPSERT 的冲突处理子句
	// conflictColumns: 冲突检测列，如 "product_id, language"
	// updateExprs: 更新表达式列表，如 "name = EXCLUDED.name"
	UpsertConflict(conflictColumns string, updateExprs []string) string

	// IsUniqueViolation 判断错误是否为唯一约束冲突
	IsUniqueViolation(err error) bool

	// AutoMigrate 自动创建数据库 Schema（幂等）
	AutoMigrate(db *sql.DB) error
}

// pgPlaceholderRe 匹配 PostgreSQL 风格占位符 $1, $2, ...
var pgPlaceholderRe = regexp.MustCompile(`\$(\d+)`)

// pgCastRe 匹配 PostgreSQL 类型转换 ::type
var pgCastRe = regexp.MustCompile(`::(\w+)`)

// RebindToPositional 保持 $N 占位符不变（PostgreSQL 专用）
func RebindToPositional(query string) string {
	return query
}

// RebindToQuestion 将 $N 占位符转换为 ?（SQLite 专用）
//
// 注意：? 按出现顺序绑定，调用方的 $N 必须按顺序出现且不重复使用。
func RebindToQuestion(query string) string {
	return pgPlaceholderRe.ReplaceAllString(query, "?")
}

// StripPgCasts 去除 PostgreSQL 类型转换 (::varchar, ::text 等)
func StripPgCasts(query string) string {
	return pgCastRe.ReplaceAllString(query, "")
}

// OnConflictUpdate 生成标准 ON CONFLICT ... DO UPDATE 子句（PostgreSQL 与 SQLite 通用）
func OnConflictUpdate(conflictColumns string, updateExprs []string) string {
	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", conflictColumns, strings.Join(updateExprs, ", "))
}

// Conditions 动态 WHERE 条件构建器
//
// 表达式中的 ? 依次替换为 $N，编号从 1 开始连续递增，
// 与 Rebind 配合可在两种方言下通用。
type Conditions struct {
	parts []string
	args  []interface{}
}

// Add 追加一个条件，expr 中每个 ? 对应 args 中的一个参数
func (c *Conditions) Add(expr string, args ...interface{}) {
	for _, a := range args {
		expr = strings.Replace(expr, "?", c.Next(a), 1)
	}
	c.parts = append(c.parts, expr)
}

// Next 追加一个参数并返回其占位符（用于 LIMIT/OFFSET 等非条件位置）
func (c *Conditions) Next(arg interface{}) string {
	c.args = append(c.args, arg)
	return fmt.Sprintf("$%d", len(c.args))
}

// Where 返回 " WHERE a AND b"，无条件时返回空字符串
func (c *Conditions) Where() string {
	if len(c.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.parts, " AND ")
}

// Args 返回已收集的参数
func (c *Conditions) Args() []interface{} {
	return c.args
}

// Clone 复制当前条件（count 查询与 list 查询共享条件时使用）
func (c *Conditions) Clone() *Conditions {
	return &Conditions{
		parts: append([]string(nil), c.parts...),
		args:  append([]interface{}(nil), c.args...),
	}
}
