// Package storage 定义存储层领域错误与接口
//
// 这些错误用于隔离业务层与底层存储引擎的错误类型，
// repository 负责将 sql.ErrNoRows / 唯一约束冲突等底层错误转换为这些领域错误。
package storage

import "errors"

var (
	// ErrNotFound 实体不存在
	// 替代 sql.ErrNoRows
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate 唯一键冲突（邮箱、媒体 hash 等）
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrEmptyCart 结算时购物车为空
	ErrEmptyCart = errors.New("cart is empty")

	// ErrQuantityLimit 累加后购物车行数量超出上限
	ErrQuantityLimit = errors.New("cart item quantity limit exceeded")
)
