package model

import "math"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// MaxPage 保证 (page-1)*limit 不超出 int32，OFFSET 不会溢出为负数
	MaxPage = math.MaxInt32 / MaxPageLimit
)

// Page 分页参数（page 从 1 开始）
type Page struct {
	Page  int
	Limit int
}

// Normalize 填充默认值并裁剪越界参数
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset 返回 SQL OFFSET
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Pagination 列表响应中的分页信息
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination 根据总数构建分页信息
func NewPagination(p Page, total int) Pagination {
	n := p.Normalize()
	pages := 0
	if total > 0 {
		pages = (total + n.Limit - 1) / n.Limit
	}
	return Pagination{Page: n.Page, Limit: n.Limit, Total: total, TotalPages: pages}
}
