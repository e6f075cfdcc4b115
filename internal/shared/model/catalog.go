package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category 商品分类（语言无关部分）
type Category struct {
	ID           int64                 `json:"id" db:"id"`
	Translations []CategoryTranslation `json:"translations,omitempty" db:"-"`
	CreatedAt    time.Time             `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time             `json:"updatedAt" db:"updated_at"`
}

// CategoryTranslation 分类的单语言文案，(category_id, language) 唯一
type CategoryTranslation struct {
	CategoryID  int64  `json:"-" db:"category_id"`
	Language    string `json:"language" db:"language"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// LocalizedCategory 按语言展开后的分类（店面接口使用）
type LocalizedCategory struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Description  string `json:"description" db:"description"`
	ProductCount int    `json:"productCount" db:"product_count"`
}

// Product 商品（语言无关部分）
type Product struct {
	ID           int64                `json:"id" db:"id"`
	Price        decimal.Decimal      `json:"price" db:"price"`
	Featured     bool                 `json:"featured" db:"featured"`
	CategoryID   *int64               `json:"categoryId" db:"category_id"`
	Translations []ProductTranslation `json:"translations,omitempty" db:"-"`
	Media        []ProductMediaView   `json:"media,omitempty" db:"-"`
	CreatedAt    time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time            `json:"updatedAt" db:"updated_at"`
}

// ProductTranslation 商品的单语言文案，(product_id, language) 唯一
type ProductTranslation struct {
	ProductID   int64  `json:"-" db:"product_id"`
	Language    string `json:"language" db:"language"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// LocalizedProduct 店面列表/详情中的商品视图
type LocalizedProduct struct {
	ID           int64              `json:"id" db:"id"`
	Name         string             `json:"name" db:"name"`
	Description  string             `json:"description" db:"description"`
	Price        decimal.Decimal    `json:"price" db:"price"`
	Featured     bool               `json:"featured" db:"featured"`
	CategoryID   *int64             `json:"categoryId" db:"category_id"`
	CategoryName *string            `json:"categoryName" db:"category_name"`
	Thumbnail    *string            `json:"thumbnail" db:"thumbnail"`
	Media        []ProductMediaView `json:"media,omitempty" db:"-"`
	CreatedAt    time.Time          `json:"createdAt" db:"created_at"`
}

// ProductFilter 商品列表过滤条件
type ProductFilter struct {
	Language        string
	DefaultLanguage string
	CategoryID      *int64
	Featured        *bool
	Search          string
	Page
}
