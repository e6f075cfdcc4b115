package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart 购物车，每个用户一个
type Cart struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// MaxCartItemQuantity 单个购物车行的数量上限（累加后同样受限）
const MaxCartItemQuantity = 999

// CartItem 购物车行，(cart_id, product_id) 唯一
type CartItem struct {
	ID        int64     `json:"id" db:"id"`
	CartID    int64     `json:"cartId" db:"cart_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartLine 购物车行 + 商品当前价格与名称
type CartLine struct {
	ID        int64           `json:"id" db:"id"`
	ProductID int64           `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Thumbnail *string         `json:"thumbnail" db:"thumbnail"`
	LineTotal decimal.Decimal `json:"lineTotal" db:"-"`
}

// OrderStatus 订单状态（管理员可任意切换，仅校验枚举）
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// OrderStatuses 全部订单状态
var OrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
	OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded,
}

// Valid 是否为已知状态
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order 订单（结算时的购物车快照）
type Order struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"userId" db:"user_id"`
	UserEmail       string          `json:"userEmail,omitempty" db:"user_email"`
	Status          OrderStatus     `json:"status" db:"status"`
	Total           decimal.Decimal `json:"total" db:"total"`
	ShippingAddress string          `json:"shippingAddress" db:"shipping_address"`
	Notes           string          `json:"notes" db:"notes"`
	Items           []OrderItem     `json:"items,omitempty" db:"-"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem 订单行快照，商品后续改价/删除不影响
type OrderItem struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"orderId" db:"order_id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal" db:"line_total"`
}

// OrderFilter 订单列表过滤条件
type OrderFilter struct {
	UserID int64
	Status OrderStatus
	From   *time.Time
	To     *time.Time
	Search string // 匹配用户邮箱
	Page
}

// DashboardStats 管理后台首页统计
type DashboardStats struct {
	Users          int                 `json:"users"`
	Products       int                 `json:"products"`
	Categories     int                 `json:"categories"`
	Orders         int                 `json:"orders"`
	Revenue        decimal.Decimal     `json:"revenue"`
	OrdersByStatus map[OrderStatus]int `json:"ordersByStatus"`
	RecentOrders   []*Order            `json:"recentOrders"`
}
