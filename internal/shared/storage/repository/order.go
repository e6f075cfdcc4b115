package repository

import (
	"context"
	"errors"

	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
	"shop-admin/internal/shared/storage/dbutil"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// anyTranslationName 无指定语言翻译时回退的商品名（按语言代码取第一条）
const anyTranslationName = `(SELECT pt.name FROM product_translations pt
         WHERE pt.product_id = p.id ORDER BY pt.language LIMIT 1)`

const orderSelect = `SELECT o.id, o.user_id, COALESCE(u.email, '') AS user_email, o.status, o.total,
        o.shipping_address, o.notes, o.created_at, o.updated_at
 FROM orders o LEFT JOIN users u ON u.id = o.user_id`

// checkoutLine 结算时读取的购物车行（当前价格）
type checkoutLine struct {
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Quantity  int             `db:"quantity"`
}

// Checkout 以服务端购物车与当前价格生成订单快照并清空购物车（单事务）
func (s *Store) Checkout(ctx context.Context, userID int64, shippingAddress, notes, defaultLang string) (*model.Order, error) {
	var order *model.Order
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var cartID int64
		err := s.get(ctx, tx, &cartID, `SELECT id FROM carts WHERE user_id = $1`, userID)
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ErrEmptyCart
		}
		if err != nil {
			return err
		}

		lines := []checkoutLine{}
		if err := s.sel(ctx, tx, &lines,
			`SELECT ci.product_id, COALESCE(t.name, `+anyTranslationName+`, '') AS name, p.price, ci.quantity
			 FROM cart_items ci
			 JOIN products p ON p.id = ci.product_id
			 LEFT JOIN product_translations t ON t.product_id = p.id AND t.language = $1
			 WHERE ci.cart_id = $2
			 ORDER BY ci.created_at, ci.id`, defaultLang, cartID); err != nil {
			return err
		}
		if len(lines) == 0 {
			return storage.ErrEmptyCart
		}

		ts := now()
		o := &model.Order{
			UserID:          userID,
			Status:          model.OrderStatusPending,
			Total:           decimal.Zero,
			ShippingAddress: shippingAddress,
			Notes:           notes,
			CreatedAt:       ts,
			UpdatedAt:       ts,
		}
		for _, l := range lines {
			lineTotal := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
			o.Total = o.Total.Add(lineTotal)
			o.Items = append(o.Items, model.OrderItem{
				ProductID:   l.ProductID,
				ProductName: l.Name,
				UnitPrice:   l.Price,
				Quantity:    l.Quantity,
				LineTotal:   lineTotal,
			})
		}

		o.ID, err = s.insertID(ctx, tx,
			`INSERT INTO orders (user_id, status, total, shipping_address, notes, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.UserID, o.Status, o.Total, o.ShippingAddress, o.Notes, ts, ts)
		if err != nil {
			return err
		}
		for i := range o.Items {
			item := &o.Items[i]
			item.OrderID = o.ID
			item.ID, err = s.insertID(ctx, tx,
				`INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, line_total)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				item.OrderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.LineTotal)
			if err != nil {
				return err
			}
		}

		if _, err := s.exec(ctx, tx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder 获取订单及订单行
func (s *Store) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	o := &model.Order{}
	if err := s.get(ctx, s.db, o, orderSelect+` WHERE o.id = $1`, id); err != nil {
		return nil, err
	}
	items := []model.OrderItem{}
	if err := s.sel(ctx, s.db, &items,
		`SELECT id, order_id, product_id, product_name, unit_price, quantity, line_total
		 FROM order_items WHERE order_id = $1 ORDER BY id`, id); err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// ListOrders 分页列出订单（不含订单行）
func (s *Store) ListOrders(ctx context.Context, filter model.OrderFilter) ([]*model.Order, int, error) {
	c := &dbutil.Conditions{}
	if filter.UserID > 0 {
		c.Add("o.user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		c.Add("o.status = ?", filter.Status)
	}
	if filter.From != nil {
		c.Add("o.created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		c.Add("o.created_at <= ?", filter.To.UTC())
	}
	if filter.Search != "" {
		c.Add("LOWER(u.email) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	total, err := s.count(ctx, s.db,
		`SELECT COUNT(*) FROM orders o LEFT JOIN users u ON u.id = o.user_id`+c.Where(), c.Args()...)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	lc := c.Clone()
	query := orderSelect + lc.Where() +
		` ORDER BY o.created_at DESC, o.id DESC LIMIT ` + lc.Next(page.Limit) + ` OFFSET ` + lc.Next(page.Offset())

	orders := []*model.Order{}
	if err := s.sel(ctx, s.db, &orders, query, lc.Args()...); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateOrderStatus 更新订单状态
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	return s.execOne(ctx, s.db,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`, status, now(), id)
}

// DeleteOrder 删除订单及订单行
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.exec(ctx, tx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
			return err
		}
		return s.execOne(ctx, tx, `DELETE FROM orders WHERE id = $1`, id)
	})
}

// DashboardStats 管理后台首页统计
func (s *Store) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{OrdersByStatus: map[model.OrderStatus]int{}}

	counts := []struct {
		dest  *int
		query string
	}{
		{&stats.Users, `SELECT COUNT(*) FROM users WHERE status <> 'deleted'`},
		{&stats.Products, `SELECT COUNT(*) FROM products`},
		{&stats.Categories, `SELECT COUNT(*) FROM categories`},
		{&stats.Orders, `SELECT COUNT(*) FROM orders`},
	}
	for _, c := range counts {
		n, err := s.count(ctx, s.db, c.query)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}

	var revenue decimal.NullDecimal
	if err := s.get(ctx, s.db, &revenue,
		`SELECT SUM(total) FROM orders WHERE status NOT IN ($1, $2)`,
		model.OrderStatusCancelled, model.OrderStatusRefunded); err != nil {
		return nil, err
	}
	stats.Revenue = decimal.Zero
	if revenue.Valid {
		stats.Revenue = revenue.Decimal
	}

	byStatus := []struct {
		Status model.OrderStatus `db:"status"`
		Count  int               `db:"cnt"`
	}{}
	if err := s.sel(ctx, s.db, &byStatus, `SELECT status, COUNT(*) AS cnt FROM orders GROUP BY status`); err != nil {
		return nil, err
	}
	for _, st := range model.OrderStatuses {
		stats.OrdersByStatus[st] = 0
	}
	for _, row := range byStatus {
		stats.OrdersByStatus[row.Status] = row.Count
	}

	recent := []*model.Order{}
	if err := s.sel(ctx, s.db, &recent, orderSelect+` ORDER BY o.created_at DESC, o.id DESC LIMIT 5`); err != nil {
		return nil, err
	}
	stats.RecentOrders = recent
	return stats, nil
}
