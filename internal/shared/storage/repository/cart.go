package repository

import (
	"context"
	"errors"

	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"

	"github.com/shopspring/decimal"
)

// GetOrCreateCart 获取用户购物车，不存在时创建
func (s *Store) GetOrCreateCart(ctx context.Context, userID int64) (*model.Cart, error) {
	cart := &model.Cart{}
	err := s.get(ctx, s.db, cart, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	ts := now()
	id, err := s.insertID(ctx, s.db,
		`INSERT INTO carts (user_id, created_at, updated_at) VALUES ($1, $2, $3)`, userID, ts, ts)
	if errors.Is(err, storage.ErrDuplicate) {
		// 并发创建：读取胜出方的行
		err = s.get(ctx, s.db, cart, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID)
		if err != nil {
			return nil, err
		}
		return cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.Cart{ID: id, UserID: userID, CreatedAt: ts, UpdatedAt: ts}, nil
}

// GetCartItem 按 ID 获取购物车行
func (s *Store) GetCartItem(ctx context.Context, id int64) (*model.CartItem, error) {
	item := &model.CartItem{}
	if err := s.get(ctx, s.db, item,
		`SELECT id, cart_id, product_id, quantity, created_at, updated_at FROM cart_items WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return item, nil
}

// AddCartItem 新增购物车行；(cart, product) 已存在时累加数量
// 累加结果超过 model.MaxCartItemQuantity 时不修改，返回 storage.ErrQuantityLimit
func (s *Store) AddCartItem(ctx context.Context, cartID, productID int64, quantity int) (*model.CartItem, error) {
	if quantity > model.MaxCartItemQuantity {
		return nil, storage.ErrQuantityLimit
	}
	ts := now()
	n, err := s.exec(ctx, s.db,
		`INSERT INTO cart_items (cart_id, product_id, quantity, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) `+
			s.dialect.UpsertConflict("cart_id, product_id", []string{
				"quantity = cart_items.quantity + EXCLUDED.quantity",
				"updated_at = EXCLUDED.updated_at",
			})+
			` WHERE cart_items.quantity + EXCLUDED.quantity <= $6`,
		cartID, productID, quantity, ts, ts, model.MaxCartItemQuantity)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, storage.ErrQuantityLimit
	}

	item := &model.CartItem{}
	if err := s.get(ctx, s.db, item,
		`SELECT id, cart_id, product_id, quantity, created_at, updated_at FROM cart_items
		 WHERE cart_id = $1 AND product_id = $2`, cartID, productID); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateCartItemQuantity 设置购物车行数量
func (s *Store) UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) error {
	return s.execOne(ctx, s.db,
		`UPDATE cart_items SET quantity = $1, updated_at = $2 WHERE id = $3`, quantity, now(), id)
}

// DeleteCartItem 删除购物车行
func (s *Store) DeleteCartItem(ctx context.Context, id int64) error {
	return s.execOne(ctx, s.db, `DELETE FROM cart_items WHERE id = $1`, id)
}

// ClearCart 清空购物车
func (s *Store) ClearCart(ctx context.Context, cartID int64) error {
	_, err := s.exec(ctx, s.db, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

// ListCartLines 购物车行 + 商品当前名称（按语言）、价格与缩略图
func (s *Store) ListCartLines(ctx context.Context, cartID int64, lang, defaultLang string) ([]*model.CartLine, error) {
	lines := []*model.CartLine{}
	err := s.sel(ctx, s.db, &lines,
		`SELECT ci.id, ci.product_id, COALESCE(t.name, d.name, `+anyTranslationName+`, '') AS name, p.price, ci.quantity,
		        (SELECT a.url FROM product_media pm JOIN media_assets a ON a.id = pm.asset_id
		         WHERE pm.product_id = p.id ORDER BY pm.display_order, pm.asset_id LIMIT 1) AS thumbnail
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 LEFT JOIN product_translations t ON t.product_id = p.id AND t.language = $1
		 LEFT JOIN product_translations d ON d.product_id = p.id AND d.language = $2
		 WHERE ci.cart_id = $3
		 ORDER BY ci.created_at, ci.id`, lang, defaultLang, cartID)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		l.LineTotal = l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
	}
	return lines, nil
}
