// Package cart 购物车、结算与用户订单
package cart

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/apiserver/catalog"
	"shop-admin/internal/apiserver/reqparam"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
)

const (
	MinQuantity = 1
	MaxQuantity = model.MaxCartItemQuantity

	maxShippingAddress = 500
	maxNotes           = 1000
)

// Store 购物车依赖的存储
type Store interface {
	storage.CartStore
	Checkout(ctx context.Context, userID int64, shippingAddress, notes, defaultLang string) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]*model.Order, int, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
}

// Handler 购物车 HTTP 处理器
type Handler struct {
	store Store
	langs *catalog.Languages
}

// NewHandler 创建购物车处理器
func NewHandler(store Store, langs *catalog.Languages) *Handler {
	return &Handler{store: store, langs: langs}
}

// RegisterRoutes 注册购物车与订单路由（均为用户层）
func (h *Handler) RegisterRoutes(mux *http.ServeMux, guard *auth.Guard) {
	mux.Handle("GET /api/cart", guard.User(apierr.Handle(h.GetCart)))
	mux.Handle("POST /api/cart/items", guard.User(apierr.Handle(h.AddItem)))
	mux.Handle("PUT /api/cart/items/{id}", guard.User(apierr.Handle(h.UpdateItem)))
	mux.Handle("DELETE /api/cart/items/{id}", guard.User(apierr.Handle(h.RemoveItem)))
	mux.Handle("DELETE /api/cart", guard.User(apierr.Handle(h.ClearCart)))
	mux.Handle("POST /api/cart/checkout", guard.User(apierr.Handle(h.Checkout)))
	mux.Handle("GET /api/orders", guard.User(apierr.Handle(h.ListOrders)))
	mux.Handle("GET /api/orders/{id}", guard.User(apierr.Handle(h.GetOrder)))
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  *int  `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// checkoutRequest 客户端提交的 items 字段不解析，订单只取服务端购物车
type checkoutRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	Notes           string `json:"notes"`
}

// cartView 购物车响应
type cartView struct {
	ID        int64             `json:"id"`
	Items     []*model.CartLine `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"itemCount"`
}

func checkQuantity(q int) error {
	if q < MinQuantity || q > MaxQuantity {
		return apierr.Validation("quantity must be between %d and %d", MinQuantity, MaxQuantity)
	}
	return nil
}

var errItemNotOwned = apierr.NotFound("cart item not found or unauthorized")

// ============================================================================
// 购物车
// ============================================================================

func (h *Handler) currentUser(r *http.Request) (*model.User, error) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		return nil, apierr.Unauthenticated("authentication required")
	}
	return user, nil
}

func (h *Handler) view(r *http.Request, cart *model.Cart) (*cartView, error) {
	lines, err := h.store.ListCartLines(r.Context(), cart.ID, h.langs.Resolve(r), h.langs.Default())
	if err != nil {
		return nil, err
	}
	v := &cartView{ID: cart.ID, Items: lines, Total: decimal.Zero}
	for _, l := range lines {
		v.Total = v.Total.Add(l.LineTotal)
		v.ItemCount += l.Quantity
	}
	return v, nil
}

// GetCart 当前用户购物车（首次访问时创建）
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	cart, err := h.store.GetOrCreateCart(r.Context(), user.ID)
	if err != nil {
		return err
	}
	v, err := h.view(r, cart)
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, v)
	return nil
}

// AddItem 加入购物车，同一商品累加数量
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	var req addItemRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return err
	}
	if req.ProductID <= 0 {
		return apierr.Validation("productId is required")
	}
	quantity := MinQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if err := checkQuantity(quantity); err != nil {
		return err
	}

	if _, err := h.store.GetProduct(r.Context(), req.ProductID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apierr.NotFound("product not found")
		}
		return err
	}
	cart, err := h.store.GetOrCreateCart(r.Context(), user.ID)
	if err != nil {
		return err
	}
	item, err := h.store.AddCartItem(r.Context(), cart.ID, req.ProductID, quantity)
	if err != nil {
		if errors.Is(err, storage.ErrQuantityLimit) {
			return apierr.Validation("quantity must be between %d and %d", MinQuantity, MaxQuantity).
				WithDetails(map[string]int{"max": MaxQuantity})
		}
		return err
	}
	apierr.WriteJSON(w, http.StatusCreated, item)
	return nil
}

// ownedItem 读取购物车行并校验归属；不存在与不属于当前用户不作区分
func (h *Handler) ownedItem(r *http.Request, user *model.User) (*model.CartItem, error) {
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	item, err := h.store.GetCartItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errItemNotOwned
		}
		return nil, err
	}
	cart, err := h.store.GetOrCreateCart(r.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	if item.CartID != cart.ID {
		log.Printf("[cart] user %d attempted to access cart item %d", user.ID, item.ID)
		return nil, errItemNotOwned
	}
	return item, nil
}

// UpdateItem 修改购物车行数量
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	var req updateItemRequest
	if err := apierr.DecodeJSON(r, &req); err != nil {
		return err
	}
	if req.Quantity == nil {
		return apierr.Validation("quantity is required")
	}
	if err := checkQuantity(*req.Quantity); err != nil {
		return err
	}
	item, err := h.ownedItem(r, user)
	if err != nil {
		return err
	}
	if err := h.store.UpdateCartItemQuantity(r.Context(), item.ID, *req.Quantity); err != nil {
		return err
	}
	item.Quantity = *req.Quantity
	apierr.WriteJSON(w, http.StatusOK, item)
	return nil
}

// RemoveItem 删除购物车行
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	item, err := h.ownedItem(r, user)
	if err != nil {
		return err
	}
	if err := h.store.DeleteCartItem(r.Context(), item.ID); err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "item removed"})
	return nil
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	cart, err := h.store.GetOrCreateCart(r.Context(), user.ID)
	if err != nil {
		return err
	}
	if err := h.store.ClearCart(r.Context(), cart.ID); err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
	return nil
}

// Checkout 以服务端购物车与当前价格下单
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	var req checkoutRequest
	if r.ContentLength != 0 {
		if err := apierr.DecodeJSON(r, &req); err != nil {
			return err
		}
	}
	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	req.Notes = strings.TrimSpace(req.Notes)
	if len(req.ShippingAddress) > maxShippingAddress {
		return apierr.Validation("shippingAddress must be at most %d characters", maxShippingAddress)
	}
	if len(req.Notes) > maxNotes {
		return apierr.Validation("notes must be at most %d characters", maxNotes)
	}

	order, err := h.store.Checkout(r.Context(), user.ID, req.ShippingAddress, req.Notes, h.langs.Default())
	if err != nil {
		if errors.Is(err, storage.ErrEmptyCart) {
			return apierr.Validation("cart is empty")
		}
		return err
	}
	log.Printf("[cart.checkout] user %d placed order %d total=%s", user.ID, order.ID, order.Total)
	apierr.WriteJSON(w, http.StatusCreated, order)
	return nil
}

// ============================================================================
// 订单
// ============================================================================

// ListOrders 当前用户的订单
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	filter := model.OrderFilter{UserID: user.ID, Page: reqparam.Page(r)}
	orders, total, err := h.store.ListOrders(r.Context(), filter)
	if err != nil {
		return err
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"orders":     orders,
		"pagination": model.NewPagination(filter.Page, total),
	})
	return nil
}

// GetOrder 订单详情；他人订单按不存在处理
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	id, err := reqparam.PathID(r, "id")
	if err != nil {
		return err
	}
	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apierr.NotFound("order not found")
		}
		return err
	}
	if order.UserID != user.ID {
		return apierr.NotFound("order not found")
	}
	apierr.WriteJSON(w, http.StatusOK, order)
	return nil
}
