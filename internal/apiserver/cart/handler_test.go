package cart

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/apiserver/catalog"
	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage/repository"
	"shop-admin/internal/testutil"
)

type cartEnv struct {
	store *repository.Store
	mux   *http.ServeMux
}

func newCartEnv(t *testing.T) *cartEnv {
	t.Helper()
	store := testutil.NewStore(t)
	cfg := testutil.AuthConfig()
	guard := auth.NewGuard(store, cfg, nil)
	langs := catalog.NewLanguages(testutil.CatalogConfig())

	mux := http.NewServeMux()
	auth.NewHandler(store, cfg).RegisterRoutes(mux, guard)
	NewHandler(store, langs).RegisterRoutes(mux, guard)
	return &cartEnv{store: store, mux: mux}
}

func (e *cartEnv) login(t *testing.T, email string) string {
	t.Helper()
	testutil.CreateUser(t, e.store, email, model.UserRoleUser, model.UserStatusActive)
	rec := testutil.Do(t, e.mux, "POST", "/api/auth/login", "", map[string]string{"email": email, "password": testutil.TestPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	testutil.Decode(t, rec, &resp)
	return resp.Token
}

func (e *cartEnv) cart(t *testing.T, token string) cartView {
	t.Helper()
	rec := testutil.Do(t, e.mux, "GET", "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v cartView
	testutil.Decode(t, rec, &v)
	return v
}

func idPath(v int64) string { return strconv.FormatInt(v, 10) }

func TestRegisterLoginAddToCart(t *testing.T) {
	env := newCartEnv(t)
	p := testutil.CreateProduct(t, env.store, "19.99", "en", "Mug")

	rec := testutil.Do(t, env.mux, "POST", "/api/auth/register", "", map[string]string{
		"email": "buyer@x.com", "name": "Buyer", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = testutil.Do(t, env.mux, "POST", "/api/auth/login", "", map[string]string{
		"email": "buyer@x.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	testutil.Decode(t, rec, &login)

	rec = testutil.Do(t, env.mux, "POST", "/api/cart/items", login.Token, map[string]interface{}{"productId": p.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	v := env.cart(t, login.Token)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "Mug", v.Items[0].Name)
	assert.True(t, decimal.RequireFromString("39.98").Equal(v.Items[0].LineTotal), v.Items[0].LineTotal.String())
	assert.True(t, decimal.RequireFromString("39.98").Equal(v.Total))
	assert.Equal(t, 2, v.ItemCount)
}

func TestAddItemAccumulates(t *testing.T) {
	env := newCartEnv(t)
	token := env.login(t, "a@x.com")
	p := testutil.CreateProduct(t, env.store, "5", "en", "Pen")

	for i := 0; i < 2; i++ {
		rec := testutil.Do(t, env.mux, "POST", "/api/cart/items", token, map[string]interface{}{"productId": p.ID})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	v := env.cart(t, token)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 2, v.Items[0].Quantity)
}

func TestAddItemMergedQuantityLimit(t *testing.T) {
	env := newCartEnv(t)
	token := env.login(t, "a@x.com")
	p := testutil.CreateProduct(t, env.store, "5", "en", "Pen")

	rec := testutil.Do(t, env.mux, "POST", "/api/cart/items", token, map[string]interface{}{"productId": p.ID, "quantity": MaxQuantity})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = testutil.Do(t, env.mux, "POST", "/api/cart/items", token, map[string]interface{}{"productId": p.ID, "quantity": MaxQuantity})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", testutil.ErrorCode(t, rec))

	v := env.cart(t, token)
	require.Len(t, v.Items, 1)
	assert.Equal(t, MaxQuantity, v.Items[0].Quantity)
}

func TestAddItemValidation(t *testing.T) {
	env := newCartEnv(t)
	token := env.login(t, "a@x.com")
	p := testutil.CreateProduct(t, env.store, "5", "en", "Pen")

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"zero quantity", map[string]interface{}{"productId": p.ID, "quantity": 0}, http.StatusBadRequest},
		{"too many", map[string]interface{}{"productId": p.ID, "quantity": 1000}, http.StatusBadRequest},
		{"missing product", map[string]interface{}{"quantity": 1}, http.StatusBadRequest},
		{"unknown product", map[string]interface{}{"productId": 999}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Do(t, env.mux, "POST", "/api/cart/items", token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec := testutil.Do(t, env.mux, "GET", "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartItemOwnership(t *testing.T) {
	env := newCartEnv(t)
	alice := env.login(t, "alice@x.com")
	bob := env.login(t, "bob@x.com")
	p := testutil.CreateProduct(t, env.store, "5", "en", "Pen")

	rec := testutil.Do(t, env.mux, "POST", "/api/cart/items", alice, map[string]interface{}{"productId": p.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var item model.CartItem
	testutil.Decode(t, rec, &item)

	paths := []struct{ method, path string }{
		{"PUT", "/api/cart/items/" + idPath(item.ID)},
		{"DELETE", "/api/cart/items/" + idPath(item.ID)},
		{"DELETE", "/api/cart/items/9999"},
	}
	for _, p := range paths {
		rec := testutil.Do(t, env.mux, p.method, p.path, bob, map[string]int{"quantity": 3})
		assert.Equal(t, http.StatusNotFound, rec.Code, p.method+" "+p.path)
		assert.Contains(t, rec.Body.String(), "cart item not found or unauthorized")
	}

	rec = testutil.Do(t, env.mux, "PUT", "/api/cart/items/"+idPath(item.ID), alice, map[string]int{"quantity": 7})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, env.cart(t, alice).Items[0].Quantity)

	rec = testutil.Do(t, env.mux, "DELETE", "/api/cart/items/"+idPath(item.ID), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.cart(t, alice).Items)
}

func TestCheckout(t *testing.T) {
	env := newCartEnv(t)
	token := env.login(t, "a@x.com")
	other := env.login(t, "b@x.com")
	p1 := testutil.CreateProduct(t, env.store, "10", "en", "Book")
	p2 := testutil.CreateProduct(t, env.store, "2.50", "en", "Card")

	rec := testutil.Do(t, env.mux, "POST", "/api/cart/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", testutil.ErrorCode(t, rec))

	testutil.Do(t, env.mux, "POST", "/api/cart/items", token, map[string]interface{}{"productId": p1.ID, "quantity": 1})
	testutil.Do(t, env.mux, "POST", "/api/cart/items", token, map[string]interface{}{"productId": p2.ID, "quantity": 2})

	// 客户端提交的 items 与价格被忽略
	rec = testutil.Do(t, env.mux, "POST", "/api/cart/checkout", token, map[string]interface{}{
		"shippingAddress": "1 Main St",
		"items":           []map[string]interface{}{{"productId": p1.ID, "quantity": 50, "price": "0.01"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order model.Order
	testutil.Decode(t, rec, &order)
	assert.True(t, decimal.NewFromInt(15).Equal(order.Total), order.Total.String())
	assert.Len(t, order.Items, 2)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "1 Main St", order.ShippingAddress)
	assert.Empty(t, env.cart(t, token).Items)

	rec = testutil.Do(t, env.mux, "GET", "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Orders     []model.Order    `json:"orders"`
		Pagination model.Pagination `json:"pagination"`
	}
	testutil.Decode(t, rec, &list)
	assert.Equal(t, 1, list.Pagination.Total)

	rec = testutil.Do(t, env.mux, "GET", "/api/orders/"+idPath(order.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = testutil.Do(t, env.mux, "GET", "/api/orders/"+idPath(order.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.Do(t, env.mux, "GET", "/api/orders", other, nil)
	testutil.Decode(t, rec, &list)
	assert.Equal(t, 0, list.Pagination.Total)
}

func TestClearCart(t *testing.T) {
	env := newCartEnv(t)
	token := env.login(t, "a@x.com")
	p := testutil.CreateProduct(t, env.store, "1", "en", "Gum")
	testutil.Do(t, env.mux, "POST", "/api/cart/items", token, map[string]interface{}{"productId": p.ID})

	rec := testutil.Do(t, env.mux, "DELETE", "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	v := env.cart(t, token)
	assert.Empty(t, v.Items)
	assert.True(t, v.Total.IsZero())
}

func TestDisabledUserRejected(t *testing.T) {
	env := newCartEnv(t)
	u := testutil.CreateUser(t, env.store, "off@x.com", model.UserRoleUser, model.UserStatusDisabled)
	token, err := auth.IssueToken(testutil.AuthConfig(), u)
	require.NoError(t, err)

	rec := testutil.Do(t, env.mux, "GET", "/api/cart", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
