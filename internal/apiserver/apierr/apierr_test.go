package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shop-admin/internal/shared/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, 400},
		{KindConflict, 400},
		{KindUnauthenticated, 401},
		{KindInvalidToken, 401},
		{KindInvalidCredentials, 401},
		{KindForbidden, 403},
		{KindAccountDisabled, 403},
		{KindNotFound, 404},
		{KindInternal, 500},
		{Kind("SOMETHING_ELSE"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Status(), string(tt.kind))
	}
}

func TestFromMapsStorageErrors(t *testing.T) {
	assert.Equal(t, KindNotFound, From(fmt.Errorf("get: %w", storage.ErrNotFound)).Kind)
	assert.Equal(t, KindConflict, From(fmt.Errorf("%w: email", storage.ErrDuplicate)).Kind)
	assert.Equal(t, KindValidation, From(storage.ErrEmptyCart).Kind)
	assert.Equal(t, KindValidation, From(storage.ErrQuantityLimit).Kind)

	e := From(errors.New("disk on fire"))
	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, "disk on fire", e.Details)

	wrapped := fmt.Errorf("handler: %w", Forbidden("nope"))
	assert.Equal(t, KindForbidden, From(wrapped).Kind)
	assert.True(t, Is(wrapped, KindForbidden))
	assert.False(t, Is(wrapped, KindNotFound))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleWritesEnvelope(t *testing.T) {
	h := Handle(func(w http.ResponseWriter, r *http.Request) error {
		return Validation("quantity must be between %d and %d", 1, 999).WithDetails(map[string]string{"field": "quantity"})
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("POST", "/api/cart/items", nil))

	assert.Equal(t, 400, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "quantity must be between 1 and 999", body["error"])
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, map[string]interface{}{"field": "quantity"}, body["details"])
}

func TestHandleInternalAlwaysHasDetails(t *testing.T) {
	h := Handle(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("connection refused")
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/api/products", nil))

	assert.Equal(t, 500, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.Equal(t, "connection refused", body["details"])
}

func TestHandleSuccessLeavesResponse(t *testing.T) {
	h := Handle(func(w http.ResponseWriter, r *http.Request) error {
		WriteJSON(w, http.StatusCreated, map[string]int{"id": 7})
		return nil
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("POST", "/x", nil))
	assert.Equal(t, 201, rec.Code)
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "x", dst.Name)

	r = httptest.NewRequest("POST", "/", strings.NewReader(``))
	assert.True(t, Is(DecodeJSON(r, &dst), KindValidation))

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
	assert.True(t, Is(DecodeJSON(r, &dst), KindValidation))
}
