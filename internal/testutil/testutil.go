// Package testutil 测试共享基础设施
//
// 基于 SQLite 内存数据库与内存 blob 存储，供各 HTTP 处理器包的测试复用，
// 无需外部依赖。
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shop-admin/internal/config"
	"shop-admin/internal/shared/model"
	sqlitedriver "shop-admin/internal/shared/storage/driver/sqlite"
	"shop-admin/internal/shared/storage/repository"
)

// TestPassword 测试用户的统一密码
const TestPassword = "password123"

// NewStore 返回已迁移的 SQLite 内存数据库 Store
func NewStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

// AuthConfig 测试认证配置（最低 bcrypt cost）
func AuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
}

// CatalogConfig 测试多语言配置
func CatalogConfig() config.CatalogConfig {
	return config.CatalogConfig{Languages: []string{"en", "fr"}, DefaultLanguage: "en"}
}

// CreateUser 创建用户，密码为 TestPassword
func CreateUser(t *testing.T, store *repository.Store, email string, role model.UserRole, status model.UserStatus) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Email:        email,
		Name:         "Test " + email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
		AuthMethod:   model.AuthMethodPassword,
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

// CreateProduct 创建单语言商品
func CreateProduct(t *testing.T, store *repository.Store, price, lang, name string) *model.Product {
	t.Helper()
	p := &model.Product{
		Price:        decimal.RequireFromString(price),
		Translations: []model.ProductTranslation{{Language: lang, Name: name}},
	}
	require.NoError(t, store.CreateProduct(context.Background(), p))
	return p
}

// Do 发送请求到 handler，body 非 nil 时编码为 JSON
func Do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Decode 解码 JSON 响应体
func Decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

// ErrorCode 读取错误信封中的 code
func ErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	Decode(t, rec, &body)
	return body.Code
}
