package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-admin/internal/apiserver/apierr"
	"shop-admin/internal/config"
	"shop-admin/internal/shared/model"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "unit-secret", TokenTTL: time.Hour, BcryptCost: 4}
}

func TestIssueAndVerifyToken(t *testing.T) {
	cfg := testConfig()
	user := &model.User{ID: 42, Email: "a@x.com", Role: model.UserRoleAdmin, AuthMethod: model.AuthMethodPassword}

	token, err := IssueToken(cfg, user)
	require.NoError(t, err)

	claims, err := VerifyToken(cfg, token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "password", claims.Method)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyTokenRejects(t *testing.T) {
	cfg := testConfig()
	user := &model.User{ID: 1, Email: "a@x.com", Role: model.UserRoleUser}

	t.Run("wrong secret", func(t *testing.T) {
		other := cfg
		other.JWTSecret = "other"
		token, err := IssueToken(other, user)
		require.NoError(t, err)
		_, err = VerifyToken(cfg, token)
		assert.True(t, apierr.Is(err, apierr.KindInvalidToken))
	})

	t.Run("expired", func(t *testing.T) {
		expired := cfg
		expired.TokenTTL = -time.Minute
		token, err := IssueToken(expired, user)
		require.NoError(t, err)
		_, err = VerifyToken(cfg, token)
		assert.True(t, apierr.Is(err, apierr.KindInvalidToken))
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})
		raw, err := token.SignedString([]byte(cfg.JWTSecret))
		require.NoError(t, err)
		_, err = VerifyToken(cfg, raw)
		assert.True(t, apierr.Is(err, apierr.KindInvalidToken))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := VerifyToken(cfg, "not.a.token")
		assert.True(t, apierr.Is(err, apierr.KindInvalidToken))
	})
}

func TestClaimsUserID(t *testing.T) {
	for _, sub := range []string{"", "abc", "0", "-3"} {
		c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
		_, err := c.UserID()
		assert.Error(t, err, sub)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password123", 4)
	require.NoError(t, err)
	assert.True(t, CheckPassword("password123", hash))
	assert.False(t, CheckPassword("password124", hash))
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@x.com", true},
		{"first.last+tag@shop.example.org", true},
		{"no-at.example.com", false},
		{"a@x", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidEmail(tt.email), tt.email)
	}
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}
