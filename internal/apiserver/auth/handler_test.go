package auth

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage/repository"
	"shop-admin/internal/testutil"
)

type authEnv struct {
	store *repository.Store
	mux   *http.ServeMux
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	store := testutil.NewStore(t)
	cfg := testutil.AuthConfig()
	mux := http.NewServeMux()
	NewHandler(store, cfg).RegisterRoutes(mux, NewGuard(store, cfg, nil))
	return &authEnv{store: store, mux: mux}
}

type tokenBody struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func TestRegisterThenLoginSameSubject(t *testing.T) {
	env := newAuthEnv(t)

	rec := testutil.Do(t, env.mux, "POST", "/api/auth/register", "", map[string]string{
		"email": "A@x.com", "password": "password123", "name": "Alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg tokenBody
	testutil.Decode(t, rec, &reg)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "a@x.com", reg.User.Email)
	assert.Equal(t, model.UserRoleUser, reg.User.Role)
	assert.NotContains(t, rec.Body.String(), "$2a$")

	rec = testutil.Do(t, env.mux, "POST", "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login tokenBody
	testutil.Decode(t, rec, &login)

	cfg := testutil.AuthConfig()
	c1, err := VerifyToken(cfg, reg.Token)
	require.NoError(t, err)
	c2, err := VerifyToken(cfg, login.Token)
	require.NoError(t, err)
	assert.Equal(t, c1.Subject, c2.Subject)

	rec = testutil.Do(t, env.mux, "GET", "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User model.User `json:"user"`
	}
	testutil.Decode(t, rec, &me)
	assert.Equal(t, reg.User.ID, me.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	env := newAuthEnv(t)
	testutil.CreateUser(t, env.store, "taken@x.com", model.UserRoleUser, model.UserStatusActive)

	tests := []struct {
		name string
		body map[string]string
		code string
	}{
		{"bad email", map[string]string{"email": "nope", "password": "password123", "name": "N"}, "VALIDATION_ERROR"},
		{"short password", map[string]string{"email": "b@x.com", "password": "short", "name": "N"}, "VALIDATION_ERROR"},
		{"password over 72 bytes", map[string]string{"email": "b@x.com", "password": strings.Repeat("p", 80), "name": "N"}, "VALIDATION_ERROR"},
		{"multibyte password over 72 bytes", map[string]string{"email": "b@x.com", "password": strings.Repeat("密", 25), "name": "N"}, "VALIDATION_ERROR"},
		{"missing name", map[string]string{"email": "b@x.com", "password": "password123"}, "VALIDATION_ERROR"},
		{"duplicate", map[string]string{"email": "taken@x.com", "password": "password123", "name": "N"}, "CONFLICT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Do(t, env.mux, "POST", "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, testutil.ErrorCode(t, rec))
		})
	}
}

func TestLoginFailures(t *testing.T) {
	env := newAuthEnv(t)
	testutil.CreateUser(t, env.store, "ok@x.com", model.UserRoleUser, model.UserStatusActive)
	testutil.CreateUser(t, env.store, "gone@x.com", model.UserRoleUser, model.UserStatusDeleted)
	testutil.CreateUser(t, env.store, "off@x.com", model.UserRoleUser, model.UserStatusDisabled)

	tests := []struct {
		name     string
		email    string
		password string
		status   int
		code     string
	}{
		{"unknown user", "who@x.com", testutil.TestPassword, 401, "INVALID_CREDENTIALS"},
		{"wrong password", "ok@x.com", "wrong-password", 401, "INVALID_CREDENTIALS"},
		{"deleted user", "gone@x.com", testutil.TestPassword, 401, "INVALID_CREDENTIALS"},
		{"disabled user", "off@x.com", testutil.TestPassword, 403, "ACCOUNT_DISABLED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Do(t, env.mux, "POST", "/api/auth/login", "", map[string]string{
				"email": tt.email, "password": tt.password,
			})
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, testutil.ErrorCode(t, rec))
		})
	}
}

func TestAdminLogin(t *testing.T) {
	env := newAuthEnv(t)
	testutil.CreateUser(t, env.store, "shopper@x.com", model.UserRoleUser, model.UserStatusActive)
	testutil.CreateUser(t, env.store, "mod@x.com", model.UserRoleModerator, model.UserStatusActive)

	rec := testutil.Do(t, env.mux, "POST", "/api/auth/admin-login", "", map[string]string{
		"email": "shopper@x.com", "password": testutil.TestPassword,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", testutil.ErrorCode(t, rec))

	rec = testutil.Do(t, env.mux, "POST", "/api/auth/admin-login", "", map[string]string{
		"email": "mod@x.com", "password": testutil.TestPassword,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProfileAndPassword(t *testing.T) {
	env := newAuthEnv(t)
	cfg := testutil.AuthConfig()
	user := testutil.CreateUser(t, env.store, "p@x.com", model.UserRoleUser, model.UserStatusActive)
	token, err := IssueToken(cfg, user)
	require.NoError(t, err)

	rec := testutil.Do(t, env.mux, "PUT", "/api/auth/profile", token, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got, err := env.store.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	rec = testutil.Do(t, env.mux, "PUT", "/api/auth/password", token, map[string]string{
		"currentPassword": "wrong", "newPassword": "newpassword1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testutil.Do(t, env.mux, "PUT", "/api/auth/password", token, map[string]string{
		"currentPassword": testutil.TestPassword, "newPassword": strings.Repeat("n", 73),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", testutil.ErrorCode(t, rec))

	rec = testutil.Do(t, env.mux, "PUT", "/api/auth/password", token, map[string]string{
		"currentPassword": testutil.TestPassword, "newPassword": "newpassword1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.Do(t, env.mux, "POST", "/api/auth/login", "", map[string]string{
		"email": "p@x.com", "password": "newpassword1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
