//go:build integration
// +build integration

package repository

import (
	"context"
	"testing"
	"time"

	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage"
	pgdriver "shop-admin/internal/shared/storage/driver/postgres"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newPostgresStore 启动 PostgreSQL 容器并返回迁移后的 Store
func newPostgresStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("shop"),
		postgres.WithUsername("shop"),
		postgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := pgdriver.Open(connStr)
	require.NoError(t, err)
	dialect := pgdriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))

	store := NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresCheckoutFlow(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	u := mustUser(t, s, "pg@example.com", model.UserRoleUser)
	err := s.CreateUser(ctx, &model.User{Email: "pg@example.com", Role: model.UserRoleUser,
		Status: model.UserStatusActive, AuthMethod: model.AuthMethodPassword})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	p := mustProduct(t, s, "7.25", map[string]string{"en": "Mug", "de": "Tasse"})
	cart, err := s.GetOrCreateCart(ctx, u.ID)
	require.NoError(t, err)
	_, err = s.AddCartItem(ctx, cart.ID, p.ID, 1)
	require.NoError(t, err)
	item, err := s.AddCartItem(ctx, cart.ID, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	lines, err := s.ListCartLines(ctx, cart.ID, "de", "en")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Tasse", lines[0].Name)
	assert.True(t, lines[0].LineTotal.Equal(decimal.RequireFromString("14.50")))

	order, err := s.Checkout(ctx, u.ID, "addr", "", "en")
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("14.50")))

	stats, err := s.DashboardStats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.Revenue.Equal(decimal.RequireFromString("14.50")))
}

func TestPostgresAdminLogRetention(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()
	admin := mustUser(t, s, "admin@example.com", model.UserRoleAdmin)
	current := time.Now().UTC()

	for _, age := range []time.Duration{time.Hour, 40 * 24 * time.Hour} {
		require.NoError(t, s.CreateAdminLog(ctx, &model.AdminLogEntry{
			ActorID: admin.ID, Action: "view.users", CreatedAt: current.Add(-age),
		}))
	}
	deleted, err := s.DeleteAdminLogsBefore(ctx, current.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	entries, total, err := s.ListAdminLogs(ctx, model.AdminLogFilter{NotBefore: current.Add(-90 * 24 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "admin@example.com", entries[0].ActorEmail)
}
