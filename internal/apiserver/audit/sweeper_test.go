package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-admin/internal/shared/model"
	"shop-admin/internal/shared/storage/repository"
	"shop-admin/internal/testutil"
)

// seedLogs 按天龄写入审计记录
func seedLogs(t *testing.T, store *repository.Store, actorID int64, ages ...int) {
	t.Helper()
	now := time.Now().UTC()
	for _, age := range ages {
		require.NoError(t, store.CreateAdminLog(context.Background(), &model.AdminLogEntry{
			ActorID:   actorID,
			Action:    "view.users",
			CreatedAt: now.Add(-time.Duration(age)*24*time.Hour - time.Minute),
		}))
	}
}

type stubLocker struct {
	held     bool
	acquired int
	released int
}

func (l *stubLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if l.held {
		return nil, false, nil
	}
	l.acquired++
	return func() { l.released++ }, true, nil
}

func TestSweepOnce(t *testing.T) {
	store := testutil.NewStore(t)
	admin := testutil.CreateUser(t, store, "a@x.com", model.UserRoleAdmin, model.UserStatusActive)
	seedLogs(t, store, admin.ID, 0, 10, 89, 91, 200)

	s := NewSweeper(store, 90, time.Hour)
	deleted, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// 幂等
	deleted, err = s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	_, total, err := store.ListAdminLogs(context.Background(), model.AdminLogFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestPurgeOlderThanCutoffIsExclusive(t *testing.T) {
	store := testutil.NewStore(t)
	admin := testutil.CreateUser(t, store, "a@x.com", model.UserRoleAdmin, model.UserStatusActive)
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-30 * 24 * time.Hour)

	rows := map[string]time.Time{
		"older":     cutoff.Add(-time.Second),
		"at-cutoff": cutoff,
		"inside":    cutoff.Add(time.Second),
	}
	for action, ts := range rows {
		require.NoError(t, store.CreateAdminLog(context.Background(), &model.AdminLogEntry{
			ActorID: admin.ID, Action: action, CreatedAt: ts,
		}))
	}

	deleted, err := PurgeOlderThan(context.Background(), store, now, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	left, total, err := store.ListAdminLogs(context.Background(), model.AdminLogFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	var actions []string
	for _, l := range left {
		actions = append(actions, l.Action)
	}
	assert.ElementsMatch(t, []string{"at-cutoff", "inside"}, actions)
}

func TestSweepOnceRespectsLock(t *testing.T) {
	store := testutil.NewStore(t)
	admin := testutil.CreateUser(t, store, "a@x.com", model.UserRoleAdmin, model.UserStatusActive)
	seedLogs(t, store, admin.ID, 100)

	locker := &stubLocker{held: true}
	s := NewSweeper(store, 90, time.Hour, WithLocker(locker))
	deleted, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	locker.held = false
	deleted, err = s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 0, locker.released, "lock is kept until its ttl expires")
}

func TestSweepOnceInvalidRetention(t *testing.T) {
	s := NewSweeper(testutil.NewStore(t), 0, time.Hour)
	_, err := s.SweepOnce(context.Background())
	assert.ErrorIs(t, err, ErrInvalidRetention)
}

func TestRunStopsOnCancel(t *testing.T) {
	store := testutil.NewStore(t)
	s := NewSweeper(store, 90, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
