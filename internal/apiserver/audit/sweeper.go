package audit

import (
	"context"
	"errors"
	"log"
	"time"

	"shop-admin/internal/apiserver/metrics"
	"shop-admin/internal/shared/infra"
	"shop-admin/internal/shared/storage"
	"shop-admin/pkg/logging"
)

// sweepLockKey 多副本部署时的互斥锁键
const sweepLockKey = "shop-admin:lock:audit-sweep"

// ErrInvalidRetention 保留天数非正
var ErrInvalidRetention = errors.New("retention days must be positive")

// Sweeper 审计日志保留期清理
// 列表查询只读，过期行的删除只在这里发生
type Sweeper struct {
	store     storage.AdminLogStore
	retention time.Duration
	interval  time.Duration
	locker    infra.Locker // 可选
	metrics   *metrics.Metrics
	logger    *logging.Logger
	now       func() time.Time
}

// SweeperOption 可选配置
type SweeperOption func(*Sweeper)

// WithLocker 使用分布式锁，保证每个周期只有一个副本执行
func WithLocker(l infra.Locker) SweeperOption {
	return func(s *Sweeper) { s.locker = l }
}

// WithMetrics 记录清理指标
func WithMetrics(m *metrics.Metrics) SweeperOption {
	return func(s *Sweeper) { s.metrics = m }
}

// WithLogger 指定日志器
func WithLogger(l *logging.Logger) SweeperOption {
	return func(s *Sweeper) { s.logger = l }
}

// NewSweeper 创建清理器
func NewSweeper(store storage.AdminLogStore, retentionDays int, interval time.Duration, opts ...SweeperOption) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	s := &Sweeper{
		store:     store,
		retention: days(retentionDays),
		interval:  interval,
		logger:    logging.Default("audit-sweeper"),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// PurgeOlderThan 删除早于 now - days 天的记录，返回删除行数
func PurgeOlderThan(ctx context.Context, store storage.AdminLogStore, now time.Time, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, ErrInvalidRetention
	}
	return store.DeleteAdminLogsBefore(ctx, now.Add(-days(retentionDays)))
}

// SweepOnce 执行一次清理，幂等
// 配置了锁时，锁在成功后保持到 TTL（一个周期）到期，其余副本本周期内跳过
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, ErrInvalidRetention
	}
	release := func() {}
	if s.locker != nil {
		r, ok, err := s.locker.TryLock(ctx, sweepLockKey, s.interval)
		if err != nil {
			return 0, err
		}
		if !ok {
			log.Printf("[audit] sweep skipped: lock held by another instance")
			return 0, nil
		}
		release = r
	}

	start := time.Now()
	deleted, err := s.store.DeleteAdminLogsBefore(ctx, s.now().Add(-s.retention))
	s.logger.MaintenanceLog("audit_sweep", deleted, time.Since(start), err)
	if err != nil {
		// 失败时释放，允许其他副本重试
		release()
		return 0, err
	}
	s.metrics.RecordAuditSweep(deleted, time.Since(start))
	return deleted, nil
}

// Run 周期执行清理，直到 ctx 取消
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("[audit] retention sweeper started (retention=%s interval=%s)", s.retention, s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[audit] retention sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}
