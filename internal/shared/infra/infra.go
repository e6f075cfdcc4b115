// Package infra 基础设施聚合层
//
// 提供统一的基础设施初始化和依赖注入，包括：
//   - Storage：持久化存储（SQLite / PostgreSQL）
//   - Blobs：媒体对象存储（MinIO / 内存）
//   - Locker：维护任务分布式锁（Redis，可选）
package infra

import (
	"context"
	"time"

	"shop-admin/internal/shared/objstore"
	"shop-admin/internal/shared/storage"
)

// Locker 分布式互斥锁
type Locker interface {
	// TryLock 尝试获取锁；ok = false 表示已被其他实例持有
	// 成功时返回的 release 用于提前释放（仅释放自己持有的锁）
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// Infrastructure 基础设施聚合结构
type Infrastructure struct {
	Storage storage.PersistentStore
	Blobs   objstore.BlobStore

	// Locker 未配置 Redis 时为 nil（单实例运行）
	Locker Locker

	redis *RedisInfra
}

// SetRedis 挂载 Redis 基础设施（同时作为 Locker）
func (i *Infrastructure) SetRedis(r *RedisInfra) {
	i.redis = r
	i.Locker = r
}

// Close 关闭所有基础设施连接
func (i *Infrastructure) Close() error {
	var lastErr error

	if i.Storage != nil {
		if err := i.Storage.Close(); err != nil {
			lastErr = err
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
