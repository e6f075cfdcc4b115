package infra

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"shop-admin/internal/config"
	"shop-admin/internal/shared/objstore"
	"shop-admin/internal/shared/storage/dbutil"
	pgdriver "shop-admin/internal/shared/storage/driver/postgres"
	sqlitedriver "shop-admin/internal/shared/storage/driver/sqlite"
	"shop-admin/internal/shared/storage/repository"
)

// OpenStore 按配置的驱动打开数据库并执行建表
func OpenStore(cfg *config.Config) (*repository.Store, error) {
	var (
		db      *sql.DB
		dialect dbutil.Dialect
		err     error
	)
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err = pgdriver.Open(cfg.DatabaseURL)
		dialect = pgdriver.NewDialect()
	default:
		db, err = sqlitedriver.Open(cfg.DatabaseURL)
		dialect = sqlitedriver.NewDialect()
	}
	if err != nil {
		return nil, err
	}
	if err := dialect.AutoMigrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s schema: %w", cfg.DatabaseDriver, err)
	}
	log.Printf("[infra] Connected to %s", cfg.DatabaseDriver)
	return repository.NewStore(db, dialect), nil
}

// OpenBlobs MinIO 启用时连接 MinIO，否则使用进程内存储；两者都会确保 bucket 存在
func OpenBlobs(ctx context.Context, cfg *config.Config) (objstore.BlobStore, error) {
	var blobs objstore.BlobStore
	if cfg.MinIO.Enabled {
		client, err := objstore.NewClient(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		blobs = client
		log.Printf("[infra] Using MinIO at %s", cfg.MinIO.Endpoint)
	} else {
		blobs = objstore.NewMemoryStore(cfg.MinIO.ImagesBucket, cfg.MinIO.VideosBucket)
		log.Printf("[infra] MinIO disabled, media kept in memory")
	}
	if err := blobs.EnsureBuckets(ctx); err != nil {
		return nil, fmt.Errorf("ensure buckets: %w", err)
	}
	return blobs, nil
}

// New 初始化全部基础设施；Redis 未配置时 Locker 为 nil
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	i := &Infrastructure{Storage: store}

	if i.Blobs, err = OpenBlobs(ctx, cfg); err != nil {
		i.Close()
		return nil, err
	}
	if cfg.RedisURL != "" {
		r, err := NewRedisInfra(cfg.RedisURL)
		if err != nil {
			i.Close()
			return nil, err
		}
		i.SetRedis(r)
	}
	return i, nil
}
