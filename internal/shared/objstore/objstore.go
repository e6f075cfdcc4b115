// Package objstore 媒体二进制存储
//
// 两个 bucket：images / videos。生产使用 MinIO，开发与测试使用进程内存储。
package objstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("object not found")

// Object 读取到的对象，调用方负责关闭 Body
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// BlobStore 按 bucket + key 存取对象
type BlobStore interface {
	// EnsureBuckets 确保所有 bucket 存在
	EnsureBuckets(ctx context.Context) error
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	// Get 对象不存在时返回 ErrNotFound
	Get(ctx context.Context, bucket, key string) (*Object, error)
	Exists(ctx context.Context, bucket, key string) (bool, error)
	// Delete 删除不存在的对象不报错
	Delete(ctx context.Context, bucket, key string) error
}
