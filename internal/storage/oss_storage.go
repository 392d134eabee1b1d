package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"dqdash/internal/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type ossBackend struct {
	bucket *oss.Bucket
}

func (b *ossBackend) exists(ctx context.Context, key string) (bool, error) {
	return b.bucket.IsObjectExist(key, oss.WithContext(ctx))
}

func (b *ossBackend) put(ctx context.Context, key string, data []byte, contentType string) error {
	return b.bucket.PutObject(key, bytes.NewReader(data), oss.WithContext(ctx), oss.ContentType(contentType))
}

// NewOSSStorage 创建阿里云 OSS 导出存储。
func NewOSSStorage(cfg config.Config) (Storage, error) {
	if err := requireSettings("OSS",
		"endpoint", cfg.StorageOSSEndpoint,
		"bucket", cfg.StorageOSSBucket,
		"access key id", cfg.StorageOSSAccessKeyID,
		"access key secret", cfg.StorageOSSAccessKeySecret,
	); err != nil {
		return nil, err
	}

	client, err := oss.New(
		strings.TrimSpace(cfg.StorageOSSEndpoint),
		strings.TrimSpace(cfg.StorageOSSAccessKeyID),
		strings.TrimSpace(cfg.StorageOSSAccessKeySecret),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: create OSS client: %w", err)
	}
	bucket, err := client.Bucket(strings.TrimSpace(cfg.StorageOSSBucket))
	if err != nil {
		return nil, fmt.Errorf("storage: open OSS bucket: %w", err)
	}

	return newRemoteStorage(TypeOSS, cfg.StorageOSSPrefix, &ossBackend{bucket: bucket}), nil
}
