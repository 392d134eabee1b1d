package storage

import (
	"fmt"
	"strings"

	"dqdash/internal/config"
)

// NewR2Storage 创建 Cloudflare R2 导出存储，底层复用 S3 客户端。
func NewR2Storage(cfg config.Config) (Storage, error) {
	if err := requireSettings("R2",
		"bucket", cfg.StorageR2Bucket,
		"access key id", cfg.StorageR2AccessKeyID,
		"secret access key", cfg.StorageR2SecretAccessKey,
	); err != nil {
		return nil, err
	}

	endpoint, err := r2Endpoint(cfg.StorageR2Endpoint, cfg.StorageR2AccountID)
	if err != nil {
		return nil, err
	}
	region := strings.TrimSpace(cfg.StorageR2Region)
	if region == "" {
		region = "auto"
	}

	client, err := newS3Client(s3ClientOptions{
		Region:          region,
		Endpoint:        endpoint,
		AccessKeyID:     strings.TrimSpace(cfg.StorageR2AccessKeyID),
		SecretAccessKey: strings.TrimSpace(cfg.StorageR2SecretAccessKey),
		ForcePathStyle:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create R2 client: %w", err)
	}

	backend := &s3Backend{client: client, bucket: strings.TrimSpace(cfg.StorageR2Bucket)}
	return newRemoteStorage(TypeR2, cfg.StorageR2Prefix, backend), nil
}

// r2Endpoint prefers an explicit endpoint, falling back to the account URL.
func r2Endpoint(endpoint, accountID string) (string, error) {
	if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
		return trimmed, nil
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", fmt.Errorf("storage: missing R2 endpoint or account id")
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID), nil
}
