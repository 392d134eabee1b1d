package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"dqdash/internal/config"

	"github.com/tencentyun/cos-go-sdk-v5"
)

type cosBackend struct {
	client *cos.Client
}

func (b *cosBackend) exists(ctx context.Context, key string) (bool, error) {
	resp, err := b.client.Object.Head(ctx, key, nil)
	closeCOSBody(resp)
	if err == nil {
		return true, nil
	}
	if cos.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (b *cosBackend) put(ctx context.Context, key string, data []byte, contentType string) error {
	resp, err := b.client.Object.Put(ctx, key, bytes.NewReader(data), &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{ContentType: contentType},
	})
	closeCOSBody(resp)
	return err
}

func closeCOSBody(resp *cos.Response) {
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
}

// NewCOSStorage 创建腾讯云 COS 导出存储。
func NewCOSStorage(cfg config.Config) (Storage, error) {
	if err := requireSettings("COS",
		"bucket URL", cfg.StorageCOSBucketURL,
		"secret id", cfg.StorageCOSSecretID,
		"secret key", cfg.StorageCOSSecretKey,
	); err != nil {
		return nil, err
	}
	bucketURL, err := url.Parse(strings.TrimSpace(cfg.StorageCOSBucketURL))
	if err != nil {
		return nil, fmt.Errorf("storage: parse COS bucket URL: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  strings.TrimSpace(cfg.StorageCOSSecretID),
			SecretKey: strings.TrimSpace(cfg.StorageCOSSecretKey),
		},
	})
	return newRemoteStorage(TypeCOS, cfg.StorageCOSPrefix, &cosBackend{client: client}), nil
}
