package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"dqdash/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type s3ClientOptions struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	ForcePathStyle  bool
}

type s3Backend struct {
	client *s3.Client
	bucket string
}

func (b *s3Backend) exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(b.bucket), Key: aws.String(key)})
	if err == nil {
		return true, nil
	}
	if isS3NotFound(err) {
		return false, nil
	}
	return false, err
}

func (b *s3Backend) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	return err
}

func isS3NotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch strings.ToLower(apiErr.ErrorCode()) {
		case "notfound", "nosuchkey", "404":
			return true
		}
	}
	return false
}

// NewS3Storage 创建 Amazon S3（或兼容服务）导出存储。
func NewS3Storage(cfg config.Config) (Storage, error) {
	if err := requireSettings("S3",
		"bucket", cfg.StorageS3Bucket,
		"region", cfg.StorageS3Region,
		"access key id", cfg.StorageS3AccessKeyID,
		"secret access key", cfg.StorageS3SecretAccessKey,
	); err != nil {
		return nil, err
	}

	client, err := newS3Client(s3ClientOptions{
		Region:          strings.TrimSpace(cfg.StorageS3Region),
		Endpoint:        strings.TrimSpace(cfg.StorageS3Endpoint),
		AccessKeyID:     strings.TrimSpace(cfg.StorageS3AccessKeyID),
		SecretAccessKey: strings.TrimSpace(cfg.StorageS3SecretAccessKey),
		SessionToken:    strings.TrimSpace(cfg.StorageS3SessionToken),
		ForcePathStyle:  cfg.StorageS3ForcePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create S3 client: %w", err)
	}

	backend := &s3Backend{client: client, bucket: strings.TrimSpace(cfg.StorageS3Bucket)}
	return newRemoteStorage(TypeS3, cfg.StorageS3Prefix, backend), nil
}

func newS3Client(opts s3ClientOptions) (*s3.Client, error) {
	if opts.Region == "" {
		return nil, errors.New("missing region")
	}
	if opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, errors.New("missing credentials")
	}

	awsCfg := aws.Config{
		Region: opts.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		),
	}

	endpoint := opts.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.ForcePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
