package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// objectBackend 是各云厂商对象存储的最小上传原语。
type objectBackend interface {
	exists(ctx context.Context, key string) (bool, error)
	put(ctx context.Context, key string, data []byte, contentType string) error
}

// remoteStorage 把对象路径、前缀和存在性检查统一在一处，厂商差异留给 backend。
type remoteStorage struct {
	kind    string
	prefix  string
	backend objectBackend
}

func newRemoteStorage(kind, prefix string, backend objectBackend) *remoteStorage {
	return &remoteStorage{kind: kind, prefix: trimPrefix(prefix), backend: backend}
}

func (s *remoteStorage) Save(ctx context.Context, data []byte, opts SaveOptions) (string, error) {
	if err := checkPayload(ctx, data); err != nil {
		return "", err
	}

	key := BuildObjectPath(opts)
	if s.prefix != "" {
		key = joinPrefix(s.prefix, key)
	}

	if opts.SkipIfExists {
		found, err := s.backend.exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("%s: check object: %w", s.kind, err)
		}
		if found {
			return key, nil
		}
	}

	if err := s.backend.put(ctx, key, data, detectContentType(opts)); err != nil {
		return "", fmt.Errorf("%s: put object: %w", s.kind, err)
	}
	logrus.WithFields(logrus.Fields{
		"storage": s.kind,
		"key":     key,
		"bytes":   len(data),
	}).Debug("object stored")
	return key, nil
}

var _ Storage = (*remoteStorage)(nil)

// requireSettings 返回第一个为空的配置项名称对应的错误。
func requireSettings(kind string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("storage: missing %s %s", kind, pairs[i])
		}
	}
	return nil
}
