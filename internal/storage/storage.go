package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dqdash/internal/config"
)

const (
	// TypeLocal 表示本地文件系统存储。
	TypeLocal = "local"
	// TypeS3 表示 Amazon S3 或兼容的存储后端。
	TypeS3 = "s3"
	// TypeOSS 表示阿里云 OSS 存储。
	TypeOSS = "oss"
	// TypeCOS 表示腾讯云 COS 存储。
	TypeCOS = "cos"
	// TypeR2 表示 Cloudflare R2 存储。
	TypeR2 = "r2"
)

// SaveOptions 控制导出文件的对象路径。
//
// 对象路径为 <Category>/<Scope>/<yyyy>/<mm>/<dd>/<BaseName>.<Extension>，日期取自 At（UTC）。
// Extension 为空时使用 bin；ContentType 为空时按扩展名推断。
// SkipIfExists 为 true 且对象已存在时直接返回 key，不覆盖。
type SaveOptions struct {
	Category     string
	Scope        string
	BaseName     string
	Extension    string
	ContentType  string
	At           time.Time
	SkipIfExists bool
}

// Storage 持久化二进制数据并返回对象 key（本地存储即相对路径）。
type Storage interface {
	Save(ctx context.Context, data []byte, opts SaveOptions) (string, error)
}

// LocalBaseDirProvider 由暴露可通过 HTTP 直接提供服务的本地目录的存储驱动实现。
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage 根据配置实例化存储后端。
func NewStorage(cfg config.Config) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
