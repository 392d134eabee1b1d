package model

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dqdash/internal/config"
	"dqdash/internal/entity/db"
	"dqdash/internal/model/sql"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
)

// RepositoryFactory 根据数据库类型创建对应的仓库实现
type RepositoryFactory struct{}

// NewRepositoryFactory 创建新的仓库工厂
func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

// InitRepository 初始化仓库的辅助函数
func InitRepository(cfg *config.Config) (Repository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	return NewRepositoryFactory().CreateRepository(cfg)
}

// NewRepository wraps an open GORM handle.
func NewRepository(gdb *gorm.DB) Repository {
	return gormRepository{sql.NewGormRepository(gdb)}
}

// gormRepository adapts sql.GormRepository's transaction callback to the
// Repository interface.
type gormRepository struct {
	*sql.GormRepository
}

func (r gormRepository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.GormRepository.Transaction(ctx, func(tx *sql.GormRepository) error {
		return fn(gormRepository{tx})
	})
}

// CreateRepository 根据配置创建对应的仓库实现
func (f *RepositoryFactory) CreateRepository(cfg *config.Config) (Repository, error) {
	var (
		dialector gorm.Dialector
		err       error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.DBType)) {
	case DBTypeMySQL:
		dialector = f.mysqlDialector(cfg)
	case DBTypeSQLite, "":
		dialector, err = f.sqliteDialector(cfg)
	case DBTypePostgres:
		dialector = f.postgresDialector(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}
	if err != nil {
		return nil, err
	}

	gdb, err := f.openGormDB(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialector.Name(), err)
	}

	// 自动迁移数据库表结构
	if err := MigrateSchema(gdb); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return NewRepository(gdb), nil
}

func (f *RepositoryFactory) mysqlDialector(cfg *config.Config) gorm.Dialector {
	dsn := cfg.DSNURL
	if dsn == "" {
		// 从各个配置项构建 DSN
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBAddr, cfg.DBPort, cfg.DBName)
	}
	return mysql.Open(dsn)
}

func (f *RepositoryFactory) postgresDialector(cfg *config.Config) gorm.Dialector {
	dsn := cfg.DSNURL
	if dsn == "" {
		// 从各个配置项构建 DSN
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBAddr, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
	}
	return postgres.Open(dsn)
}

func (f *RepositoryFactory) sqliteDialector(cfg *config.Config) (gorm.Dialector, error) {
	filePath := cfg.DSNURL
	if filePath == "" {
		filePath = cfg.DBPath
	}
	if filePath == "" {
		filePath = "datas/dqdash.db"
	}

	// SQLite 会在连接时自动创建 .db 文件，但前提是目录已存在
	pathPart := filePath
	if idx := strings.Index(pathPart, "?"); idx >= 0 {
		pathPart = pathPart[:idx]
	}
	pathPart = strings.TrimPrefix(pathPart, "file:")
	if dir := filepath.Dir(pathPart); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	return sqlite.Open(sqliteDSN(filePath)), nil
}

// sqliteDSN turns on foreign keys (cascade deletes) and a busy timeout.
func sqliteDSN(path string) string {
	params := []string{}
	if !strings.Contains(path, "_foreign_keys") && !strings.Contains(path, "_fk") {
		params = append(params, "_foreign_keys=on")
	}
	if !strings.Contains(path, "_busy_timeout") {
		params = append(params, "_busy_timeout=5000")
	}
	if len(params) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

func (f *RepositoryFactory) openGormDB(dialector gorm.Dialector) (*gorm.DB, error) {
	// 配置 GORM 日志
	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second * 5,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// MigrateSchema 迁移数据库表结构
func MigrateSchema(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&db.User{},
		&db.Dataset{},
		&db.UserDatasetAccess{},
		&db.MetricRecord{},
		&db.QualityRule{},
	)
}
