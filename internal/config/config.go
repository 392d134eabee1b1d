package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBType     string `env:"DB_TYPE" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DB_USER" envDefault:"appuser"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"apppass"`
	DBAddr     string `env:"DB_ADDR" envDefault:"db"`
	DBName     string `env:"DB_NAME" envDefault:"appdb"`
	DBPath     string `env:"DB_PATH" envDefault:"datas/dqdash.db"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`

	JWTSecret                string `env:"JWT_SECRET_KEY" envDefault:"change-me-in-prod"`
	JWTAlgorithm             string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"60"`

	// 逗号分隔的允许跨域来源
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`

	InitialAdminEmail    string `env:"INITIAL_ADMIN_EMAIL" envDefault:"admin@example.com"`
	InitialAdminPassword string `env:"INITIAL_ADMIN_PASSWORD" envDefault:"admin123"`
	SeedSampleDataset    bool   `env:"SEED_SAMPLE_DATASET" envDefault:"true"`

	LoginRatePerSecond float64 `env:"LOGIN_RATE_PER_SECOND" envDefault:"1"`
	LoginRateBurst     int     `env:"LOGIN_RATE_BURST" envDefault:"5"`

	StorageType          string `env:"STORAGE_TYPE" envDefault:"local"`
	StorageLocalDir      string `env:"STORAGE_LOCAL_DIR" envDefault:"datas/exports"`
	StoragePublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL" envDefault:"/files"`

	// S3 兼容存储配置
	StorageS3Region          string `env:"STORAGE_S3_REGION"`
	StorageS3Bucket          string `env:"STORAGE_S3_BUCKET"`
	StorageS3Prefix          string `env:"STORAGE_S3_PREFIX"`
	StorageS3Endpoint        string `env:"STORAGE_S3_ENDPOINT"`
	StorageS3AccessKeyID     string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	StorageS3SecretAccessKey string `env:"STORAGE_S3_SECRET_ACCESS_KEY"`
	StorageS3SessionToken    string `env:"STORAGE_S3_SESSION_TOKEN"`
	StorageS3ForcePathStyle  bool   `env:"STORAGE_S3_FORCE_PATH_STYLE" envDefault:"false"`

	// 阿里云 OSS 存储配置
	StorageOSSEndpoint        string `env:"STORAGE_OSS_ENDPOINT"`
	StorageOSSBucket          string `env:"STORAGE_OSS_BUCKET"`
	StorageOSSPrefix          string `env:"STORAGE_OSS_PREFIX"`
	StorageOSSAccessKeyID     string `env:"STORAGE_OSS_ACCESS_KEY_ID"`
	StorageOSSAccessKeySecret string `env:"STORAGE_OSS_ACCESS_KEY_SECRET"`

	// 腾讯云 COS 存储配置
	StorageCOSBucketURL string `env:"STORAGE_COS_BUCKET_URL"`
	StorageCOSPrefix    string `env:"STORAGE_COS_PREFIX"`
	StorageCOSSecretID  string `env:"STORAGE_COS_SECRET_ID"`
	StorageCOSSecretKey string `env:"STORAGE_COS_SECRET_KEY"`

	// Cloudflare R2 存储配置
	StorageR2AccountID       string `env:"STORAGE_R2_ACCOUNT_ID"`
	StorageR2Endpoint        string `env:"STORAGE_R2_ENDPOINT"`
	StorageR2Region          string `env:"STORAGE_R2_REGION" envDefault:"auto"`
	StorageR2Bucket          string `env:"STORAGE_R2_BUCKET"`
	StorageR2Prefix          string `env:"STORAGE_R2_PREFIX"`
	StorageR2AccessKeyID     string `env:"STORAGE_R2_ACCESS_KEY_ID"`
	StorageR2SecretAccessKey string `env:"STORAGE_R2_SECRET_ACCESS_KEY"`
}

func ParseConfig() (Config, error) {
	var conf Config
	if err := env.Parse(&conf); err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	logrus.WithFields(logrus.Fields{
		"db_type":       conf.DBType,
		"storage_type":  conf.StorageType,
		"jwt_algorithm": conf.JWTAlgorithm,
	}).Debug("config loaded")
	return conf, nil
}

// Validate rejects settings the token manager and store cannot work with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET_KEY must not be empty")
	}
	method := jwt.GetSigningMethod(strings.TrimSpace(c.JWTAlgorithm))
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return fmt.Errorf("config: unsupported JWT_ALGORITHM %q", c.JWTAlgorithm)
	}
	if c.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("config: ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessTokenExpireMinutes)
	}
	return nil
}

// AllowedOrigins returns the configured CORS origins without blanks.
func (c Config) AllowedOrigins() []string {
	out := make([]string, 0, len(c.CORSOrigins))
	for _, origin := range c.CORSOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
