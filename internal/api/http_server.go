package api

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"dqdash/internal/auth"
	"dqdash/internal/config"
	"dqdash/internal/model"
	"dqdash/internal/obs"
	"dqdash/internal/service"
	"dqdash/internal/storage"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storage           storage.Storage
	storagePublicBase string
	metrics           *obs.Metrics
	loginLimiter      *ipLimiter

	// 服务层
	gate      *service.AccessGate
	directory *service.DirectoryService
	metricSvc *service.MetricService
	rules     *service.RuleService
	exports   *service.ExportService
}

// NewHTTPHandler 创建 HTTP 处理器实例；metrics 可为 nil
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, metrics *obs.Metrics) (*HTTPHandler, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	expiry := time.Duration(cfg.AccessTokenExpireMinutes) * time.Minute
	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTAlgorithm, expiry)
	if err != nil {
		return nil, err
	}
	registerJSONFieldNames()

	var observer service.IngestObserver
	if metrics != nil {
		observer = metrics
	}
	metricSvc := service.NewMetricService(repo, observer)

	return &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storage:           store,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		metrics:           metrics,
		loginLimiter:      newIPLimiter(cfg.LoginRatePerSecond, cfg.LoginRateBurst),
		gate:              service.NewAccessGate(repo, tokens),
		directory:         service.NewDirectoryService(repo),
		metricSvc:         metricSvc,
		rules:             service.NewRuleService(repo),
		exports:           service.NewExportService(repo, metricSvc, store),
	}, nil
}

var fieldNamesOnce sync.Once

// registerJSONFieldNames makes validation errors report json field names.
func registerJSONFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
	})
}

// normalisePublicBase 规范化公共 URL 基础路径
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

// servesFiles reports whether exports are downloaded through this server.
func (h *HTTPHandler) servesFiles() bool {
	if _, ok := h.storage.(storage.LocalBaseDirProvider); !ok {
		return false
	}
	return strings.HasPrefix(h.storagePublicBase, "/")
}
