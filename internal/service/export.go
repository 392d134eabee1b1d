package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"dqdash/internal/entity"
	"dqdash/internal/entity/converter"
	"dqdash/internal/entity/db"
	"dqdash/internal/entity/dto"
	"dqdash/internal/model"
	"dqdash/internal/storage"

	"github.com/sirupsen/logrus"
)

// ExportCategory is the top-level object path segment of snapshots.
const ExportCategory = "exports"

// ExportService 把数据集的最新汇总和完整时间序列写成 JSON 快照
type ExportService struct {
	repo    model.Repository
	metrics *MetricService
	store   storage.Storage
	now     func() time.Time
}

// NewExportService 创建快照导出服务
func NewExportService(repo model.Repository, metrics *MetricService, store storage.Storage) *ExportService {
	return &ExportService{
		repo:    repo,
		metrics: metrics,
		store:   store,
		now:     time.Now,
	}
}

// ExportSnapshot writes a snapshot of the dataset and returns its object key.
// Objects live under exports/<dataset id>/<yyyy>/<mm>/<dd>/<key>-<unix>.json;
// a second export of the same dataset within one second keeps the first file.
func (s *ExportService) ExportSnapshot(ctx context.Context, caller *db.User, datasetID uint) (dto.ExportResponse, error) {
	if s.store == nil {
		return dto.ExportResponse{}, fmt.Errorf("export storage not configured")
	}
	if err := RequireDatasetAccess(ctx, s.repo, datasetID, caller); err != nil {
		return dto.ExportResponse{}, err
	}
	dataset, err := s.repo.GetDataset(ctx, datasetID)
	if err != nil {
		return dto.ExportResponse{}, storeError(err, "dataset not found")
	}

	summary, err := s.metrics.LatestSummary(ctx, caller, datasetID)
	if err != nil {
		return dto.ExportResponse{}, err
	}
	series, err := s.metrics.Timeseries(ctx, caller, entity.MetricFilter{DatasetID: datasetID})
	if err != nil {
		return dto.ExportResponse{}, err
	}

	generatedAt := s.now().UTC().Truncate(time.Second)
	payload, err := json.MarshalIndent(dto.DatasetSnapshot{
		Dataset:     converter.DatasetToOut(dataset),
		GeneratedAt: generatedAt,
		Summary:     summary,
		Series:      series,
	}, "", "  ")
	if err != nil {
		return dto.ExportResponse{}, fmt.Errorf("encode snapshot: %w", err)
	}

	key, err := s.store.Save(ctx, payload, storage.SaveOptions{
		Category:     ExportCategory,
		Scope:        strconv.FormatUint(uint64(dataset.ID), 10),
		BaseName:     fmt.Sprintf("%s-%d", dataset.Key, generatedAt.Unix()),
		Extension:    "json",
		ContentType:  "application/json",
		At:           generatedAt,
		SkipIfExists: true,
	})
	if err != nil {
		return dto.ExportResponse{}, fmt.Errorf("store snapshot: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"dataset_id": dataset.ID,
		"key":        key,
		"bytes":      len(payload),
	}).Info("dataset snapshot exported")
	return dto.ExportResponse{Key: key, GeneratedAt: generatedAt}, nil
}

// ExportDatasetID extracts the dataset id from an export object key, or 0
// when key is not an export.
func ExportDatasetID(key string) uint {
	scope := storage.ScopeOf(ExportCategory, key)
	if scope == "" {
		return 0
	}
	id, err := strconv.ParseUint(scope, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
