package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"dqdash/internal/entity"
	"dqdash/internal/entity/common"
	"dqdash/internal/entity/db"
	"dqdash/internal/entity/dto"
	"dqdash/internal/model"

	"github.com/sirupsen/logrus"
)

const maxMetricNameLength = 100

// IngestObserver receives the number of committed records per dimension.
type IngestObserver interface {
	ObserveIngest(dimension string, records int)
}

// MetricService 指标写入与查询
type MetricService struct {
	repo     model.Repository
	observer IngestObserver
	now      func() time.Time
}

// NewMetricService 创建指标服务；observer 可为 nil
func NewMetricService(repo model.Repository, observer IngestObserver) *MetricService {
	return &MetricService{
		repo:     repo,
		observer: observer,
		now:      time.Now,
	}
}

// Ingest stores the batch atomically. Every distinct dataset in the batch
// must pass the access check and exist before anything is written. An empty
// batch returns immediately without any check.
func (s *MetricService) Ingest(ctx context.Context, caller *db.User, items []dto.MetricRecordCreate) ([]db.MetricRecord, error) {
	if len(items) == 0 {
		return []db.MetricRecord{}, nil
	}

	ingestedAt := s.now().UTC()
	records := make([]db.MetricRecord, 0, len(items))
	datasetIDs := make([]uint, 0, 1)
	seen := make(map[uint]struct{})

	for i, item := range items {
		record, err := toMetricRecord(item, ingestedAt)
		if err != nil {
			return nil, newError(ErrValidation, "item %d: %v", i, err)
		}
		records = append(records, record)
		if _, ok := seen[record.DatasetID]; !ok {
			seen[record.DatasetID] = struct{}{}
			datasetIDs = append(datasetIDs, record.DatasetID)
		}
	}

	err := s.repo.Transaction(ctx, func(tx model.Repository) error {
		for _, id := range datasetIDs {
			if err := RequireDatasetAccess(ctx, tx, id, caller); err != nil {
				return err
			}
			if _, err := tx.GetDataset(ctx, id); err != nil {
				return storeError(err, "dataset %d not found", id)
			}
		}
		return tx.CreateMetricRecords(ctx, records)
	})
	if err != nil {
		return nil, err
	}

	s.observe(records)
	logrus.WithFields(logrus.Fields{
		"user_id":  caller.ID,
		"records":  len(records),
		"datasets": len(datasetIDs),
	}).Debug("metrics ingested")
	return records, nil
}

func toMetricRecord(item dto.MetricRecordCreate, ingestedAt time.Time) (db.MetricRecord, error) {
	if item.DatasetID == 0 {
		return db.MetricRecord{}, errors.New("dataset_id is required")
	}
	if !item.Dimension.Valid() {
		return db.MetricRecord{}, fmt.Errorf("unknown dimension %q", item.Dimension)
	}
	name := strings.TrimSpace(item.MetricName)
	if name == "" {
		return db.MetricRecord{}, errors.New("metric_name is required")
	}
	if utf8.RuneCountInString(name) > maxMetricNameLength {
		return db.MetricRecord{}, errors.New("metric_name is too long")
	}
	if item.MetricValue == nil {
		return db.MetricRecord{}, errors.New("metric_value is required")
	}

	recordedAt := ingestedAt
	if item.RecordedAt != nil && !item.RecordedAt.IsZero() {
		recordedAt = item.RecordedAt.UTC()
	}
	return db.MetricRecord{
		DatasetID:   item.DatasetID,
		Dimension:   item.Dimension,
		MetricName:  name,
		MetricValue: *item.MetricValue,
		RecordedAt:  recordedAt,
	}, nil
}

func (s *MetricService) observe(records []db.MetricRecord) {
	if s.observer == nil {
		return
	}
	counts := make(map[common.Dimension]int)
	for _, r := range records {
		counts[r.Dimension]++
	}
	for _, dim := range common.Dimensions() {
		if n := counts[dim]; n > 0 {
			s.observer.ObserveIngest(dim.String(), n)
		}
	}
}

// LatestSummary returns one entry per dimension in enumeration order. A
// dimension without data has a nil value and a nil timestamp.
func (s *MetricService) LatestSummary(ctx context.Context, caller *db.User, datasetID uint) ([]dto.DimensionSummary, error) {
	if err := RequireDatasetAccess(ctx, s.repo, datasetID, caller); err != nil {
		return nil, err
	}

	dims := common.Dimensions()
	summary := make([]dto.DimensionSummary, 0, len(dims))
	for _, dim := range dims {
		latest, err := s.repo.LatestMetricValue(ctx, datasetID, dim)
		if err != nil {
			return nil, err
		}
		entry := dto.DimensionSummary{Dimension: dim}
		if latest != nil {
			value := latest.Value
			at := latest.At.UTC()
			entry.LatestValue = &value
			entry.LatestAt = &at
		}
		summary = append(summary, entry)
	}
	return summary, nil
}

// Timeseries returns the filtered records grouped by metric name.
func (s *MetricService) Timeseries(ctx context.Context, caller *db.User, filter entity.MetricFilter) ([]dto.Series, error) {
	if err := RequireDatasetAccess(ctx, s.repo, filter.DatasetID, caller); err != nil {
		return nil, err
	}
	if filter.Dimension != nil && !filter.Dimension.Valid() {
		return nil, newError(ErrValidation, "unknown dimension %q", *filter.Dimension)
	}

	records, err := s.repo.ListMetricRecords(ctx, filter)
	if err != nil {
		return nil, err
	}
	return GroupSeries(records), nil
}

// GroupSeries groups records by metric name. Groups appear in the order their
// first record appears and points keep the input order.
func GroupSeries(records []db.MetricRecord) []dto.Series {
	series := make([]dto.Series, 0)
	index := make(map[string]int)
	for _, r := range records {
		pos, ok := index[r.MetricName]
		if !ok {
			pos = len(series)
			index[r.MetricName] = pos
			series = append(series, dto.Series{MetricName: r.MetricName, Points: []dto.SeriesPoint{}})
		}
		series[pos].Points = append(series[pos].Points, dto.SeriesPoint{
			RecordedAt: r.RecordedAt.UTC(),
			Value:      r.MetricValue,
		})
	}
	return series
}
