package sql

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"dqdash/internal/entity"
	"dqdash/internal/entity/common"
	"dqdash/internal/entity/db"
)

const metricInsertBatchSize = 500

// CreateMetricRecords inserts the batch; ids are written back into records.
func (r *GormRepository) CreateMetricRecords(ctx context.Context, records []db.MetricRecord) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&records, metricInsertBatchSize).Error
}

// LatestMetricValue returns the newest timestamp of the dimension together with
// the average of all values recorded at exactly that timestamp. It returns
// nil when the dataset has no records for the dimension.
func (r *GormRepository) LatestMetricValue(ctx context.Context, datasetID uint, dimension common.Dimension) (*entity.LatestValue, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	var latest []db.MetricRecord
	err := r.db.WithContext(ctx).
		Where("dataset_id = ? AND dimension = ?", datasetID, dimension).
		Order("recorded_at DESC, id DESC").
		Limit(1).
		Find(&latest).Error
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return nil, nil
	}

	// equality is resolved inside the database so timestamp encoding never
	// round-trips through the driver
	maxTime := r.db.Model(&db.MetricRecord{}).
		Select("MAX(recorded_at)").
		Where("dataset_id = ? AND dimension = ?", datasetID, dimension)

	var avg stdsql.NullFloat64
	err = r.db.WithContext(ctx).
		Model(&db.MetricRecord{}).
		Select("AVG(metric_value)").
		Where("dataset_id = ? AND dimension = ? AND recorded_at = (?)", datasetID, dimension, maxTime).
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &entity.LatestValue{Value: avg.Float64, At: latest[0].RecordedAt}, nil
}

// ListMetricRecords returns records ordered by metric name, then recorded_at,
// then id.
func (r *GormRepository) ListMetricRecords(ctx context.Context, filter entity.MetricFilter) ([]db.MetricRecord, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&db.MetricRecord{}).Where("dataset_id = ?", filter.DatasetID)
	if filter.Dimension != nil {
		query = query.Where("dimension = ?", *filter.Dimension)
	}
	if filter.MetricName != nil {
		query = query.Where("metric_name = ?", *filter.MetricName)
	}
	if filter.Start != nil {
		query = query.Where("recorded_at >= ?", filter.Start.UTC())
	}
	if filter.End != nil {
		query = query.Where("recorded_at <= ?", filter.End.UTC())
	}

	var records []db.MetricRecord
	if err := query.Order("metric_name ASC, recorded_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
