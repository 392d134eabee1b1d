package dto

import (
	"time"

	"dqdash/internal/entity/common"
)

// MetricRecordCreate is one element of an ingestion batch.
type MetricRecordCreate struct {
	DatasetID   uint             `json:"dataset_id" binding:"required"`
	Dimension   common.Dimension `json:"dimension" binding:"required"`
	MetricName  string           `json:"metric_name" binding:"required,max=100"`
	MetricValue *float64         `json:"metric_value" binding:"required"`
	RecordedAt  *time.Time       `json:"recorded_at"`
}

// MetricRecordOut is a stored observation.
type MetricRecordOut struct {
	ID          uint             `json:"id"`
	DatasetID   uint             `json:"dataset_id"`
	Dimension   common.Dimension `json:"dimension"`
	MetricName  string           `json:"metric_name"`
	MetricValue float64          `json:"metric_value"`
	RecordedAt  time.Time        `json:"recorded_at"`
}

// DimensionSummary carries the latest value of one dimension. Both fields
// are null when the dataset has no data for the dimension.
type DimensionSummary struct {
	Dimension   common.Dimension `json:"dimension"`
	LatestValue *float64         `json:"latest_value"`
	LatestAt    *time.Time       `json:"latest_at"`
}

// SeriesPoint is one observation in a series.
type SeriesPoint struct {
	RecordedAt time.Time `json:"recorded_at"`
	Value      float64   `json:"value"`
}

// Series groups the points of one metric name.
type Series struct {
	MetricName string        `json:"metric_name"`
	Points     []SeriesPoint `json:"points"`
}
