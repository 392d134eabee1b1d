package db

import (
	"time"

	"dqdash/internal/entity/common"
)

// MetricRecord 一次质量指标观测，创建后不可修改。
type MetricRecord struct {
	ID          uint             `gorm:"primarykey" json:"id"`
	DatasetID   uint             `gorm:"column:dataset_id;not null;index;index:ix_metrics_dataset_dimension_time,priority:1" json:"dataset_id"`
	Dimension   common.Dimension `gorm:"column:dimension;type:varchar(20);not null;index;index:ix_metrics_dataset_dimension_time,priority:2" json:"dimension"`
	MetricName  string           `gorm:"column:metric_name;type:varchar(100);not null;index" json:"metric_name"`
	MetricValue float64          `gorm:"column:metric_value;not null" json:"metric_value"`
	RecordedAt  time.Time        `gorm:"column:recorded_at;not null;index;index:ix_metrics_dataset_dimension_time,priority:3" json:"recorded_at"`
}

// TableName 指定表名。
func (MetricRecord) TableName() string {
	return "metric_records"
}
