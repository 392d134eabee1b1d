package entity

import (
	"time"

	"dqdash/internal/entity/common"
)

// MetricFilter narrows a metric record listing. Start and End are inclusive.
type MetricFilter struct {
	DatasetID  uint
	Dimension  *common.Dimension
	MetricName *string
	Start      *time.Time
	End        *time.Time
}

// LatestValue is the average of all values sharing a dimension's newest timestamp.
type LatestValue struct {
	Value float64
	At    time.Time
}
