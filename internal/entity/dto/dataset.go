package dto

import (
	"time"

	"dqdash/internal/entity/common"
)

// DatasetOut is the dataset representation returned to clients.
type DatasetOut struct {
	ID          uint      `json:"id"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// DatasetCreateRequest is the payload for creating a dataset.
type DatasetCreateRequest struct {
	Key         string  `json:"key" binding:"required,max=100"`
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// RuleCreateRequest is the payload for attaching a quality rule to a dataset.
type RuleCreateRequest struct {
	Name         string            `json:"name" binding:"required,max=200"`
	Description  *string           `json:"description"`
	SQLQuery     string            `json:"sql_query" binding:"required"`
	Dimension    *common.Dimension `json:"dimension"`
	ThresholdMin *float64          `json:"threshold_min"`
	ThresholdMax *float64          `json:"threshold_max"`
	IsActive     *bool             `json:"is_active"`
}

// RuleOut is the quality rule representation returned to clients.
type RuleOut struct {
	ID           uint              `json:"id"`
	DatasetID    uint              `json:"dataset_id"`
	Name         string            `json:"name"`
	Description  *string           `json:"description"`
	SQLQuery     string            `json:"sql_query"`
	Dimension    *common.Dimension `json:"dimension"`
	ThresholdMin *float64          `json:"threshold_min"`
	ThresholdMax *float64          `json:"threshold_max"`
	IsActive     bool              `json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"`
}
