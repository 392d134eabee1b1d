package converter

import (
	"dqdash/internal/entity/db"
	"dqdash/internal/entity/dto"
)

// DatasetToOut converts a db.Dataset to dto.DatasetOut.
func DatasetToOut(d *db.Dataset) dto.DatasetOut {
	if d == nil {
		return dto.DatasetOut{}
	}
	return dto.DatasetOut{
		ID:          d.ID,
		Key:         d.Key,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// DatasetsToOut converts a slice of db.Dataset to dto.DatasetOut.
func DatasetsToOut(datasets []db.Dataset) []dto.DatasetOut {
	out := make([]dto.DatasetOut, len(datasets))
	for i := range datasets {
		out[i] = DatasetToOut(&datasets[i])
	}
	return out
}

// RuleToOut converts a db.QualityRule to dto.RuleOut.
func RuleToOut(r *db.QualityRule) dto.RuleOut {
	if r == nil {
		return dto.RuleOut{}
	}
	return dto.RuleOut{
		ID:           r.ID,
		DatasetID:    r.DatasetID,
		Name:         r.Name,
		Description:  r.Description,
		SQLQuery:     r.SQLQuery,
		Dimension:    r.Dimension,
		ThresholdMin: r.ThresholdMin,
		ThresholdMax: r.ThresholdMax,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

// RulesToOut converts a slice of db.QualityRule to dto.RuleOut.
func RulesToOut(rules []db.QualityRule) []dto.RuleOut {
	out := make([]dto.RuleOut, len(rules))
	for i := range rules {
		out[i] = RuleToOut(&rules[i])
	}
	return out
}
