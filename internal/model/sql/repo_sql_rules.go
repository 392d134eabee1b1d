package sql

import (
	"context"
	"fmt"

	"dqdash/internal/entity/db"
)

// CreateQualityRule inserts a rule; names are unique per dataset.
func (r *GormRepository) CreateQualityRule(ctx context.Context, rule *db.QualityRule) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if rule == nil {
		return fmt.Errorf("rule is nil")
	}
	return r.db.WithContext(ctx).Create(rule).Error
}

// ListQualityRules returns the dataset's rules ordered by name.
func (r *GormRepository) ListQualityRules(ctx context.Context, datasetID uint) ([]db.QualityRule, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var rules []db.QualityRule
	if err := r.db.WithContext(ctx).Where("dataset_id = ?", datasetID).Order("name ASC, id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}
