package sql

import (
	"context"
	"fmt"
	"strings"

	"dqdash/internal/entity/db"

	"gorm.io/gorm"
)

// CreateDataset inserts a new dataset.
func (r *GormRepository) CreateDataset(ctx context.Context, dataset *db.Dataset) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if dataset == nil {
		return fmt.Errorf("dataset is nil")
	}
	return r.db.WithContext(ctx).Create(dataset).Error
}

// GetDataset loads a dataset by ID regardless of its active flag.
func (r *GormRepository) GetDataset(ctx context.Context, id uint) (*db.Dataset, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var dataset db.Dataset
	if err := r.db.WithContext(ctx).First(&dataset, id).Error; err != nil {
		return nil, err
	}
	return &dataset, nil
}

// GetDatasetByKey loads a dataset by its unique key.
func (r *GormRepository) GetDatasetByKey(ctx context.Context, key string) (*db.Dataset, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var dataset db.Dataset
	// map condition so GORM quotes the "key" column on every dialect
	if err := r.db.WithContext(ctx).Where(map[string]interface{}{"key": trimmed}).First(&dataset).Error; err != nil {
		return nil, err
	}
	return &dataset, nil
}

// ListActiveDatasets returns all active datasets ordered by id.
func (r *GormRepository) ListActiveDatasets(ctx context.Context) ([]db.Dataset, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var datasets []db.Dataset
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&datasets).Error; err != nil {
		return nil, err
	}
	return datasets, nil
}

// ListActiveDatasetsForUser returns active datasets the user holds a grant on.
func (r *GormRepository) ListActiveDatasetsForUser(ctx context.Context, userID uint) ([]db.Dataset, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var datasets []db.Dataset
	err := r.db.WithContext(ctx).
		Model(&db.Dataset{}).
		Joins("JOIN user_dataset_access ON user_dataset_access.dataset_id = datasets.id").
		Where("user_dataset_access.user_id = ? AND datasets.is_active = ?", userID, true).
		Order("datasets.id ASC").
		Find(&datasets).Error
	if err != nil {
		return nil, err
	}
	return datasets, nil
}

// FindDatasetsByIDs fetches the datasets that exist among ids.
func (r *GormRepository) FindDatasetsByIDs(ctx context.Context, ids []uint) ([]db.Dataset, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return []db.Dataset{}, nil
	}
	var datasets []db.Dataset
	if err := r.db.WithContext(ctx).Where("id IN ?", unique).Order("id ASC").Find(&datasets).Error; err != nil {
		return nil, err
	}
	return datasets, nil
}

// DeleteDataset removes a dataset; metrics, grants and rules cascade.
func (r *GormRepository) DeleteDataset(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid dataset id")
	}
	result := r.db.WithContext(ctx).Delete(&db.Dataset{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
