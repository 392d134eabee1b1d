package sql

import (
	"context"
	"fmt"

	"dqdash/internal/entity/db"

	"gorm.io/gorm"
)

// CreateGrant inserts a single (user, dataset) grant. A second grant for the
// same pair fails with gorm.ErrDuplicatedKey.
func (r *GormRepository) CreateGrant(ctx context.Context, userID, datasetID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 || datasetID == 0 {
		return fmt.Errorf("invalid grant")
	}
	return r.db.WithContext(ctx).Create(&db.UserDatasetAccess{UserID: userID, DatasetID: datasetID}).Error
}

// HasGrant reports whether the user may access the dataset.
func (r *GormRepository) HasGrant(ctx context.Context, userID, datasetID uint) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repository not initialised")
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.UserDatasetAccess{}).
		Where("user_id = ? AND dataset_id = ?", userID, datasetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReplaceUserGrants drops every grant of the user and inserts one per
// existing dataset in datasetIDs. Unknown ids are skipped.
func (r *GormRepository) ReplaceUserGrants(ctx context.Context, userID uint, datasetIDs []uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return fmt.Errorf("invalid user id")
	}
	unique := dedupeIDs(datasetIDs)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&db.UserDatasetAccess{}).Error; err != nil {
			return err
		}
		if len(unique) == 0 {
			return nil
		}

		var existing []uint
		if err := tx.Model(&db.Dataset{}).Where("id IN ?", unique).Order("id ASC").Pluck("id", &existing).Error; err != nil {
			return err
		}
		if len(existing) == 0 {
			return nil
		}

		grants := make([]db.UserDatasetAccess, 0, len(existing))
		for _, id := range existing {
			grants = append(grants, db.UserDatasetAccess{UserID: userID, DatasetID: id})
		}
		return tx.Create(&grants).Error
	})
}

// ListGrantedDatasetIDs returns the granted dataset ids keyed by user id.
func (r *GormRepository) ListGrantedDatasetIDs(ctx context.Context, userIDs []uint) (map[uint][]uint, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	result := make(map[uint][]uint)
	unique := dedupeIDs(userIDs)
	if len(unique) == 0 {
		return result, nil
	}

	var grants []db.UserDatasetAccess
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", unique).
		Order("user_id ASC, dataset_id ASC").
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	for _, g := range grants {
		result[g.UserID] = append(result[g.UserID], g.DatasetID)
	}
	return result, nil
}
