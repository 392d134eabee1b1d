package sql

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// DB exposes the underlying handle, mainly for tests and health checks.
func (r *GormRepository) DB() *gorm.DB {
	if r == nil {
		return nil
	}
	return r.db
}

// Transaction runs fn with a repository bound to a single database
// transaction. Commit happens when fn returns nil; any error or panic rolls back.
func (r *GormRepository) Transaction(ctx context.Context, fn func(tx *GormRepository) error) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

// dedupeIDs drops zero and repeated ids while keeping first-seen order.
func dedupeIDs(ids []uint) []uint {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
