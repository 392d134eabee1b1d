package sql

import (
	"context"
	"fmt"
	"strings"

	"dqdash/internal/entity"
	"dqdash/internal/entity/db"

	"gorm.io/gorm"
)

// CreateUser persists a new user record.
func (r *GormRepository) CreateUser(ctx context.Context, user *db.User) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateUser applies the provided fields to an existing user.
func (r *GormRepository) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid user")
	}
	values := updates.ToMap()
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(values).Error
}

// GetUserByEmail loads a user by exact email match.
func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, fmt.Errorf("email is empty")
	}

	var user db.User
	if err := r.db.WithContext(ctx).Where("email = ?", trimmed).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID loads a user by ID.
func (r *GormRepository) GetUserByID(ctx context.Context, id uint) (*db.User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every user ordered by id.
func (r *GormRepository) ListUsers(ctx context.Context) ([]db.User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user by ID. Grants go with it through the FK cascade.
func (r *GormRepository) DeleteUser(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid user id")
	}
	result := r.db.WithContext(ctx).Delete(&db.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
