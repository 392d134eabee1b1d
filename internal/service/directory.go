package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"dqdash/internal/auth"
	"dqdash/internal/entity"
	"dqdash/internal/entity/converter"
	"dqdash/internal/entity/db"
	"dqdash/internal/entity/dto"
	"dqdash/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	minPasswordLength   = 8
	maxDatasetKeyLength = 100
)

// DirectoryService 用户、数据集及其授权关系的管理
type DirectoryService struct {
	repo model.Repository
}

// NewDirectoryService 创建目录服务
func NewDirectoryService(repo model.Repository) *DirectoryService {
	return &DirectoryService{repo: repo}
}

// CreateUser 创建用户并授予请求中存在的数据集；不存在的数据集 id 被忽略
func (s *DirectoryService) CreateUser(ctx context.Context, req dto.UserCreateRequest) (dto.UserOut, error) {
	email := strings.TrimSpace(req.Email)
	if err := validateEmail(email); err != nil {
		return dto.UserOut{}, err
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return dto.UserOut{}, newError(ErrValidation, "password must be at least %d characters", minPasswordLength)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return dto.UserOut{}, err
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	user := &db.User{
		Email:        email,
		FullName:     req.FullName,
		PasswordHash: hash,
		IsActive:     isActive,
		IsAdmin:      req.IsAdmin,
	}

	var out dto.UserOut
	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if _, err := tx.GetUserByEmail(ctx, email); err == nil {
			return newError(ErrConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			return storeError(err, "email already registered")
		}
		if err := tx.ReplaceUserGrants(ctx, user.ID, req.DatasetIDs); err != nil {
			return err
		}
		out, err = describeUser(ctx, tx, user)
		return err
	})
	if err != nil {
		return dto.UserOut{}, err
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "email": email}).Info("user created")
	return out, nil
}

// UpdateUser 部分更新：未出现在请求中的字段保持不变。dataset_ids 一旦给出
// （包括空列表）即整体替换授权集合
func (s *DirectoryService) UpdateUser(ctx context.Context, id uint, req dto.UserUpdateRequest) (dto.UserOut, error) {
	updates := entity.UserUpdates{FullName: req.FullName}
	if v, ok := req.IsActive.Get(); ok {
		updates.IsActive = &v
	}
	if v, ok := req.IsAdmin.Get(); ok {
		updates.IsAdmin = &v
	}

	var out dto.UserOut
	err := s.repo.Transaction(ctx, func(tx model.Repository) error {
		if _, err := tx.GetUserByID(ctx, id); err != nil {
			return storeError(err, "user not found")
		}
		if !updates.IsEmpty() {
			if err := tx.UpdateUser(ctx, id, updates); err != nil {
				return err
			}
		}
		if ids, ok := req.DatasetIDs.Get(); ok {
			if err := tx.ReplaceUserGrants(ctx, id, ids); err != nil {
				return err
			}
		}
		user, err := tx.GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		out, err = describeUser(ctx, tx, user)
		return err
	})
	if err != nil {
		return dto.UserOut{}, err
	}
	return out, nil
}

// ListUsers 返回全部用户（按 id 排序）及其授权的数据集
func (s *DirectoryService) ListUsers(ctx context.Context) ([]dto.UserOut, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	grants, err := s.repo.ListGrantedDatasetIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return converter.UsersToOut(users, grants), nil
}

// DescribeUser 返回单个用户的对外表示
func (s *DirectoryService) DescribeUser(ctx context.Context, user *db.User) (dto.UserOut, error) {
	return describeUser(ctx, s.repo, user)
}

func describeUser(ctx context.Context, repo model.Repository, user *db.User) (dto.UserOut, error) {
	grants, err := repo.ListGrantedDatasetIDs(ctx, []uint{user.ID})
	if err != nil {
		return dto.UserOut{}, err
	}
	return converter.UserToOut(user, grants[user.ID]), nil
}

// DeleteUser 删除用户，授权随外键级联删除；不能删除自己
func (s *DirectoryService) DeleteUser(ctx context.Context, caller *db.User, id uint) error {
	if caller != nil && caller.ID == id {
		return newError(ErrValidation, "cannot delete yourself")
	}
	if id == 0 {
		return newError(ErrNotFound, "user not found")
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return storeError(err, "user not found")
	}
	logrus.WithField("user_id", id).Info("user deleted")
	return nil
}

// CreateDataset 创建数据集，key 重复时返回冲突
func (s *DirectoryService) CreateDataset(ctx context.Context, req dto.DatasetCreateRequest) (dto.DatasetOut, error) {
	key := strings.TrimSpace(req.Key)
	name := strings.TrimSpace(req.Name)
	switch {
	case key == "":
		return dto.DatasetOut{}, newError(ErrValidation, "key is required")
	case utf8.RuneCountInString(key) > maxDatasetKeyLength:
		return dto.DatasetOut{}, newError(ErrValidation, "key must be at most %d characters", maxDatasetKeyLength)
	case name == "":
		return dto.DatasetOut{}, newError(ErrValidation, "name is required")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	dataset := &db.Dataset{
		Key:         key,
		Name:        name,
		Description: req.Description,
		IsActive:    isActive,
	}

	err := s.repo.Transaction(ctx, func(tx model.Repository) error {
		if _, err := tx.GetDatasetByKey(ctx, key); err == nil {
			return newError(ErrConflict, "dataset key already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return storeError(tx.CreateDataset(ctx, dataset), "dataset key already exists")
	})
	if err != nil {
		return dto.DatasetOut{}, err
	}
	logrus.WithFields(logrus.Fields{"dataset_id": dataset.ID, "key": key}).Info("dataset created")
	return converter.DatasetToOut(dataset), nil
}

// ListDatasets 管理员看到全部启用的数据集，普通用户只看到已授权且启用的
func (s *DirectoryService) ListDatasets(ctx context.Context, caller *db.User) ([]dto.DatasetOut, error) {
	if caller == nil {
		return nil, newError(ErrUnauthenticated, "not authenticated")
	}
	var (
		datasets []db.Dataset
		err      error
	)
	if caller.IsAdmin {
		datasets, err = s.repo.ListActiveDatasets(ctx)
	} else {
		datasets, err = s.repo.ListActiveDatasetsForUser(ctx, caller.ID)
	}
	if err != nil {
		return nil, err
	}
	return converter.DatasetsToOut(datasets), nil
}

// GetDataset 按 id 读取数据集（需要数据集权限）
func (s *DirectoryService) GetDataset(ctx context.Context, caller *db.User, id uint) (dto.DatasetOut, error) {
	if err := RequireDatasetAccess(ctx, s.repo, id, caller); err != nil {
		return dto.DatasetOut{}, err
	}
	dataset, err := s.repo.GetDataset(ctx, id)
	if err != nil {
		return dto.DatasetOut{}, storeError(err, "dataset not found")
	}
	return converter.DatasetToOut(dataset), nil
}

// DeleteDataset 删除数据集，指标、授权和规则级联删除
func (s *DirectoryService) DeleteDataset(ctx context.Context, id uint) error {
	if id == 0 {
		return newError(ErrNotFound, "dataset not found")
	}
	if err := s.repo.DeleteDataset(ctx, id); err != nil {
		return storeError(err, "dataset not found")
	}
	logrus.WithField("dataset_id", id).Info("dataset deleted")
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return newError(ErrValidation, "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return newError(ErrValidation, "invalid email address")
	}
	return nil
}
