package model

import (
	"context"

	"dqdash/internal/entity"
	"dqdash/internal/entity/common"
	"dqdash/internal/entity/db"
)

// Repository 定义数据库操作接口
type Repository interface {
	// Transaction runs fn inside one unit of work: commit when fn returns nil,
	// rollback otherwise. The Repository passed to fn is bound to the transaction.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// 用户管理
	CreateUser(ctx context.Context, user *db.User) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, id uint) (*db.User, error)
	ListUsers(ctx context.Context) ([]db.User, error)
	DeleteUser(ctx context.Context, id uint) error

	// 数据集
	CreateDataset(ctx context.Context, dataset *db.Dataset) error
	GetDataset(ctx context.Context, id uint) (*db.Dataset, error)
	GetDatasetByKey(ctx context.Context, key string) (*db.Dataset, error)
	ListActiveDatasets(ctx context.Context) ([]db.Dataset, error)
	ListActiveDatasetsForUser(ctx context.Context, userID uint) ([]db.Dataset, error)
	FindDatasetsByIDs(ctx context.Context, ids []uint) ([]db.Dataset, error)
	DeleteDataset(ctx context.Context, id uint) error

	// 数据集授权
	CreateGrant(ctx context.Context, userID, datasetID uint) error
	HasGrant(ctx context.Context, userID, datasetID uint) (bool, error)
	ReplaceUserGrants(ctx context.Context, userID uint, datasetIDs []uint) error
	ListGrantedDatasetIDs(ctx context.Context, userIDs []uint) (map[uint][]uint, error)

	// 质量指标
	CreateMetricRecords(ctx context.Context, records []db.MetricRecord) error
	LatestMetricValue(ctx context.Context, datasetID uint, dimension common.Dimension) (*entity.LatestValue, error)
	ListMetricRecords(ctx context.Context, filter entity.MetricFilter) ([]db.MetricRecord, error)

	// 质量规则
	CreateQualityRule(ctx context.Context, rule *db.QualityRule) error
	ListQualityRules(ctx context.Context, datasetID uint) ([]db.QualityRule, error)
}
