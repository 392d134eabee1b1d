package db

import (
	"time"

	"dqdash/internal/entity/common"
)

// Dataset 指标所属的数据集。
type Dataset struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Key         string    `gorm:"column:key;type:varchar(100);uniqueIndex;not null" json:"key"`
	Name        string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description *string   `gorm:"column:description;type:text" json:"description"`
	IsActive    bool      `gorm:"column:is_active;not null" json:"is_active"`

	Metrics []MetricRecord      `gorm:"foreignKey:DatasetID;constraint:OnDelete:CASCADE" json:"-"`
	Grants  []UserDatasetAccess `gorm:"foreignKey:DatasetID;constraint:OnDelete:CASCADE" json:"-"`
	Rules   []QualityRule       `gorm:"foreignKey:DatasetID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名。
func (Dataset) TableName() string {
	return "datasets"
}

// UserDatasetAccess 用户与数据集的授权关联，每个 (user, dataset) 至多一条。
type UserDatasetAccess struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"column:user_id;not null;index;uniqueIndex:uq_user_dataset,priority:1" json:"user_id"`
	DatasetID uint `gorm:"column:dataset_id;not null;index;uniqueIndex:uq_user_dataset,priority:2" json:"dataset_id"`
}

// TableName 指定表名。
func (UserDatasetAccess) TableName() string {
	return "user_dataset_access"
}

// QualityRule 绑定到数据集的 SQL 校验规则，目前只作为数据结构保存。
type QualityRule struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	DatasetID    uint              `gorm:"column:dataset_id;not null;index;uniqueIndex:uq_rule_dataset_name,priority:1" json:"dataset_id"`
	Name         string            `gorm:"column:name;type:varchar(200);not null;uniqueIndex:uq_rule_dataset_name,priority:2" json:"name"`
	Description  *string           `gorm:"column:description;type:text" json:"description"`
	SQLQuery     string            `gorm:"column:sql_query;type:text;not null" json:"sql_query"`
	Dimension    *common.Dimension `gorm:"column:dimension;type:varchar(20)" json:"dimension"`
	ThresholdMin *float64          `gorm:"column:threshold_min" json:"threshold_min"`
	ThresholdMax *float64          `gorm:"column:threshold_max" json:"threshold_max"`
	IsActive     bool              `gorm:"column:is_active;not null" json:"is_active"`
}

// TableName 指定表名。
func (QualityRule) TableName() string {
	return "quality_rules"
}
