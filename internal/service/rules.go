package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"dqdash/internal/entity/converter"
	"dqdash/internal/entity/db"
	"dqdash/internal/entity/dto"
	"dqdash/internal/model"
)

const maxRuleNameLength = 200

// RuleService 数据集质量规则的登记与查询。规则只作为数据保存，不会被执行。
type RuleService struct {
	repo model.Repository
}

// NewRuleService 创建规则服务
func NewRuleService(repo model.Repository) *RuleService {
	return &RuleService{repo: repo}
}

// CreateRule attaches a rule to an existing dataset. Names are unique per dataset.
func (s *RuleService) CreateRule(ctx context.Context, datasetID uint, req dto.RuleCreateRequest) (dto.RuleOut, error) {
	name := strings.TrimSpace(req.Name)
	query := strings.TrimSpace(req.SQLQuery)
	switch {
	case name == "":
		return dto.RuleOut{}, newError(ErrValidation, "name is required")
	case utf8.RuneCountInString(name) > maxRuleNameLength:
		return dto.RuleOut{}, newError(ErrValidation, "name must be at most %d characters", maxRuleNameLength)
	case query == "":
		return dto.RuleOut{}, newError(ErrValidation, "sql_query is required")
	case req.Dimension != nil && !req.Dimension.Valid():
		return dto.RuleOut{}, newError(ErrValidation, "unknown dimension %q", *req.Dimension)
	case req.ThresholdMin != nil && req.ThresholdMax != nil && *req.ThresholdMin > *req.ThresholdMax:
		return dto.RuleOut{}, newError(ErrValidation, "threshold_min must not exceed threshold_max")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	rule := &db.QualityRule{
		DatasetID:    datasetID,
		Name:         name,
		Description:  req.Description,
		SQLQuery:     query,
		Dimension:    req.Dimension,
		ThresholdMin: req.ThresholdMin,
		ThresholdMax: req.ThresholdMax,
		IsActive:     isActive,
	}

	err := s.repo.Transaction(ctx, func(tx model.Repository) error {
		if _, err := tx.GetDataset(ctx, datasetID); err != nil {
			return storeError(err, "dataset not found")
		}
		return storeError(tx.CreateQualityRule(ctx, rule), "rule %q already exists for this dataset", name)
	})
	if err != nil {
		return dto.RuleOut{}, err
	}
	return converter.RuleToOut(rule), nil
}

// ListRules returns the dataset's rules to anyone with access to the dataset.
func (s *RuleService) ListRules(ctx context.Context, caller *db.User, datasetID uint) ([]dto.RuleOut, error) {
	if err := RequireDatasetAccess(ctx, s.repo, datasetID, caller); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetDataset(ctx, datasetID); err != nil {
		return nil, storeError(err, "dataset not found")
	}
	rules, err := s.repo.ListQualityRules(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	return converter.RulesToOut(rules), nil
}
