package service

import (
	"context"
	"testing"

	"dqdash/internal/entity/common"
	"dqdash/internal/entity/dto"
	"dqdash/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListRules(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	admin := testutil.MustCreateUser(t, repo, "admin@example.com", true)
	viewer := testutil.MustCreateUser(t, repo, "viewer@example.com", false)
	dataset := testutil.MustCreateDataset(t, repo, "orders")
	svc := NewRuleService(repo)

	dim := common.DimensionCompleteness
	lo, hi := 0.95, 1.0
	rule, err := svc.CreateRule(ctx, dataset.ID, dto.RuleCreateRequest{
		Name:         "non_null_ids",
		SQLQuery:     "SELECT COUNT(*) FROM orders WHERE id IS NULL",
		Dimension:    &dim,
		ThresholdMin: &lo,
		ThresholdMax: &hi,
	})
	require.NoError(t, err)
	assert.True(t, rule.IsActive)
	assert.Equal(t, dataset.ID, rule.DatasetID)

	_, err = svc.CreateRule(ctx, dataset.ID, dto.RuleCreateRequest{Name: "non_null_ids", SQLQuery: "SELECT 1"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateRule(ctx, 999, dto.RuleCreateRequest{Name: "r", SQLQuery: "SELECT 1"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListRules(ctx, viewer, dataset.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	testutil.MustGrant(t, repo, viewer, dataset)
	rules, err := svc.ListRules(ctx, viewer, dataset.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "non_null_ids", rules[0].Name)
	require.NotNil(t, rules[0].Dimension)
	assert.Equal(t, dim, *rules[0].Dimension)

	_, err = svc.ListRules(ctx, admin, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRuleValidation(t *testing.T) {
	repo := testutil.NewRepository(t)
	dataset := testutil.MustCreateDataset(t, repo, "orders")
	svc := NewRuleService(repo)
	bad := common.Dimension("freshness")
	lo, hi := 2.0, 1.0

	tests := []struct {
		name string
		req  dto.RuleCreateRequest
	}{
		{name: "no name", req: dto.RuleCreateRequest{SQLQuery: "SELECT 1"}},
		{name: "no sql", req: dto.RuleCreateRequest{Name: "r"}},
		{name: "bad dimension", req: dto.RuleCreateRequest{Name: "r", SQLQuery: "SELECT 1", Dimension: &bad}},
		{name: "inverted band", req: dto.RuleCreateRequest{Name: "r", SQLQuery: "SELECT 1", ThresholdMin: &lo, ThresholdMax: &hi}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateRule(context.Background(), dataset.ID, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
