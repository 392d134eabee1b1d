package sql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dqdash/internal/entity"
	"dqdash/internal/entity/common"
	"dqdash/internal/entity/db"
	"dqdash/internal/model"
	"dqdash/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGrantIsUniquePerUserAndDataset(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	user := testutil.MustCreateUser(t, repo, "a@example.com", false)
	dataset := testutil.MustCreateDataset(t, repo, "orders")

	require.NoError(t, repo.CreateGrant(ctx, user.ID, dataset.ID))
	err := repo.CreateGrant(ctx, user.ID, dataset.ID)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	ok, err := repo.HasGrant(ctx, user.ID, dataset.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDuplicateEmailAndKeyAreTranslated(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	testutil.MustCreateUser(t, repo, "dup@example.com", false)
	testutil.MustCreateDataset(t, repo, "dup")

	err := repo.CreateUser(ctx, &db.User{Email: "dup@example.com", PasswordHash: "x", IsActive: true})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	err = repo.CreateDataset(ctx, &db.Dataset{Key: "dup", Name: "again", IsActive: true})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCreatePersistsFalseFlags(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)

	require.NoError(t, repo.CreateUser(ctx, &db.User{Email: "off@example.com", PasswordHash: "x", IsActive: false}))
	user, err := repo.GetUserByEmail(ctx, "off@example.com")
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	require.NoError(t, repo.CreateDataset(ctx, &db.Dataset{Key: "hidden", Name: "hidden", IsActive: false}))
	dataset, err := repo.GetDatasetByKey(ctx, "hidden")
	require.NoError(t, err)
	assert.False(t, dataset.IsActive)
}

func TestUpdateUserAppliesOnlyProvidedFields(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	user := testutil.MustCreateUser(t, repo, "u@example.com", false)

	require.NoError(t, repo.UpdateUser(ctx, user.ID, entity.UserUpdates{FullName: common.Some("Jane")}))
	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FullName)
	assert.Equal(t, "Jane", *got.FullName)
	assert.True(t, got.IsActive)

	inactive := false
	require.NoError(t, repo.UpdateUser(ctx, user.ID, entity.UserUpdates{FullName: common.Null[string](), IsActive: &inactive}))
	got, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FullName)
	assert.False(t, got.IsActive)
	assert.False(t, got.IsAdmin)
}

func TestListActiveDatasetsForUser(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	user := testutil.MustCreateUser(t, repo, "viewer@example.com", false)
	granted := testutil.MustCreateDataset(t, repo, "granted")
	testutil.MustCreateDataset(t, repo, "other")
	inactive := &db.Dataset{Key: "inactive", Name: "inactive", IsActive: false}
	require.NoError(t, repo.CreateDataset(ctx, inactive))

	testutil.MustGrant(t, repo, user, granted)
	require.NoError(t, repo.CreateGrant(ctx, user.ID, inactive.ID))

	datasets, err := repo.ListActiveDatasetsForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, "granted", datasets[0].Key)

	all, err := repo.ListActiveDatasets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReplaceUserGrantsSkipsUnknownIDs(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	user := testutil.MustCreateUser(t, repo, "g@example.com", false)
	first := testutil.MustCreateDataset(t, repo, "first")
	second := testutil.MustCreateDataset(t, repo, "second")
	testutil.MustGrant(t, repo, user, first)

	require.NoError(t, repo.ReplaceUserGrants(ctx, user.ID, []uint{second.ID, second.ID, 9999}))

	grants, err := repo.ListGrantedDatasetIDs(ctx, []uint{user.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID}, grants[user.ID])

	require.NoError(t, repo.ReplaceUserGrants(ctx, user.ID, nil))
	grants, err = repo.ListGrantedDatasetIDs(ctx, []uint{user.ID})
	require.NoError(t, err)
	assert.Empty(t, grants[user.ID])
}

func TestDeleteDatasetCascades(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	user := testutil.MustCreateUser(t, repo, "c@example.com", false)
	dataset := testutil.MustCreateDataset(t, repo, "cascade")
	testutil.MustGrant(t, repo, user, dataset)
	require.NoError(t, repo.CreateMetricRecords(ctx, []db.MetricRecord{{
		DatasetID:   dataset.ID,
		Dimension:   common.DimensionValidity,
		MetricName:  "null_ratio",
		MetricValue: 0.5,
		RecordedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}))
	require.NoError(t, repo.CreateQualityRule(ctx, &db.QualityRule{DatasetID: dataset.ID, Name: "r", SQLQuery: "select 1", IsActive: true}))

	require.NoError(t, repo.DeleteDataset(ctx, dataset.ID))

	ok, err := repo.HasGrant(ctx, user.ID, dataset.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	records, err := repo.ListMetricRecords(ctx, entity.MetricFilter{DatasetID: dataset.ID})
	require.NoError(t, err)
	assert.Empty(t, records)
	rules, err := repo.ListQualityRules(ctx, dataset.ID)
	require.NoError(t, err)
	assert.Empty(t, rules)

	assert.ErrorIs(t, repo.DeleteDataset(ctx, dataset.ID), gorm.ErrRecordNotFound)
}

func TestDeleteUserRemovesGrants(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	user := testutil.MustCreateUser(t, repo, "gone@example.com", false)
	dataset := testutil.MustCreateDataset(t, repo, "kept")
	testutil.MustGrant(t, repo, user, dataset)

	require.NoError(t, repo.DeleteUser(ctx, user.ID))

	ok, err := repo.HasGrant(ctx, user.ID, dataset.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = repo.GetDataset(ctx, dataset.ID)
	assert.NoError(t, err)
}

func TestLatestMetricValueAveragesTies(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	dataset := testutil.MustCreateDataset(t, repo, "latest")
	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	none, err := repo.LatestMetricValue(ctx, dataset.ID, common.DimensionCompleteness)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.CreateMetricRecords(ctx, []db.MetricRecord{
		{DatasetID: dataset.ID, Dimension: common.DimensionCompleteness, MetricName: "a", MetricValue: 10, RecordedAt: t1},
		{DatasetID: dataset.ID, Dimension: common.DimensionCompleteness, MetricName: "a", MetricValue: 80, RecordedAt: t2},
		{DatasetID: dataset.ID, Dimension: common.DimensionCompleteness, MetricName: "b", MetricValue: 90, RecordedAt: t2},
		{DatasetID: dataset.ID, Dimension: common.DimensionTimeliness, MetricName: "c", MetricValue: 1, RecordedAt: t2.Add(time.Hour)},
	}))

	latest, err := repo.LatestMetricValue(ctx, dataset.ID, common.DimensionCompleteness)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.InDelta(t, 85.0, latest.Value, 1e-9)
	assert.True(t, latest.At.Equal(t2), "latest at %v", latest.At)
}

func TestListMetricRecordsFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	dataset := testutil.MustCreateDataset(t, repo, "series")
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateMetricRecords(ctx, []db.MetricRecord{
		{DatasetID: dataset.ID, Dimension: common.DimensionValidity, MetricName: "z", MetricValue: 3, RecordedAt: base.Add(2 * time.Hour)},
		{DatasetID: dataset.ID, Dimension: common.DimensionValidity, MetricName: "a", MetricValue: 2, RecordedAt: base.Add(time.Hour)},
		{DatasetID: dataset.ID, Dimension: common.DimensionValidity, MetricName: "a", MetricValue: 1, RecordedAt: base},
		{DatasetID: dataset.ID, Dimension: common.DimensionAccuracy, MetricName: "a", MetricValue: 9, RecordedAt: base},
	}))

	dim := common.DimensionValidity
	records, err := repo.ListMetricRecords(ctx, entity.MetricFilter{DatasetID: dataset.ID, Dimension: &dim})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []float64{1, 2, 3}, []float64{records[0].MetricValue, records[1].MetricValue, records[2].MetricValue})

	start := base.Add(time.Hour)
	end := base.Add(time.Hour)
	records, err = repo.ListMetricRecords(ctx, entity.MetricFilter{DatasetID: dataset.ID, Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2.0, records[0].MetricValue)

	name := "a"
	records, err = repo.ListMetricRecords(ctx, entity.MetricFilter{DatasetID: dataset.ID, MetricName: &name})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	dataset := testutil.MustCreateDataset(t, repo, "tx")
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.CreateMetricRecords(ctx, []db.MetricRecord{{
			DatasetID: dataset.ID, Dimension: common.DimensionAccuracy, MetricName: "m", MetricValue: 1, RecordedAt: time.Now().UTC(),
		}}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	records, err := repo.ListMetricRecords(ctx, entity.MetricFilter{DatasetID: dataset.ID})
	require.NoError(t, err)
	assert.Empty(t, records)
}
