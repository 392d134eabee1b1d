package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"dqdash/internal/entity/common"
	"dqdash/internal/entity/dto"
	"dqdash/internal/storage"
	"dqdash/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSnapshotWritesDocument(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	viewer := testutil.MustCreateUser(t, repo, "viewer@example.com", false)
	dataset := testutil.MustCreateDataset(t, repo, "sample")
	testutil.MustGrant(t, repo, viewer, dataset)

	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	metrics := NewMetricService(repo, nil)
	svc := NewExportService(repo, metrics, store)
	svc.now = func() time.Time { return time.Date(2024, 9, 1, 10, 0, 0, 500, time.UTC) }

	at := time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC)
	_, err = metrics.Ingest(ctx, viewer, []dto.MetricRecordCreate{
		metricItem(dataset.ID, common.DimensionValidity, "valid_ratio", 0.8, &at),
	})
	require.NoError(t, err)

	res, err := svc.ExportSnapshot(ctx, viewer, dataset.ID)
	require.NoError(t, err)
	wantKey := "exports/" + strconv.Itoa(int(dataset.ID)) + "/2024/09/01/sample-1725184800.json"
	assert.Equal(t, wantKey, res.Key)
	assert.Equal(t, dataset.ID, ExportDatasetID(res.Key))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(res.Key)))
	require.NoError(t, err)
	var snapshot dto.DatasetSnapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, "sample", snapshot.Dataset.Key)
	assert.Len(t, snapshot.Summary, 5)
	require.Len(t, snapshot.Series, 1)
	assert.Equal(t, "valid_ratio", snapshot.Series[0].MetricName)
}

func TestExportSnapshotRequiresAccess(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewRepository(t)
	viewer := testutil.MustCreateUser(t, repo, "viewer@example.com", false)
	admin := testutil.MustCreateUser(t, repo, "admin@example.com", true)
	dataset := testutil.MustCreateDataset(t, repo, "sample")
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewExportService(repo, NewMetricService(repo, nil), store)

	_, err = svc.ExportSnapshot(ctx, viewer, dataset.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ExportSnapshot(ctx, admin, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportDatasetID(t *testing.T) {
	assert.Equal(t, uint(7), ExportDatasetID("exports/7/2024/01/01/k-1.json"))
	assert.Zero(t, ExportDatasetID("exports/abc/2024/01/01/k-1.json"))
	assert.Zero(t, ExportDatasetID("other/7/2024/01/01/k-1.json"))
}
