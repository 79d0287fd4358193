package services

import (
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herry-chi/dashboard-operation-lifex/src/config"
	"github.com/herry-chi/dashboard-operation-lifex/src/database"
	"github.com/herry-chi/dashboard-operation-lifex/src/logger"
	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/query"
)

func setupService(t *testing.T) DashboardService {
	t.Helper()
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{
		DatasetSessionKey: "test-session",
		TreemapViewportW:  800,
		TreemapViewportH:  500,
	}
	require.NoError(t, database.InitDB(t.TempDir()+"/test.db"))
	t.Cleanup(func() { database.DB.Close() })
	return NewDashboardService(database.DB, cache.New(time.Minute, time.Minute))
}

const uploadJSON = `[
	{"deal_id": "1", "deal_name": "Alpha", "broker_name": "Kim", "deal_value": 100, "6. Settled": "2025-03-01"},
	{"deal_id": "2", "deal_name": "Beta", "broker_name": "Lee", "deal_value": 200, "status": "Lost", "lost reason": "pricing"},
	{"deal_id": "3", "deal_name": "Gamma", "broker_name": "Kim", "deal_value": 300, "1. Application": "2025-03-05", "From Rednote?": "Yes"}
]`

func TestProcessUploadAndAggregates(t *testing.T) {
	svc := setupService(t)

	result, err := svc.ProcessUpload("deals.json", strings.NewReader(uploadJSON))
	require.NoError(t, err)
	assert.Equal(t, 3, result.RowCount)
	assert.False(t, result.Truncated)

	meta := svc.Meta()
	assert.True(t, meta.Loaded)
	assert.Equal(t, 3, meta.RowCount)
	assert.Equal(t, "deals.json", meta.SourceFilename)
	assert.Equal(t, []string{"Kim", "Lee"}, meta.Brokers)
	assert.Equal(t, []string{"1. Application", "6. Settled", "Lost"}, meta.Statuses,
		"statuses come out in pipeline order for the dropdown")

	stats := svc.Stats(query.Filter{})
	assert.Equal(t, 3, stats.TotalDeals)
	assert.Equal(t, 1, stats.SettledCount)
	assert.Equal(t, 1, stats.LostDeals)
	assert.Equal(t, 600.0, stats.TotalValue)

	deals := svc.Deals(query.Filter{Broker: "Kim"}, []query.Key{{Field: query.FieldDealValue, Direction: query.Desc}})
	require.Len(t, deals, 2)
	assert.Equal(t, "Gamma", deals[0].Name)

	lost := svc.LostDeals(query.Filter{}, "pricing", nil)
	require.Len(t, lost, 1)
	assert.Equal(t, "Beta", lost[0].Name)
}

func TestStatsIgnoresSourceFilter(t *testing.T) {
	svc := setupService(t)
	_, err := svc.ProcessUpload("deals.json", strings.NewReader(uploadJSON))
	require.NoError(t, err)

	// The deals list narrows by source, the headline cards do not.
	deals := svc.Deals(query.Filter{Source: models.SourceRedNote}, nil)
	assert.Len(t, deals, 1)

	stats := svc.Stats(query.Filter{Source: models.SourceRedNote})
	assert.Equal(t, 3, stats.TotalDeals)
}

func TestUploadReplacesDataset(t *testing.T) {
	svc := setupService(t)
	_, err := svc.ProcessUpload("deals.json", strings.NewReader(uploadJSON))
	require.NoError(t, err)

	_, err = svc.ProcessUpload("other.json", strings.NewReader(`[{"deal_name": "Only"}]`))
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Meta().RowCount, "uploads replace, never merge")
	assert.Equal(t, 1, svc.Stats(query.Filter{}).TotalDeals)
}

func TestSnapshotRestoreAfterRestart(t *testing.T) {
	svc := setupService(t)
	_, err := svc.ProcessUpload("deals.json", strings.NewReader(uploadJSON))
	require.NoError(t, err)

	// A new service over the same database simulates a restart.
	restarted := NewDashboardService(database.DB, cache.New(time.Minute, time.Minute))
	meta := restarted.Meta()
	assert.True(t, meta.Loaded)
	assert.Equal(t, 3, meta.RowCount)
	assert.Equal(t, "deals.json", meta.SourceFilename)
	assert.Equal(t, 3, restarted.Stats(query.Filter{}).TotalDeals)
}

func TestFailedUploadClearsDataset(t *testing.T) {
	svc := setupService(t)
	_, err := svc.ProcessUpload("deals.json", strings.NewReader(uploadJSON))
	require.NoError(t, err)

	_, err = svc.ProcessUpload("broken.json", strings.NewReader(`{"rows": 42}`))
	require.Error(t, err)

	assert.False(t, svc.Meta().Loaded, "a rejected upload never leaves stale data behind")
	assert.Equal(t, 0, svc.Stats(query.Filter{}).TotalDeals)
}

func TestClearDataset(t *testing.T) {
	svc := setupService(t)
	_, err := svc.ProcessUpload("deals.json", strings.NewReader(uploadJSON))
	require.NoError(t, err)

	require.NoError(t, svc.ClearDataset())
	assert.False(t, svc.Meta().Loaded)
	assert.Equal(t, 0, svc.Stats(query.Filter{}).TotalDeals)

	restarted := NewDashboardService(database.DB, cache.New(time.Minute, time.Minute))
	assert.False(t, restarted.Meta().Loaded, "clearing also removes the snapshot")
}

func TestWeeklyAveragesIgnoreFilters(t *testing.T) {
	svc := setupService(t)
	_, err := svc.ProcessUpload("deals.json", strings.NewReader(uploadJSON))
	require.NoError(t, err)

	all := svc.Weekly(query.Filter{}, 0)
	narrowed := svc.Weekly(query.Filter{Broker: "Lee"}, 0)

	assert.NotEqual(t, all.Weeks, narrowed.Weeks, "the week rows do narrow")
	assert.Equal(t, all.Averages, narrowed.Averages,
		"the averages baseline covers the whole dataset regardless of filters")
}

func TestBrokersWeeklyAveragesIgnoreFilters(t *testing.T) {
	svc := setupService(t)
	_, err := svc.ProcessUpload("deals.json", strings.NewReader(uploadJSON))
	require.NoError(t, err)

	all := svc.Brokers(query.Filter{})
	narrowed := svc.Brokers(query.Filter{Broker: "Lee"})

	require.Len(t, narrowed.Brokers, 1, "the broker table does narrow")
	assert.Equal(t, all.WeeklyAverages, narrowed.WeeklyAverages,
		"weekly averages cover the whole dataset regardless of filters")
}

func TestTreemapService(t *testing.T) {
	svc := setupService(t)
	_, err := svc.ProcessUpload("deals.json", strings.NewReader(uploadJSON))
	require.NoError(t, err)

	root := svc.Treemap(query.Filter{}, true, nil)
	require.NotNil(t, root)
	require.Len(t, root.Children, 1, "only the settled deal has treemap value")
	assert.Equal(t, "broker:Kim", root.Children[0].ID)

	zoomed := svc.Treemap(query.Filter{}, true, []string{"broker:Kim"})
	require.NotNil(t, zoomed)
	assert.Equal(t, 800.0, zoomed.Width, "zoom target fills the viewport")

	assert.Nil(t, svc.Treemap(query.Filter{}, true, []string{"broker:Nobody"}))
}
