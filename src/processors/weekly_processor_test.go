package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
)

// dealsForWeek makes n deals created on the Monday of the given week.
func dealsForWeek(monday string, n, converted int) []models.Deal {
	deals := make([]models.Deal, 0, n)
	for i := 0; i < n; i++ {
		d := models.Deal{CreatedTime: monday, Value: 10}
		if i < converted {
			d.ApplicationDate = monday
		}
		deals = append(deals, d)
	}
	return deals
}

func TestComputeWeeklyStatsChanges(t *testing.T) {
	var deals []models.Deal
	deals = append(deals, dealsForWeek("2025-03-03", 5, 2)...)
	deals = append(deals, dealsForWeek("2025-03-10", 10, 5)...)

	stats := ComputeWeeklyStats(deals)
	require.Len(t, stats, 2)

	// Newest week first.
	latest := stats[0]
	assert.Equal(t, "2025-03-10", latest.WeekStart)
	assert.Equal(t, 10, latest.Total)
	require.NotNil(t, latest.TotalChange)
	assert.Equal(t, 100.0, *latest.TotalChange, "5 to 10 is +100%")

	require.NotNil(t, latest.ConversionRateChange)
	assert.Equal(t, 10.0, *latest.ConversionRateChange, "40% to 50% is +10 points, not +25%")

	oldest := stats[1]
	assert.Nil(t, oldest.TotalChange, "first week has nothing to compare against")
}

func TestComputeWeeklyStatsDropToZero(t *testing.T) {
	var deals []models.Deal
	deals = append(deals, dealsForWeek("2025-03-03", 5, 5)...)
	deals = append(deals, dealsForWeek("2025-03-10", 3, 0)...)

	stats := ComputeWeeklyStats(deals)
	require.Len(t, stats, 2)

	latest := stats[0]
	require.NotNil(t, latest.ConvertedChange)
	assert.Equal(t, -100.0, *latest.ConvertedChange, "5 to 0 is exactly -100")
}

func TestComputeWeeklyStatsNoBaseline(t *testing.T) {
	var deals []models.Deal
	deals = append(deals, dealsForWeek("2025-03-03", 4, 0)...)
	deals = append(deals, dealsForWeek("2025-03-10", 4, 2)...)

	stats := ComputeWeeklyStats(deals)
	require.Len(t, stats, 2)

	latest := stats[0]
	assert.Nil(t, latest.ConvertedChange, "0 to positive has no percentage baseline")
	require.NotNil(t, latest.TotalChange)
	assert.Equal(t, 0.0, *latest.TotalChange, "4 to 4 is flat")
}

func TestComputeWeeklyStatsSkipsDatelessDeals(t *testing.T) {
	deals := []models.Deal{
		{CreatedTime: "2025-03-03"},
		{CreatedTime: "nonsense"},
		{},
	}
	stats := ComputeWeeklyStats(deals)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].Total)
}

func TestComputeWeeklyStatsUsesReferenceDate(t *testing.T) {
	deals := []models.Deal{
		// Activity in a later week than creation; the activity week wins.
		{CreatedTime: "2025-03-03", LatestDate: "2025-03-12"},
	}
	stats := ComputeWeeklyStats(deals)
	require.Len(t, stats, 1)
	assert.Equal(t, "2025-03-10", stats[0].WeekStart)
}

func TestComputeWeeklyAverages(t *testing.T) {
	var deals []models.Deal
	deals = append(deals, dealsForWeek("2024-12-02", 6, 3)...)
	deals = append(deals, dealsForWeek("2025-03-03", 4, 2)...)
	deals = append(deals, dealsForWeek("2025-03-10", 8, 2)...)

	stats := ComputeWeeklyStats(deals)

	all := ComputeWeeklyAverages(stats, 0)
	assert.Equal(t, 3, all.Weeks)
	assert.Equal(t, 6.0, all.AvgTotal)

	y2025 := ComputeWeeklyAverages(stats, 2025)
	assert.Equal(t, 2, y2025.Weeks)
	assert.Equal(t, 6.0, y2025.AvgTotal)
	// Week rates are 50.0 (2/4) and 25.0 (2/8); each week weighs the
	// same, so the average is 37.5 rather than the pooled 4/12.
	assert.Equal(t, 37.5, y2025.ConversionRate)

	empty := ComputeWeeklyAverages(stats, 2020)
	assert.Equal(t, 0, empty.Weeks)
	assert.Equal(t, 0.0, empty.AvgTotal)
}
