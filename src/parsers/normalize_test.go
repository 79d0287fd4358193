package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
)

func TestNormalizeRecordDefaults(t *testing.T) {
	row := map[string]any{
		"deal_value": "1,234.56",
		"status":     "",
	}
	d := normalizeRecord(row, 3)

	assert.Equal(t, "row_3", d.ID)
	assert.Equal(t, "Deal 3", d.Name, "rows with data but no name get a placeholder")
	assert.Equal(t, "Unknown Broker", d.BrokerName)
	assert.Equal(t, models.StatusUnknown, d.Status)
	assert.Equal(t, 1234.56, d.Value)
}

func TestNormalizeRecordsDropsEmptyRows(t *testing.T) {
	rows := []map[string]any{
		{"deal_name": "Keep Me", "deal_value": 10.0},
		{},
		{"deal_name": "   ", "deal_value": nil, "status": ""},
	}
	deals := normalizeRecords(rows)
	require.Len(t, deals, 1)
	assert.Equal(t, "Keep Me", deals[0].Name)
}

func TestNormalizeRecordDates(t *testing.T) {
	row := map[string]any{
		"deal_name":      "Dates",
		"created_time":   "2025/03/10",
		"1. Application": "2025-03-11",
		"latest_date":    "definitely not a date",
	}
	d := normalizeRecord(row, 1)

	assert.Contains(t, d.CreatedTime, "2025-03-10", "recognized dates normalize to RFC3339")
	assert.Contains(t, d.ApplicationDate, "2025-03-11")
	assert.Equal(t, "definitely not a date", d.LatestDate, "unrecognized values kept verbatim")
	assert.True(t, d.StageReached(models.StageApplication))
}

func TestNormalizeRecordProcessDays(t *testing.T) {
	d := normalizeRecord(map[string]any{"deal_name": "A", "process days": 12.0}, 1)
	require.NotNil(t, d.ProcessDays)
	assert.Equal(t, 12.0, *d.ProcessDays)

	d = normalizeRecord(map[string]any{"deal_name": "B", "process days": "n/a"}, 2)
	assert.Nil(t, d.ProcessDays, "unparseable stays absent rather than becoming zero")

	d = normalizeRecord(map[string]any{"deal_name": "C"}, 3)
	assert.Nil(t, d.ProcessDays)
}

func TestCoerceNumber(t *testing.T) {
	assert.Equal(t, 1200.5, coerceNumber("$1,200.50"))
	assert.Equal(t, -45.0, coerceNumber("-45"))
	assert.Equal(t, 0.0, coerceNumber("free"))
	assert.Equal(t, 0.0, coerceNumber(nil))
	assert.Equal(t, 99.0, coerceNumber(99.0))
}
