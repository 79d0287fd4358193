package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlexibleDate(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2025-03-10", "2025-03-10", true},
		{"2025-03-10T14:30:00Z", "2025-03-10", true},
		{"2025-03-10 14:30:00", "2025-03-10", true},
		{"2025/03/10", "2025-03-10", true},
		{"  2025-03-10  ", "2025-03-10", true},
		{"", "", false},
		{"not a date", "", false},
	}
	for _, tc := range cases {
		parsed, ok := ParseFlexibleDate(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		if tc.ok {
			assert.Equal(t, tc.want, CalendarDay(parsed), "input %q", tc.input)
		}
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	// 2025-03-12 is a Wednesday, its week starts Monday 2025-03-10.
	wed := time.Date(2025, 3, 12, 17, 45, 0, 0, time.Local)
	assert.Equal(t, "2025-03-10", CalendarDay(WeekStart(wed)))

	// Sunday belongs to the week that started six days earlier.
	sun := time.Date(2025, 3, 16, 1, 0, 0, 0, time.Local)
	assert.Equal(t, "2025-03-10", CalendarDay(WeekStart(sun)))

	// A Monday is its own week start.
	mon := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "2025-03-10", CalendarDay(WeekStart(mon)))
}

func TestWeekOf(t *testing.T) {
	week, ok := WeekOf("2025-03-12T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, "2025-03-10", week)

	_, ok = WeekOf("garbage")
	assert.False(t, ok)
}

func TestInDayRange(t *testing.T) {
	assert.True(t, InDayRange("2025-03-10", "2025-03-01", "2025-03-31"))
	assert.True(t, InDayRange("2025-03-01", "2025-03-01", "2025-03-31"), "start bound is inclusive")
	assert.True(t, InDayRange("2025-03-31", "2025-03-01", "2025-03-31"), "end bound is inclusive")
	assert.False(t, InDayRange("2025-02-28", "2025-03-01", "2025-03-31"))
	assert.False(t, InDayRange("2025-04-01", "2025-03-01", "2025-03-31"))
	assert.True(t, InDayRange("2025-03-10", "", ""), "open range admits everything")
	assert.True(t, InDayRange("2025-03-10", "2025-03-01", ""), "open end")
	assert.False(t, InDayRange("2025-03-10", "", "2025-03-05"), "open start still checks end")
}

func TestCurrentWeekRange(t *testing.T) {
	now := time.Date(2025, 3, 13, 12, 0, 0, 0, time.Local)
	start, end := CurrentWeekRange(now)
	assert.Equal(t, "2025-03-10", start)
	assert.Equal(t, "2025-03-16", end)
}

func TestShiftWeekRange(t *testing.T) {
	now := time.Date(2025, 3, 13, 12, 0, 0, 0, time.Local)

	start, end := ShiftWeekRange("2025-03-10", "2025-03-16", -1, now)
	assert.Equal(t, "2025-03-03", start)
	assert.Equal(t, "2025-03-09", end)

	start, end = ShiftWeekRange("2025-03-10", "2025-03-16", 2, now)
	assert.Equal(t, "2025-03-24", start)
	assert.Equal(t, "2025-03-30", end)

	// Empty window snaps to the current week.
	start, end = ShiftWeekRange("", "", 1, now)
	assert.Equal(t, "2025-03-10", start)
	assert.Equal(t, "2025-03-16", end)
}
