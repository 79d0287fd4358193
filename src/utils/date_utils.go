package utils

import (
	"strings"
	"time"
)

// Layouts tried in order when coercing free-form date cells. Spreadsheet
// exports mix ISO timestamps, plain dates and the odd slash format.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"1/2/2006 15:04",
	"1/2/2006",
	"02-01-2006",
}

// ParseFlexibleDate parses a date string against the known layouts.
// Returns the zero time and false when nothing matches.
func ParseFlexibleDate(dateStr string) (time.Time, bool) {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CalendarDay formats a time as its local YYYY-MM-DD calendar day.
func CalendarDay(t time.Time) string {
	return t.Format("2006-01-02")
}

// DayOf parses a date string and reduces it to a local calendar day.
func DayOf(dateStr string) (string, bool) {
	t, ok := ParseFlexibleDate(dateStr)
	if !ok {
		return "", false
	}
	return CalendarDay(t), true
}

// InDayRange reports whether a YYYY-MM-DD day falls inside an inclusive
// [start, end] range. Empty bounds are open. Calendar-day strings compare
// correctly as plain strings, which sidesteps timezone-boundary issues.
func InDayRange(day, startDate, endDate string) bool {
	if startDate != "" && day < startDate {
		return false
	}
	if endDate != "" && day > endDate {
		return false
	}
	return true
}

// WeekStart returns the Monday-aligned start of the local calendar week
// containing t.
func WeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	diff := 1 - weekday
	if weekday == 0 { // Sunday
		diff = -6
	}
	monday := t.AddDate(0, 0, diff)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.Local)
}

// WeekOf reduces a date string to the YYYY-MM-DD Monday of its week.
func WeekOf(dateStr string) (string, bool) {
	t, ok := ParseFlexibleDate(dateStr)
	if !ok {
		return "", false
	}
	return CalendarDay(WeekStart(t)), true
}

// CurrentWeekRange returns the Monday and Sunday of the current local week.
func CurrentWeekRange(now time.Time) (string, string) {
	monday := WeekStart(now)
	sunday := monday.AddDate(0, 0, 6)
	return CalendarDay(monday), CalendarDay(sunday)
}

// ShiftWeekRange moves an existing [start, end] week window by the given
// number of weeks. An empty window snaps to the current week instead.
func ShiftWeekRange(startDate, endDate string, weeks int, now time.Time) (string, string) {
	if startDate == "" || endDate == "" {
		return CurrentWeekRange(now)
	}
	start, ok := ParseFlexibleDate(startDate)
	if !ok {
		return CurrentWeekRange(now)
	}
	newStart := start.AddDate(0, 0, 7*weeks)
	newEnd := newStart.AddDate(0, 0, 6)
	return CalendarDay(newStart), CalendarDay(newEnd)
}
