package processors

import (
	"sort"
	"strconv"
	"strings"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/utils"
)

// WeeklyStat is one Monday-aligned week of intake figures plus the
// deltas against the week before. Change pointers are nil when the
// previous week offers no baseline (zero going to a positive count),
// matching how the dashboard hides those arrows.
type WeeklyStat struct {
	WeekStart      string  `json:"weekStart"`
	Total          int     `json:"total"`
	Converted      int     `json:"converted"`
	ConversionRate float64 `json:"conversionRate"`
	Settled        int     `json:"settled"`
	SettledRate    float64 `json:"settledRate"`
	Value          float64 `json:"value"`

	TotalChange          *float64 `json:"totalChange,omitempty"`
	ConvertedChange      *float64 `json:"convertedChange,omitempty"`
	ConversionRateChange *float64 `json:"conversionRateChange,omitempty"`
	SettledChange        *float64 `json:"settledChange,omitempty"`
	SettledRateChange    *float64 `json:"settledRateChange,omitempty"`
	ValueChange          *float64 `json:"valueChange,omitempty"`
}

// WeeklyAverages are the per-week means over a set of weekly stats.
type WeeklyAverages struct {
	Year           int     `json:"year,omitempty"`
	Weeks          int     `json:"weeks"`
	AvgTotal       float64 `json:"avgTotal"`
	AvgConverted   float64 `json:"avgConverted"`
	AvgSettled     float64 `json:"avgSettled"`
	AvgValue       float64 `json:"avgValue"`
	ConversionRate float64 `json:"conversionRate"`
	SettledRate    float64 `json:"settledRate"`
}

// calculateChange is the percentage delta between consecutive weeks.
// A zero previous with positive current has no baseline and yields nil.
// A positive previous dropping to zero is exactly -100.
func calculateChange(current, previous float64) *float64 {
	if previous == 0 {
		if current > 0 {
			return nil
		}
		zero := 0.0
		return &zero
	}
	if current == 0 {
		v := -100.0
		return &v
	}
	v := utils.RoundFloat((current-previous)/previous*100, 1)
	return &v
}

// pointDelta is the rate comparison. Rates compare as point differences,
// not relative percentages, so 40% to 50% reads as +10.0.
func pointDelta(current, previous float64) *float64 {
	v := utils.RoundFloat(current-previous, 1)
	return &v
}

// ComputeWeeklyStats buckets deals into Monday-aligned weeks by their
// reference date and computes week-over-week deltas. Weeks come back
// newest first. Deals without a parseable reference date are skipped.
func ComputeWeeklyStats(deals []models.Deal) []WeeklyStat {
	byWeek := make(map[string]*WeeklyStat)
	for i := range deals {
		d := &deals[i]
		week, ok := utils.WeekOf(d.ReferenceDate())
		if !ok {
			continue
		}
		w, exists := byWeek[week]
		if !exists {
			w = &WeeklyStat{WeekStart: week}
			byWeek[week] = w
		}
		w.Total++
		w.Value += d.Value
		if d.IsConverted() {
			w.Converted++
		}
		if d.IsSettled() {
			w.Settled++
		}
	}

	weeks := make([]*WeeklyStat, 0, len(byWeek))
	for _, w := range byWeek {
		w.ConversionRate = utils.RoundFloat(utils.Rate(w.Converted, w.Total), 1)
		w.SettledRate = utils.RoundFloat(utils.Rate(w.Settled, w.Total), 1)
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekStart < weeks[j].WeekStart })

	for i := 1; i < len(weeks); i++ {
		cur, prev := weeks[i], weeks[i-1]
		cur.TotalChange = calculateChange(float64(cur.Total), float64(prev.Total))
		cur.ConvertedChange = calculateChange(float64(cur.Converted), float64(prev.Converted))
		cur.SettledChange = calculateChange(float64(cur.Settled), float64(prev.Settled))
		cur.ValueChange = calculateChange(cur.Value, prev.Value)
		cur.ConversionRateChange = pointDelta(cur.ConversionRate, prev.ConversionRate)
		cur.SettledRateChange = pointDelta(cur.SettledRate, prev.SettledRate)
	}

	out := make([]WeeklyStat, 0, len(weeks))
	for i := len(weeks) - 1; i >= 0; i-- {
		out = append(out, *weeks[i])
	}
	return out
}

// ComputeWeeklyAverages averages the weekly stats, optionally restricted
// to weeks starting in one calendar year (0 means all years). Rates are
// the mean of the week-level rates, so every week weighs the same
// regardless of how many deals it carried.
func ComputeWeeklyAverages(stats []WeeklyStat, year int) WeeklyAverages {
	avg := WeeklyAverages{Year: year}
	var totalDeals, totalConverted, totalSettled int
	var totalValue, conversionRateSum, settledRateSum float64
	for i := range stats {
		if year != 0 && !weekInYear(stats[i].WeekStart, year) {
			continue
		}
		avg.Weeks++
		totalDeals += stats[i].Total
		totalConverted += stats[i].Converted
		totalSettled += stats[i].Settled
		totalValue += stats[i].Value
		conversionRateSum += stats[i].ConversionRate
		settledRateSum += stats[i].SettledRate
	}
	if avg.Weeks == 0 {
		return avg
	}
	n := float64(avg.Weeks)
	avg.AvgTotal = utils.RoundFloat(float64(totalDeals)/n, 1)
	avg.AvgConverted = utils.RoundFloat(float64(totalConverted)/n, 1)
	avg.AvgSettled = utils.RoundFloat(float64(totalSettled)/n, 1)
	avg.AvgValue = utils.RoundFloat(totalValue/n, 2)
	avg.ConversionRate = utils.RoundFloat(conversionRateSum/n, 1)
	avg.SettledRate = utils.RoundFloat(settledRateSum/n, 1)
	return avg
}

func weekInYear(weekStart string, year int) bool {
	y, _, ok := strings.Cut(weekStart, "-")
	if !ok {
		return false
	}
	parsed, err := strconv.Atoi(y)
	return err == nil && parsed == year
}
