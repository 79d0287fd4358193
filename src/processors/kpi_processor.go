package processors

import (
	"sort"
	"strings"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/utils"
)

// KPIStats are the headline figures shown on the dashboard cards.
// Rates are pre-formatted one-decimal percentage strings so every client
// renders them identically.
type KPIStats struct {
	TotalDeals     int     `json:"totalDeals"`
	SettledCount   int     `json:"settledCount"`
	SettledRate    string  `json:"settledRate"`
	ConvertedCount int     `json:"convertedCount"`
	ConversionRate string  `json:"conversionRate"`
	LostDeals      int     `json:"lostDeals"`
	TotalValue     float64 `json:"totalValue"`
	SettledValue   float64 `json:"settledValue"`
}

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// LeadSourceStats summarizes one acquisition channel.
type LeadSourceStats struct {
	Source         string  `json:"source"`
	Total          int     `json:"total"`
	Converted      int     `json:"converted"`
	ConversionRate string  `json:"conversionRate"`
	Settled        int     `json:"settled"`
	SettledRate    string  `json:"settledRate"`
	Value          float64 `json:"value"`
}

// ComputeKPIs aggregates the headline figures over a deal set.
func ComputeKPIs(deals []models.Deal) KPIStats {
	stats := KPIStats{TotalDeals: len(deals)}
	for i := range deals {
		d := &deals[i]
		stats.TotalValue += d.Value
		if d.IsLost() {
			stats.LostDeals++
		}
		if d.IsConverted() {
			stats.ConvertedCount++
		}
		if d.IsSettled() {
			stats.SettledCount++
			stats.SettledValue += d.Value
		}
	}
	stats.SettledRate = utils.FormatRate(stats.SettledCount, stats.TotalDeals)
	stats.ConversionRate = utils.FormatRate(stats.ConvertedCount, stats.TotalDeals)
	return stats
}

// ComputeStatusCounts tallies deals by display status. Pipeline stages
// come out in process order with Lost at the end, zero-count statuses are
// skipped, and statuses outside the canonical set follow alphabetically.
func ComputeStatusCounts(deals []models.Deal) []StatusCount {
	counts := make(map[string]int)
	for i := range deals {
		counts[deals[i].DisplayStatus()]++
	}

	out := make([]StatusCount, 0, len(counts))
	for _, stage := range models.PipelineStages {
		if c := counts[stage]; c > 0 {
			out = append(out, StatusCount{Status: stage, Count: c})
			delete(counts, stage)
		}
	}
	if c := counts[models.StatusLost]; c > 0 {
		out = append(out, StatusCount{Status: models.StatusLost, Count: c})
		delete(counts, models.StatusLost)
	}

	rest := make([]StatusCount, 0, len(counts))
	for status, c := range counts {
		rest = append(rest, StatusCount{Status: status, Count: c})
	}
	sort.Slice(rest, func(i, j int) bool {
		return strings.ToLower(rest[i].Status) < strings.ToLower(rest[j].Status)
	})
	return append(out, rest...)
}

// ComputeLeadSources breaks conversion and settlement down by acquisition
// channel, sorted by deal count descending with name as tiebreak.
func ComputeLeadSources(deals []models.Deal) []LeadSourceStats {
	bySource := make(map[string]*LeadSourceStats)
	for i := range deals {
		d := &deals[i]
		source := d.LeadSource()
		s, ok := bySource[source]
		if !ok {
			s = &LeadSourceStats{Source: source}
			bySource[source] = s
		}
		s.Total++
		s.Value += d.Value
		if d.IsConverted() {
			s.Converted++
		}
		if d.IsSettled() {
			s.Settled++
		}
	}

	out := make([]LeadSourceStats, 0, len(bySource))
	for _, s := range bySource {
		s.ConversionRate = utils.FormatRate(s.Converted, s.Total)
		s.SettledRate = utils.FormatRate(s.Settled, s.Total)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Source < out[j].Source
	})
	return out
}
