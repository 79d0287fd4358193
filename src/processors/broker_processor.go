package processors

import (
	"sort"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/utils"
)

// SourceBreakdown is a broker's figures restricted to one lead source.
type SourceBreakdown struct {
	Total               int     `json:"total"`
	Converted           int     `json:"converted"`
	ConversionRate      string  `json:"conversionRate"`
	Settled             int     `json:"settled"`
	SettledRate         string  `json:"settledRate"`
	Value               float64 `json:"value"`
	Lost                int     `json:"lost"`
	InProgress          int     `json:"inProgress"`
	InProgressConverted int     `json:"inProgressConverted"`
}

// BrokerStats summarizes one broker's book, with optional per-source
// sub-breakdowns present only when that source contributed deals.
type BrokerStats struct {
	Name                string           `json:"name"`
	Total               int              `json:"total"`
	Converted           int              `json:"converted"`
	ConversionRate      string           `json:"conversionRate"`
	Settled             int              `json:"settled"`
	SettledRate         string           `json:"settledRate"`
	Value               float64          `json:"value"`
	Lost                int              `json:"lost"`
	InProgress          int              `json:"inProgress"`
	InProgressConverted int              `json:"inProgressConverted"`
	RedNote             *SourceBreakdown `json:"redNote,omitempty"`
	LifeX               *SourceBreakdown `json:"lifeX,omitempty"`
	Referral            *SourceBreakdown `json:"referral,omitempty"`
}

// BrokerWeeklyAverage is a broker's mean deal intake per week. Weeks is
// the dataset-wide number of distinct activity weeks, shared by every
// broker.
type BrokerWeeklyAverage struct {
	Name       string  `json:"name"`
	TotalDeals int     `json:"totalDeals"`
	Weeks      int     `json:"weeks"`
	Average    float64 `json:"average"`
}

type brokerAccumulator struct {
	stats    BrokerStats
	bySource map[string]*SourceBreakdown
}

func (a *brokerAccumulator) add(d *models.Deal) {
	source := d.LeadSource()
	sb, ok := a.bySource[source]
	if !ok {
		sb = &SourceBreakdown{}
		a.bySource[source] = sb
	}

	a.stats.Total++
	sb.Total++
	a.stats.Value += d.Value
	sb.Value += d.Value

	converted := d.IsConverted()
	if converted {
		a.stats.Converted++
		sb.Converted++
	}
	switch {
	case d.IsLost():
		a.stats.Lost++
		sb.Lost++
	case d.IsSettled():
		a.stats.Settled++
		sb.Settled++
	default:
		a.stats.InProgress++
		sb.InProgress++
		if converted {
			a.stats.InProgressConverted++
			sb.InProgressConverted++
		}
	}
}

// ComputeBrokerStats aggregates deals per broker, sorted by total value
// descending with name as tiebreak.
func ComputeBrokerStats(deals []models.Deal) []BrokerStats {
	byBroker := make(map[string]*brokerAccumulator)
	for i := range deals {
		d := &deals[i]
		acc, ok := byBroker[d.BrokerName]
		if !ok {
			acc = &brokerAccumulator{
				stats:    BrokerStats{Name: d.BrokerName},
				bySource: make(map[string]*SourceBreakdown),
			}
			byBroker[d.BrokerName] = acc
		}
		acc.add(d)
	}

	out := make([]BrokerStats, 0, len(byBroker))
	for _, acc := range byBroker {
		s := acc.stats
		s.ConversionRate = utils.FormatRate(s.Converted, s.Total)
		s.SettledRate = utils.FormatRate(s.Settled, s.Total)
		s.RedNote = finishBreakdown(acc.bySource[models.SourceRedNote])
		s.LifeX = finishBreakdown(acc.bySource[models.SourceLifeX])
		s.Referral = finishBreakdown(acc.bySource[models.SourceReferral])
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func finishBreakdown(sb *SourceBreakdown) *SourceBreakdown {
	if sb == nil || sb.Total == 0 {
		return nil
	}
	sb.ConversionRate = utils.FormatRate(sb.Converted, sb.Total)
	sb.SettledRate = utils.FormatRate(sb.Settled, sb.Total)
	return sb
}

// ComputeBrokerWeeklyAverages divides each broker's deal total by the
// number of distinct Monday-aligned weeks seen across the whole dataset,
// judged by latest-activity date. The divisor is global, so a broker idle
// for some weeks still averages over all of them.
func ComputeBrokerWeeklyAverages(deals []models.Deal) []BrokerWeeklyAverage {
	totals := make(map[string]int)
	weeks := make(map[string]struct{})
	for i := range deals {
		d := &deals[i]
		totals[d.BrokerName]++
		if week, ok := utils.WeekOf(d.LatestDate); ok {
			weeks[week] = struct{}{}
		}
	}

	out := make([]BrokerWeeklyAverage, 0, len(totals))
	for name, total := range totals {
		avg := BrokerWeeklyAverage{Name: name, TotalDeals: total, Weeks: len(weeks)}
		if avg.Weeks > 0 {
			avg.Average = utils.RoundFloat(float64(total)/float64(avg.Weeks), 2)
		}
		out = append(out, avg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalDeals != out[j].TotalDeals {
			return out[i].TotalDeals > out[j].TotalDeals
		}
		return out[i].Name < out[j].Name
	})
	return out
}
