package processors

import (
	"sort"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/utils"
)

// NewDealsOutcome is the four-way split of a new-deal cohort. The buckets
// are mutually exclusive and cover every deal: lost wins over everything,
// settled next, then converted-but-open, and the rest are still early.
type NewDealsOutcome struct {
	Settled   int `json:"settled"`
	Lost      int `json:"lost"`
	InFunnel  int `json:"inFunnel"`
	EarlyOnly int `json:"earlyOnly"`
}

// CountEntry is a generic name-count pair used by the distributions.
type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CrossTabEntry is one row of a two-dimensional breakdown.
type CrossTabEntry struct {
	Name    string       `json:"name"`
	Total   int          `json:"total"`
	Entries []CountEntry `json:"entries"`
}

// NewDealsReport summarizes deals created inside a chosen window.
type NewDealsReport struct {
	Total          int     `json:"total"`
	TotalValue     float64 `json:"totalValue"`
	WithValue      int     `json:"withValue"`
	WithoutValue   int     `json:"withoutValue"`
	AverageValue   float64 `json:"averageValue"`
	Converted      int     `json:"converted"`
	ConversionRate string  `json:"conversionRate"`

	Outcome          NewDealsOutcome `json:"outcome"`
	OutcomeWithValue NewDealsOutcome `json:"outcomeWithValue"`

	ByStatus []CountEntry `json:"byStatus"`
	ByBroker []CountEntry `json:"byBroker"`
	BySource []CountEntry `json:"bySource"`

	SourceByBroker []CrossTabEntry `json:"sourceByBroker"`
	BrokerBySource []CrossTabEntry `json:"brokerBySource"`
}

// ComputeNewDealsReport aggregates a cohort of new deals. Callers filter
// by created time first; this only aggregates what it is handed.
func ComputeNewDealsReport(deals []models.Deal) NewDealsReport {
	report := NewDealsReport{Total: len(deals)}

	statusCounts := make(map[string]int)
	brokerCounts := make(map[string]int)
	sourceCounts := make(map[string]int)
	sourceByBroker := make(map[string]map[string]int)
	brokerBySource := make(map[string]map[string]int)

	for i := range deals {
		d := &deals[i]
		report.TotalValue += d.Value
		if d.Value > 0 {
			report.WithValue++
		} else {
			report.WithoutValue++
		}
		if d.IsConverted() {
			report.Converted++
		}

		bucket(&report.Outcome, d)
		if d.Value > 0 {
			bucket(&report.OutcomeWithValue, d)
		}

		statusCounts[d.DisplayStatus()]++
		brokerCounts[d.BrokerName]++
		source := d.LeadSource()
		sourceCounts[source]++
		bumpCrossTab(sourceByBroker, d.BrokerName, source)
		bumpCrossTab(brokerBySource, source, d.BrokerName)
	}

	if report.WithValue > 0 {
		report.AverageValue = utils.RoundFloat(report.TotalValue/float64(report.WithValue), 2)
	}
	report.ConversionRate = utils.FormatRate(report.Converted, report.Total)

	report.ByStatus = statusEntries(statusCounts)
	report.ByBroker = sortedEntries(brokerCounts)
	report.BySource = sortedEntries(sourceCounts)
	report.SourceByBroker = crossTabEntries(sourceByBroker)
	report.BrokerBySource = crossTabEntries(brokerBySource)
	return report
}

func bucket(o *NewDealsOutcome, d *models.Deal) {
	switch {
	case d.IsLost():
		o.Lost++
	case d.IsSettled():
		o.Settled++
	case d.IsConverted():
		o.InFunnel++
	default:
		o.EarlyOnly++
	}
}

func bumpCrossTab(tab map[string]map[string]int, outer, inner string) {
	row, ok := tab[outer]
	if !ok {
		row = make(map[string]int)
		tab[outer] = row
	}
	row[inner]++
}

// statusEntries orders statuses by pipeline rank so the distribution
// reads top of funnel first.
func statusEntries(counts map[string]int) []CountEntry {
	out := make([]CountEntry, 0, len(counts))
	for name, count := range counts {
		out = append(out, CountEntry{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if ra, rb := models.StageRank(out[i].Name), models.StageRank(out[j].Name); ra != rb {
			return ra < rb
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortedEntries(counts map[string]int) []CountEntry {
	out := make([]CountEntry, 0, len(counts))
	for name, count := range counts {
		out = append(out, CountEntry{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func crossTabEntries(tab map[string]map[string]int) []CrossTabEntry {
	out := make([]CrossTabEntry, 0, len(tab))
	for name, row := range tab {
		entry := CrossTabEntry{Name: name, Entries: sortedEntries(row)}
		for _, e := range entry.Entries {
			entry.Total += e.Count
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}
