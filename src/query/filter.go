package query

import (
	"strings"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/utils"
)

// DateReference selects which date column a date-bounded filter tests.
type DateReference string

const (
	// RefActivity uses the latest-activity date, falling back to the
	// settled date then the created time.
	RefActivity DateReference = "activity"
	// RefCreated uses the created time only.
	RefCreated DateReference = "created"
)

// Filter holds the dashboard's deal filters. Zero values mean "no
// restriction" for every field.
type Filter struct {
	Search    string
	Status    string
	Broker    string
	Source    string
	StartDate string
	EndDate   string
	DateRef   DateReference
}

// IsZero reports whether the filter restricts nothing.
func (f Filter) IsZero() bool {
	return f.Search == "" && f.Status == "" && f.Broker == "" &&
		f.Source == "" && f.StartDate == "" && f.EndDate == ""
}

// Apply returns the deals matching every set condition, preserving input
// order. The input slice is never mutated.
func (f Filter) Apply(deals []models.Deal) []models.Deal {
	if f.IsZero() {
		out := make([]models.Deal, len(deals))
		copy(out, deals)
		return out
	}

	out := make([]models.Deal, 0, len(deals))
	for i := range deals {
		if f.Matches(&deals[i]) {
			out = append(out, deals[i])
		}
	}
	return out
}

// Matches reports whether a single deal passes every set condition.
func (f Filter) Matches(d *models.Deal) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(d.Name), needle) &&
			!strings.Contains(strings.ToLower(d.BrokerName), needle) {
			return false
		}
	}
	if f.Status != "" && d.DisplayStatus() != f.Status {
		return false
	}
	if f.Broker != "" && d.BrokerName != f.Broker {
		return false
	}
	if f.Source != "" && d.LeadSource() != f.Source {
		return false
	}
	if f.StartDate != "" || f.EndDate != "" {
		ref := d.ReferenceDate()
		if f.DateRef == RefCreated {
			ref = strings.TrimSpace(d.CreatedTime)
		}
		day, ok := utils.DayOf(ref)
		if !ok {
			// No usable date means the deal cannot prove it is in range.
			return false
		}
		if !utils.InDayRange(day, f.StartDate, f.EndDate) {
			return false
		}
	}
	return true
}

// WithoutSource returns a copy of the filter with the lead-source
// condition cleared. Headline KPI figures ignore the source filter so the
// cards stay comparable while the charts narrow down.
func (f Filter) WithoutSource() Filter {
	f.Source = ""
	return f
}
