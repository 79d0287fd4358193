package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
)

func sampleDeals() []models.Deal {
	return []models.Deal{
		{ID: "1", Name: "Harbour Refinance", BrokerName: "Kim", Status: "Opportunity",
			OpportunityDate: "2025-01-05", LatestDate: "2025-01-20", CreatedTime: "2025-01-01",
			FromRednote: "Yes"},
		{ID: "2", Name: "City Apartment", BrokerName: "Lee", Status: "Lost",
			ApplicationDate: "2025-02-01", LatestDate: "2025-02-10", CreatedTime: "2025-01-15",
			LostReason: "rate too high"},
		{ID: "3", Name: "Harbour Extension", BrokerName: "Kim",
			SettledDate: "2025-03-01", LatestDate: "2025-03-01", CreatedTime: "2025-02-01",
			FromLifeX: "Yes"},
		{ID: "4", Name: "Rural Block", BrokerName: "Lee", Status: "Enquiry Leads",
			CreatedTime: "2025-03-05"},
	}
}

func ids(deals []models.Deal) []string {
	out := make([]string, len(deals))
	for i, d := range deals {
		out[i] = d.ID
	}
	return out
}

func TestFilterSearchMatchesNameAndBroker(t *testing.T) {
	deals := sampleDeals()

	got := Filter{Search: "harbour"}.Apply(deals)
	assert.Equal(t, []string{"1", "3"}, ids(got), "case-insensitive name match")

	got = Filter{Search: "LEE"}.Apply(deals)
	assert.Equal(t, []string{"2", "4"}, ids(got), "broker name is searched too")
}

func TestFilterStatusUsesDisplayStatus(t *testing.T) {
	deals := sampleDeals()

	got := Filter{Status: models.StatusLost}.Apply(deals)
	assert.Equal(t, []string{"2"}, ids(got))

	// Deal 3 has no raw status but reached Settled.
	got = Filter{Status: models.StageSettled}.Apply(deals)
	assert.Equal(t, []string{"3"}, ids(got))
}

func TestFilterConjunction(t *testing.T) {
	deals := sampleDeals()

	f := Filter{Search: "harbour", Broker: "Kim", Status: models.StageSettled}
	got := f.Apply(deals)
	assert.Equal(t, []string{"3"}, ids(got), "all conditions must hold at once")
}

func TestFilterDateRange(t *testing.T) {
	deals := sampleDeals()

	// Activity reference: latest_date, then settled, then created.
	got := Filter{StartDate: "2025-02-01", EndDate: "2025-02-28"}.Apply(deals)
	assert.Equal(t, []string{"2"}, ids(got))

	// Created reference ignores activity dates entirely.
	got = Filter{StartDate: "2025-01-01", EndDate: "2025-01-31", DateRef: RefCreated}.Apply(deals)
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestFilterDateRangeRejectsDatelessDeals(t *testing.T) {
	deals := []models.Deal{{ID: "x", Name: "No Dates"}}
	got := Filter{StartDate: "2020-01-01"}.Apply(deals)
	assert.Empty(t, got, "a deal without a usable date cannot prove it is in range")
}

func TestFilterPreservesOrderAndInput(t *testing.T) {
	deals := sampleDeals()
	before := ids(deals)

	got := Filter{Broker: "Kim"}.Apply(deals)
	assert.Equal(t, []string{"1", "3"}, ids(got), "input order preserved")
	assert.Equal(t, before, ids(deals), "input slice untouched")

	// Zero filter returns a copy, not the same backing array.
	copied := Filter{}.Apply(deals)
	require.Len(t, copied, len(deals))
	copied[0].Name = "mutated"
	assert.Equal(t, "Harbour Refinance", deals[0].Name)
}

func TestFilterSourceAndWithoutSource(t *testing.T) {
	deals := sampleDeals()

	got := Filter{Source: models.SourceRedNote}.Apply(deals)
	assert.Equal(t, []string{"1"}, ids(got))

	got = Filter{Source: models.SourceReferral}.Apply(deals)
	assert.Equal(t, []string{"2", "4"}, ids(got), "no marker means referral")

	f := Filter{Source: models.SourceRedNote, Broker: "Kim"}
	cleared := f.WithoutSource()
	assert.Empty(t, cleared.Source)
	assert.Equal(t, "Kim", cleared.Broker, "other conditions survive")
	assert.Equal(t, models.SourceRedNote, f.Source, "original is untouched")
}
