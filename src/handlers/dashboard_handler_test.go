package handlers

import (
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/herry-chi/dashboard-operation-lifex/src/logger"
	"github.com/herry-chi/dashboard-operation-lifex/src/query"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestParseFilterAllSentinel(t *testing.T) {
	// "all" is the dropdowns' default state and must restrict nothing.
	r := httptest.NewRequest("GET", "/api/deals?status=all&broker=all&source=all", nil)
	f := parseFilter(r)
	assert.True(t, f.IsZero())

	r = httptest.NewRequest("GET", "/api/deals?status=All&broker=ALL", nil)
	f = parseFilter(r)
	assert.Empty(t, f.Status, "sentinel matching is case-insensitive")
	assert.Empty(t, f.Broker)
}

func TestParseFilterValues(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/deals?search=harbour&status=Lost&broker=Kim&startDate=2025-01-01&endDate=2025-01-31&dateRef=created", nil)
	f := parseFilter(r)

	assert.Equal(t, "harbour", f.Search)
	assert.Equal(t, "Lost", f.Status)
	assert.Equal(t, "Kim", f.Broker)
	assert.Equal(t, "2025-01-01", f.StartDate)
	assert.Equal(t, "2025-01-31", f.EndDate)
	assert.Equal(t, query.RefCreated, f.DateRef)

	r = httptest.NewRequest("GET", "/api/deals", nil)
	assert.Equal(t, query.RefActivity, parseFilter(r).DateRef)
}

func TestParseSortKeys(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/deals?sort=broker_name:asc,deal_value:desc", nil)
	keys := parseSortKeys(r)
	assert.Equal(t, []query.Key{
		{Field: "broker_name", Direction: query.Asc},
		{Field: "deal_value", Direction: query.Desc},
	}, keys)

	// Unknown fields are skipped, missing direction defaults ascending.
	r = httptest.NewRequest("GET", "/api/deals?sort=bogus:asc,status", nil)
	keys = parseSortKeys(r)
	assert.Equal(t, []query.Key{{Field: "status", Direction: query.Asc}}, keys)

	r = httptest.NewRequest("GET", "/api/deals", nil)
	assert.Nil(t, parseSortKeys(r))
}
