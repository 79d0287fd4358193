package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/herry-chi/dashboard-operation-lifex/src/logger"
	"github.com/herry-chi/dashboard-operation-lifex/src/query"
	"github.com/herry-chi/dashboard-operation-lifex/src/services"
	"github.com/herry-chi/dashboard-operation-lifex/src/utils"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(service services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: service,
	}
}

// selectorValue reads a dropdown-style parameter where the "all"
// sentinel means no restriction.
func selectorValue(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

// parseFilter reads the shared filter query parameters.
func parseFilter(r *http.Request) query.Filter {
	q := r.URL.Query()
	f := query.Filter{
		Search:    strings.TrimSpace(q.Get("search")),
		Status:    selectorValue(q.Get("status")),
		Broker:    selectorValue(q.Get("broker")),
		Source:    selectorValue(q.Get("source")),
		StartDate: strings.TrimSpace(q.Get("startDate")),
		EndDate:   strings.TrimSpace(q.Get("endDate")),
		DateRef:   query.RefActivity,
	}
	if q.Get("dateRef") == string(query.RefCreated) {
		f.DateRef = query.RefCreated
	}
	return f
}

// parseSortKeys reads the sort parameter, a comma-separated list of
// field:direction pairs like "broker_name:asc,deal_value:desc".
// Unknown fields and malformed pairs are skipped, direction defaults to
// ascending.
func parseSortKeys(r *http.Request) []query.Key {
	raw := strings.TrimSpace(r.URL.Query().Get("sort"))
	if raw == "" {
		return nil
	}
	var keys []query.Key
	for _, part := range strings.Split(raw, ",") {
		field, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
		if !query.ValidField(field) {
			logger.L.Debug("Ignoring unknown sort field", "field", field)
			continue
		}
		direction := query.Asc
		if dir == string(query.Desc) {
			direction = query.Desc
		}
		keys = append(keys, query.Key{Field: field, Direction: direction})
	}
	return keys
}

func (h *DashboardHandler) HandleGetDeals(w http.ResponseWriter, r *http.Request) {
	deals := h.dashboardService.Deals(parseFilter(r), parseSortKeys(r))

	etag, err := utils.GenerateETag(deals)
	if err == nil {
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	} else {
		logger.L.Warn("Could not generate ETag for deals response", "error", err)
	}

	utils.SendJSON(w, deals, http.StatusOK)
}

func (h *DashboardHandler) HandleGetLostDeals(w http.ResponseWriter, r *http.Request) {
	reason := strings.TrimSpace(r.URL.Query().Get("reason"))
	deals := h.dashboardService.LostDeals(parseFilter(r), reason, parseSortKeys(r))
	utils.SendJSON(w, deals, http.StatusOK)
}

func (h *DashboardHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.dashboardService.Stats(parseFilter(r)), http.StatusOK)
}

func (h *DashboardHandler) HandleGetStatusCounts(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.dashboardService.StatusCounts(parseFilter(r)), http.StatusOK)
}

func (h *DashboardHandler) HandleGetLeadSources(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.dashboardService.LeadSources(parseFilter(r)), http.StatusOK)
}

func (h *DashboardHandler) HandleGetBrokers(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.dashboardService.Brokers(parseFilter(r)), http.StatusOK)
}

func (h *DashboardHandler) HandleGetWeekly(w http.ResponseWriter, r *http.Request) {
	year := 0
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil || parsed < 2000 || parsed > 2100 {
			utils.SendJSONError(w, "Invalid year parameter", http.StatusBadRequest)
			return
		}
		year = parsed
	}
	utils.SendJSON(w, h.dashboardService.Weekly(parseFilter(r), year), http.StatusOK)
}

func (h *DashboardHandler) HandleGetNewDeals(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.dashboardService.NewDeals(parseFilter(r)), http.StatusOK)
}

func (h *DashboardHandler) HandleGetFlow(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.dashboardService.Flow(parseFilter(r)), http.StatusOK)
}

func (h *DashboardHandler) HandleGetTreemap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	groupByBroker := q.Get("groupByBroker") == "true"

	var path []string
	if rawPath := strings.TrimSpace(q.Get("path")); rawPath != "" {
		path = strings.Split(rawPath, "/")
	}

	node := h.dashboardService.Treemap(parseFilter(r), groupByBroker, path)
	if node == nil {
		// Nothing settled with value, or the zoom path went stale after
		// a new upload.
		utils.SendJSON(w, map[string]any{"root": nil}, http.StatusOK)
		return
	}
	utils.SendJSON(w, map[string]any{"root": node}, http.StatusOK)
}
