package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/herry-chi/dashboard-operation-lifex/src/config"
	"github.com/herry-chi/dashboard-operation-lifex/src/logger"
	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/parsers"
	"github.com/herry-chi/dashboard-operation-lifex/src/processors"
	"github.com/herry-chi/dashboard-operation-lifex/src/query"
)

// maxDatasetRows caps a single upload; anything beyond is dropped and
// flagged in the upload result.
const maxDatasetRows = 100000

// dashboardServiceImpl holds the in-memory working dataset and serves
// every aggregation over it. Uploads replace the dataset wholesale and a
// snapshot goes to SQLite so a restart picks up where the user left off.
type dashboardServiceImpl struct {
	db          *sql.DB
	reportCache *cache.Cache

	mu      sync.RWMutex
	deals   []models.Deal
	meta    DatasetMeta
	version uint64
}

// NewDashboardService builds the service and restores any persisted
// dataset snapshot.
func NewDashboardService(db *sql.DB, reportCache *cache.Cache) DashboardService {
	s := &dashboardServiceImpl{db: db, reportCache: reportCache}
	if err := s.restoreSnapshot(); err != nil {
		logger.L.Warn("Could not restore dataset snapshot, starting empty", "error", err)
	}
	return s
}

func (s *dashboardServiceImpl) ProcessUpload(filename string, file io.Reader) (UploadResult, error) {
	parser, err := parsers.GetParser(filename)
	if err != nil {
		s.clearAfterFailedUpload(filename, err)
		return UploadResult{}, err
	}

	deals, err := parser.Parse(file)
	if err != nil {
		s.clearAfterFailedUpload(filename, err)
		return UploadResult{}, err
	}

	result := UploadResult{Filename: filename, RowCount: len(deals)}
	if len(deals) > maxDatasetRows {
		deals = deals[:maxDatasetRows]
		result.RowCount = maxDatasetRows
		result.Truncated = true
		logger.L.Warn("Upload truncated to row cap", "filename", filename, "cap", maxDatasetRows)
	}

	now := time.Now()
	s.mu.Lock()
	s.deals = deals
	s.meta = DatasetMeta{Loaded: true, RowCount: len(deals), SourceFilename: filename, UploadedAt: &now}
	s.version++
	s.mu.Unlock()
	s.reportCache.Flush()

	if err := s.persistSnapshot(deals, filename); err != nil {
		// The working set is already live; persistence failing only
		// costs restart recovery.
		logger.L.Error("Failed to persist dataset snapshot", "error", err)
	}

	logger.L.Info("Dataset replaced from upload", "filename", filename, "rows", len(deals))
	return result, nil
}

// A rejected upload never leaves the previous dataset partially or
// confusingly in place: the working set and its snapshot both go.
func (s *dashboardServiceImpl) clearAfterFailedUpload(filename string, cause error) {
	logger.L.Warn("Upload rejected, clearing dataset", "filename", filename, "error", cause)
	if err := s.ClearDataset(); err != nil {
		logger.L.Error("Failed to clear dataset after rejected upload", "error", err)
	}
}

func (s *dashboardServiceImpl) ClearDataset() error {
	s.mu.Lock()
	s.deals = nil
	s.meta = DatasetMeta{}
	s.version++
	s.mu.Unlock()
	s.reportCache.Flush()

	_, err := s.db.Exec(`DELETE FROM dataset_snapshots WHERE session_key = ?`, config.Cfg.DatasetSessionKey)
	if err != nil {
		return fmt.Errorf("deleting dataset snapshot: %w", err)
	}
	logger.L.Info("Dataset cleared")
	return nil
}

func (s *dashboardServiceImpl) Meta() DatasetMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta := s.meta
	meta.Version = s.version
	meta.Brokers = []string{}
	meta.Statuses = []string{}

	brokerSet := make(map[string]struct{})
	statusSet := make(map[string]struct{})
	for i := range s.deals {
		brokerSet[s.deals[i].BrokerName] = struct{}{}
		statusSet[s.deals[i].DisplayStatus()] = struct{}{}
	}
	for b := range brokerSet {
		meta.Brokers = append(meta.Brokers, b)
	}
	sort.Strings(meta.Brokers)
	for st := range statusSet {
		meta.Statuses = append(meta.Statuses, st)
	}
	sort.Slice(meta.Statuses, func(i, j int) bool {
		ri, rj := models.StageRank(meta.Statuses[i]), models.StageRank(meta.Statuses[j])
		if ri != rj {
			return ri < rj
		}
		return meta.Statuses[i] < meta.Statuses[j]
	})
	return meta
}

func (s *dashboardServiceImpl) persistSnapshot(deals []models.Deal, filename string) error {
	payload, err := json.Marshal(deals)
	if err != nil {
		return fmt.Errorf("marshaling dataset snapshot: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO dataset_snapshots (session_key, payload, row_count, source_filename, uploaded_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_key) DO UPDATE SET
			payload = excluded.payload,
			row_count = excluded.row_count,
			source_filename = excluded.source_filename,
			uploaded_at = CURRENT_TIMESTAMP`,
		config.Cfg.DatasetSessionKey, string(payload), len(deals), filename)
	if err != nil {
		return fmt.Errorf("writing dataset snapshot: %w", err)
	}
	return nil
}

func (s *dashboardServiceImpl) restoreSnapshot() error {
	var payload, filename string
	var rowCount int
	var uploadedAt time.Time
	err := s.db.QueryRow(`
		SELECT payload, row_count, source_filename, uploaded_at
		FROM dataset_snapshots WHERE session_key = ?`,
		config.Cfg.DatasetSessionKey).Scan(&payload, &rowCount, &filename, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading dataset snapshot: %w", err)
	}

	var deals []models.Deal
	if err := json.Unmarshal([]byte(payload), &deals); err != nil {
		return fmt.Errorf("unmarshaling dataset snapshot: %w", err)
	}

	s.mu.Lock()
	s.deals = deals
	s.meta = DatasetMeta{Loaded: true, RowCount: len(deals), SourceFilename: filename, UploadedAt: &uploadedAt}
	s.version++
	s.mu.Unlock()

	logger.L.Info("Restored dataset snapshot", "rows", len(deals), "filename", filename)
	return nil
}

// snapshot returns the current deals slice plus the dataset version.
// Aggregations never mutate the slice, so sharing it read-only is safe.
func (s *dashboardServiceImpl) snapshot() ([]models.Deal, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deals, s.version
}

func filterKey(f query.Filter) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
		f.Search, f.Status, f.Broker, f.Source, f.StartDate, f.EndDate, f.DateRef)
}

func (s *dashboardServiceImpl) Deals(f query.Filter, keys []query.Key) []models.Deal {
	deals, _ := s.snapshot()
	return query.Sort(f.Apply(deals), keys)
}

func (s *dashboardServiceImpl) LostDeals(f query.Filter, reason string, keys []query.Key) []models.Deal {
	deals, _ := s.snapshot()
	filtered := f.Apply(deals)
	lost := make([]models.Deal, 0, len(filtered))
	for i := range filtered {
		if !filtered[i].IsLost() {
			continue
		}
		if reason != "" && !strings.EqualFold(strings.TrimSpace(filtered[i].LostReason), reason) {
			continue
		}
		lost = append(lost, filtered[i])
	}
	return query.Sort(lost, keys)
}

func (s *dashboardServiceImpl) Stats(f query.Filter) processors.KPIStats {
	// Headline cards ignore the source filter so they stay comparable
	// while the source charts narrow down.
	f = f.WithoutSource()
	deals, version := s.snapshot()
	key := fmt.Sprintf("stats:%d:%s", version, filterKey(f))
	if cached, found := s.reportCache.Get(key); found {
		return cached.(processors.KPIStats)
	}
	stats := processors.ComputeKPIs(f.Apply(deals))
	s.reportCache.Set(key, stats, cache.DefaultExpiration)
	return stats
}

func (s *dashboardServiceImpl) StatusCounts(f query.Filter) []processors.StatusCount {
	deals, version := s.snapshot()
	key := fmt.Sprintf("status-counts:%d:%s", version, filterKey(f))
	if cached, found := s.reportCache.Get(key); found {
		return cached.([]processors.StatusCount)
	}
	counts := processors.ComputeStatusCounts(f.Apply(deals))
	s.reportCache.Set(key, counts, cache.DefaultExpiration)
	return counts
}

func (s *dashboardServiceImpl) LeadSources(f query.Filter) []processors.LeadSourceStats {
	deals, version := s.snapshot()
	key := fmt.Sprintf("lead-sources:%d:%s", version, filterKey(f))
	if cached, found := s.reportCache.Get(key); found {
		return cached.([]processors.LeadSourceStats)
	}
	sources := processors.ComputeLeadSources(f.Apply(deals))
	s.reportCache.Set(key, sources, cache.DefaultExpiration)
	return sources
}

func (s *dashboardServiceImpl) Brokers(f query.Filter) BrokersReport {
	deals, version := s.snapshot()
	key := fmt.Sprintf("brokers:%d:%s", version, filterKey(f))
	if cached, found := s.reportCache.Get(key); found {
		return cached.(BrokersReport)
	}
	// Weekly averages are an all-time baseline: every broker's full deal
	// total over the dataset's full week span, no matter the filter.
	report := BrokersReport{
		Brokers:        processors.ComputeBrokerStats(f.Apply(deals)),
		WeeklyAverages: processors.ComputeBrokerWeeklyAverages(deals),
	}
	s.reportCache.Set(key, report, cache.DefaultExpiration)
	return report
}

func (s *dashboardServiceImpl) Weekly(f query.Filter, year int) WeeklyReport {
	deals, version := s.snapshot()
	key := fmt.Sprintf("weekly:%d:%d:%s", version, year, filterKey(f))
	if cached, found := s.reportCache.Get(key); found {
		return cached.(WeeklyReport)
	}
	weeks := processors.ComputeWeeklyStats(f.Apply(deals))
	// The averages block is an all-time baseline over the whole dataset;
	// filters narrow the week rows, never the baseline. Only the year
	// restriction applies to it.
	baseline := weeks
	if !f.IsZero() {
		baseline = processors.ComputeWeeklyStats(deals)
	}
	report := WeeklyReport{
		Weeks:    weeks,
		Averages: processors.ComputeWeeklyAverages(baseline, year),
	}
	s.reportCache.Set(key, report, cache.DefaultExpiration)
	return report
}

func (s *dashboardServiceImpl) NewDeals(f query.Filter) processors.NewDealsReport {
	// New-deal cohorts are defined by creation date, whatever the
	// caller set as the date reference.
	f.DateRef = query.RefCreated
	deals, version := s.snapshot()
	key := fmt.Sprintf("new-deals:%d:%s", version, filterKey(f))
	if cached, found := s.reportCache.Get(key); found {
		return cached.(processors.NewDealsReport)
	}
	report := processors.ComputeNewDealsReport(f.Apply(deals))
	s.reportCache.Set(key, report, cache.DefaultExpiration)
	return report
}

func (s *dashboardServiceImpl) Flow(f query.Filter) processors.PipelineFlow {
	deals, version := s.snapshot()
	key := fmt.Sprintf("flow:%d:%s", version, filterKey(f))
	if cached, found := s.reportCache.Get(key); found {
		return cached.(processors.PipelineFlow)
	}
	// The flow builder gets the filtered deals and the raw window: each
	// stage visit is window-checked against its own stage date, not the
	// deal's reference date.
	flow := processors.ComputePipelineFlow(f.Apply(deals), f.StartDate, f.EndDate)
	s.reportCache.Set(key, flow, cache.DefaultExpiration)
	return flow
}

func (s *dashboardServiceImpl) Treemap(f query.Filter, groupByBroker bool, path []string) *processors.TreemapNode {
	deals, version := s.snapshot()
	key := fmt.Sprintf("treemap:%d:%t:%s:%s", version, groupByBroker, strings.Join(path, "/"), filterKey(f))
	if cached, found := s.reportCache.Get(key); found {
		return cached.(*processors.TreemapNode)
	}
	root := processors.BuildTreemap(f.Apply(deals),
		groupByBroker, config.Cfg.TreemapViewportW, config.Cfg.TreemapViewportH)
	node := processors.ResolveTreemapPath(root, path)
	if len(path) > 0 {
		processors.RelayoutTreemap(node, config.Cfg.TreemapViewportW, config.Cfg.TreemapViewportH)
	}
	s.reportCache.Set(key, node, cache.DefaultExpiration)
	return node
}
