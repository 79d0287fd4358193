package services

import (
	"io"
	"time"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/processors"
	"github.com/herry-chi/dashboard-operation-lifex/src/query"
)

// UploadResult reports what an upload replaced the working dataset with.
type UploadResult struct {
	Filename  string `json:"filename"`
	RowCount  int    `json:"rowCount"`
	Truncated bool   `json:"truncated"`
}

// DatasetMeta describes the currently loaded dataset. Broker and status
// lists feed the filter dropdowns.
type DatasetMeta struct {
	Loaded         bool       `json:"loaded"`
	Version        uint64     `json:"version"`
	RowCount       int        `json:"rowCount"`
	SourceFilename string     `json:"sourceFilename,omitempty"`
	UploadedAt     *time.Time `json:"uploadedAt,omitempty"`
	Brokers        []string   `json:"brokers"`
	Statuses       []string   `json:"statuses"`
}

// BrokersReport pairs the per-broker aggregates with the weekly intake
// averages shown beside them.
type BrokersReport struct {
	Brokers        []processors.BrokerStats         `json:"brokers"`
	WeeklyAverages []processors.BrokerWeeklyAverage `json:"weeklyAverages"`
}

// WeeklyReport pairs the week-by-week stats with their averages.
type WeeklyReport struct {
	Weeks    []processors.WeeklyStat   `json:"weeks"`
	Averages processors.WeeklyAverages `json:"averages"`
}

// DashboardService is the aggregation facade the HTTP handlers talk to.
type DashboardService interface {
	ProcessUpload(filename string, file io.Reader) (UploadResult, error)
	ClearDataset() error
	Meta() DatasetMeta

	Deals(f query.Filter, keys []query.Key) []models.Deal
	LostDeals(f query.Filter, reason string, keys []query.Key) []models.Deal
	Stats(f query.Filter) processors.KPIStats
	StatusCounts(f query.Filter) []processors.StatusCount
	LeadSources(f query.Filter) []processors.LeadSourceStats
	Brokers(f query.Filter) BrokersReport
	Weekly(f query.Filter, year int) WeeklyReport
	NewDeals(f query.Filter) processors.NewDealsReport
	Flow(f query.Filter) processors.PipelineFlow
	Treemap(f query.Filter, groupByBroker bool, path []string) *processors.TreemapNode
}

// ChartCommentService stores per-chart annotations.
type ChartCommentService interface {
	Get(chartID string) (*models.ChartComment, error)
	Upsert(chartID, content string) (*models.ChartComment, error)
	Delete(chartID string) error
}
