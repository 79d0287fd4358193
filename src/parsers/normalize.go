package parsers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/utils"
)

// normalizeRecords converts raw field bags into Deal records, applying the
// per-field defaults. Rows whose name is blank even after defaulting are
// dropped. Index is 1-based so generated IDs read naturally.
func normalizeRecords(rows []map[string]any) []models.Deal {
	deals := make([]models.Deal, 0, len(rows))
	for i, row := range rows {
		d := normalizeRecord(row, i+1)
		if strings.TrimSpace(d.Name) == "" {
			continue
		}
		deals = append(deals, d)
	}
	return deals
}

func normalizeRecord(row map[string]any, idx int) models.Deal {
	d := models.Deal{
		ID:         coerceString(row["deal_id"]),
		Name:       coerceString(row["deal_name"]),
		BrokerName: coerceString(row["broker_name"]),
		Value:      coerceNumber(row["deal_value"]),

		CreatedTime: coerceDate(row["created_time"]),

		EnquiryDate:         coerceDate(row[models.StageEnquiry]),
		OpportunityDate:     coerceDate(row[models.StageOpportunity]),
		ApplicationDate:     coerceDate(row[models.StageApplication]),
		AssessmentDate:      coerceDate(row[models.StageAssessment]),
		ApprovalDate:        coerceDate(row[models.StageApproval]),
		LoanDocumentDate:    coerceDate(row[models.StageLoanDocument]),
		SettlementQueueDate: coerceDate(row[models.StageSettlementQueue]),
		SettledDate:         coerceDate(row[models.StageSettled]),

		Settlement2025: coerceString(row["2025 Settlement"]),
		Settlement2024: coerceString(row["2024 Settlement"]),

		LostDate:        coerceDate(row["Lost date"]),
		LostReason:      coerceString(row["lost reason"]),
		LostFromProcess: coerceString(row["which process (if lost)"]),

		Status:      coerceString(row["status"]),
		ProcessDays: coerceOptionalNumber(row["process days"]),
		LatestDate:  coerceDate(row["latest_date"]),

		FromRednote: coerceString(row["From Rednote?"]),
		FromLifeX:   coerceString(row["From LifeX?"]),
	}

	if d.ID == "" {
		d.ID = fmt.Sprintf("row_%d", idx)
	}
	if d.Name == "" && hasAnyValue(row) {
		d.Name = fmt.Sprintf("Deal %d", idx)
	}
	if d.BrokerName == "" {
		d.BrokerName = "Unknown Broker"
	}
	if d.Status == "" {
		d.Status = models.StatusUnknown
	}
	return d
}

// hasAnyValue reports whether the row carries at least one non-blank cell.
// Completely empty rows stay nameless and get dropped.
func hasAnyValue(row map[string]any) bool {
	for _, v := range row {
		if coerceString(v) != "" {
			return true
		}
	}
	return false
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		if s {
			return "true"
		}
		return "false"
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// coerceNumber extracts a float from messy cells like "$1,200.50".
// Unparseable values become 0.
func coerceNumber(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	s := coerceString(v)
	if s == "" {
		return 0
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

// coerceOptionalNumber is like coerceNumber but keeps the distinction
// between absent and zero.
func coerceOptionalNumber(v any) *float64 {
	if v == nil {
		return nil
	}
	if f, ok := v.(float64); ok {
		return &f
	}
	s := coerceString(v)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// coerceDate normalizes recognizable date cells to RFC3339 while keeping
// unrecognized non-blank values verbatim. Downstream day reduction still
// gets a second chance at odd formats.
func coerceDate(v any) string {
	s := coerceString(v)
	if s == "" {
		return ""
	}
	if t, ok := utils.ParseFlexibleDate(s); ok {
		return t.Format(time.RFC3339)
	}
	return s
}
