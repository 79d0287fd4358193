package models

import (
	"strings"
)

// Pipeline stage names as they appear in the CRM export columns.
const (
	StageEnquiry         = "Enquiry Leads"
	StageOpportunity     = "Opportunity"
	StageApplication     = "1. Application"
	StageAssessment      = "2. Assessment"
	StageApproval        = "3. Approval"
	StageLoanDocument    = "4. Loan Document"
	StageSettlementQueue = "5. Settlement Queue"
	StageSettled         = "6. Settled"

	StatusLost    = "Lost"
	StatusUnknown = "Unknown"
)

// PipelineStages is the canonical stage progression, in process order.
var PipelineStages = []string{
	StageEnquiry,
	StageOpportunity,
	StageApplication,
	StageAssessment,
	StageApproval,
	StageLoanDocument,
	StageSettlementQueue,
	StageSettled,
}

// convertedStages are the stages whose entry marks a deal as converted.
var convertedStages = []string{
	StageApplication,
	StageAssessment,
	StageApproval,
	StageLoanDocument,
	StageSettlementQueue,
	StageSettled,
}

// StageRank maps a stage name to its position in the pipeline. Unknown
// stages rank after every known one so they sort last.
func StageRank(stage string) int {
	for i, s := range PipelineStages {
		if s == stage {
			return i
		}
	}
	if stage == StatusLost {
		return len(PipelineStages)
	}
	return 999
}

// Deal is a single normalized CRM deal record. The JSON field names match
// the upstream export columns so uploaded JSON round-trips without a
// mapping table.
type Deal struct {
	ID         string  `json:"deal_id"`
	Name       string  `json:"deal_name"`
	BrokerName string  `json:"broker_name"`
	Value      float64 `json:"deal_value"`

	CreatedTime string `json:"created_time"`

	EnquiryDate         string `json:"Enquiry Leads"`
	OpportunityDate     string `json:"Opportunity"`
	ApplicationDate     string `json:"1. Application"`
	AssessmentDate      string `json:"2. Assessment"`
	ApprovalDate        string `json:"3. Approval"`
	LoanDocumentDate    string `json:"4. Loan Document"`
	SettlementQueueDate string `json:"5. Settlement Queue"`
	SettledDate         string `json:"6. Settled"`

	Settlement2025 string `json:"2025 Settlement"`
	Settlement2024 string `json:"2024 Settlement"`

	LostDate        string `json:"Lost date"`
	LostReason      string `json:"lost reason"`
	LostFromProcess string `json:"which process (if lost)"`

	Status      string   `json:"status"`
	ProcessDays *float64 `json:"process days"`
	LatestDate  string   `json:"latest_date"`

	FromRednote string `json:"From Rednote?"`
	FromLifeX   string `json:"From LifeX?"`
}

// StageDate returns the raw date cell recorded for a pipeline stage.
func (d *Deal) StageDate(stage string) string {
	switch stage {
	case StageEnquiry:
		return d.EnquiryDate
	case StageOpportunity:
		return d.OpportunityDate
	case StageApplication:
		return d.ApplicationDate
	case StageAssessment:
		return d.AssessmentDate
	case StageApproval:
		return d.ApprovalDate
	case StageLoanDocument:
		return d.LoanDocumentDate
	case StageSettlementQueue:
		return d.SettlementQueueDate
	case StageSettled:
		return d.SettledDate
	}
	return ""
}

// StageReached reports whether the deal has a non-blank entry for a stage.
func (d *Deal) StageReached(stage string) bool {
	return strings.TrimSpace(d.StageDate(stage)) != ""
}

// ReachedStages returns the stages this deal has entered, in process order.
func (d *Deal) ReachedStages() []string {
	var reached []string
	for _, stage := range PipelineStages {
		if d.StageReached(stage) {
			reached = append(reached, stage)
		}
	}
	return reached
}

// LastReachedStage returns the furthest pipeline stage the deal entered,
// or "" when it never entered one.
func (d *Deal) LastReachedStage() string {
	last := ""
	for _, stage := range PipelineStages {
		if d.StageReached(stage) {
			last = stage
		}
	}
	return last
}

// IsLost reports whether the deal's raw status marks it lost.
func (d *Deal) IsLost() bool {
	return d.Status == StatusLost
}

// IsSettled reports whether the deal reached the settled stage and was not
// subsequently marked lost. A lost status always wins.
func (d *Deal) IsSettled() bool {
	return !d.IsLost() && d.StageReached(StageSettled)
}

// IsConverted reports whether the deal entered any stage from application
// onward, or carries a settlement-year marker.
func (d *Deal) IsConverted() bool {
	for _, stage := range convertedStages {
		if d.StageReached(stage) {
			return true
		}
	}
	return strings.TrimSpace(d.Settlement2024) != "" ||
		strings.TrimSpace(d.Settlement2025) != ""
}

// DisplayStatus resolves the status shown to users. Lost deals always show
// Lost. Otherwise the furthest reached stage wins, falling back to the raw
// status cell, then Unknown.
func (d *Deal) DisplayStatus() string {
	if d.IsLost() {
		return StatusLost
	}
	if last := d.LastReachedStage(); last != "" {
		return last
	}
	if s := strings.TrimSpace(d.Status); s != "" {
		return s
	}
	return StatusUnknown
}

// Lead source labels.
const (
	SourceRedNote  = "RedNote"
	SourceLifeX    = "LifeX"
	SourceReferral = "Referral"
)

// LeadSource classifies where the deal came from. Rednote takes precedence
// over LifeX, and everything else counts as a referral.
func (d *Deal) LeadSource() string {
	if strings.EqualFold(strings.TrimSpace(d.FromRednote), "yes") {
		return SourceRedNote
	}
	if strings.EqualFold(strings.TrimSpace(d.FromLifeX), "yes") {
		return SourceLifeX
	}
	return SourceReferral
}

// ReferenceDate returns the date used for activity-based filtering:
// the latest-activity cell, falling back to the settled date, then the
// created time. Returns "" when none is present.
func (d *Deal) ReferenceDate() string {
	if s := strings.TrimSpace(d.LatestDate); s != "" {
		return s
	}
	if s := strings.TrimSpace(d.SettledDate); s != "" {
		return s
	}
	return strings.TrimSpace(d.CreatedTime)
}
