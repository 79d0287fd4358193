package processors

import (
	"sort"
	"strings"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/utils"
)

// FlowNode is one stage (or the Lost sink) in the pipeline flow diagram.
type FlowNode struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// FlowEdge is a weighted transition between two flow nodes.
type FlowEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// LostReasonCount tallies one loss reason within the flow window.
type LostReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// PipelineFlow is the full Sankey-style flow report.
type PipelineFlow struct {
	Nodes       []FlowNode        `json:"nodes"`
	Edges       []FlowEdge        `json:"edges"`
	LostReasons []LostReasonCount `json:"lostReasons"`
}

// lostProcessAliases maps the short process names found in the
// "which process (if lost)" column onto canonical stage names. Values
// already canonical pass through untouched.
var lostProcessAliases = map[string]string{
	"Enquiry":          models.StageEnquiry,
	"Opportunity":      models.StageOpportunity,
	"Application":      models.StageApplication,
	"Assessment":       models.StageAssessment,
	"Approval":         models.StageApproval,
	"Loan Document":    models.StageLoanDocument,
	"Settlement Queue": models.StageSettlementQueue,
	"Settled":          models.StageSettled,
}

// lostFromStage resolves which stage a lost deal dropped out of: the
// recorded lost-from process first, then the furthest reached stage, then
// the top of the funnel.
func lostFromStage(d *models.Deal) string {
	if raw := strings.TrimSpace(d.LostFromProcess); raw != "" {
		if canonical, ok := lostProcessAliases[raw]; ok {
			return canonical
		}
		return raw
	}
	if last := d.LastReachedStage(); last != "" {
		return last
	}
	return models.PipelineStages[0]
}

// ComputePipelineFlow builds the stage-to-stage flow over an inclusive
// [startDate, endDate] day window. A stage visit counts when that stage's
// own date falls in the window, a transition counts when the target
// stage's date does, and a loss counts only when the lost date does.
func ComputePipelineFlow(deals []models.Deal, startDate, endDate string) PipelineFlow {
	stageCounts := make(map[string]int)
	edgeWeights := make(map[[2]string]int)
	lostReasons := make(map[string]int)
	lostCount := 0

	inWindow := func(dateStr string) bool {
		day, ok := utils.DayOf(dateStr)
		if !ok {
			return false
		}
		return utils.InDayRange(day, startDate, endDate)
	}

	for i := range deals {
		d := &deals[i]
		reached := d.ReachedStages()

		for _, stage := range reached {
			if inWindow(d.StageDate(stage)) {
				stageCounts[stage]++
			}
		}
		for j := 1; j < len(reached); j++ {
			if inWindow(d.StageDate(reached[j])) {
				edgeWeights[[2]string{reached[j-1], reached[j]}]++
			}
		}

		if !d.IsLost() {
			continue
		}
		// A loss counts only through its own lost date. A lost deal
		// without one never appears in the flow.
		if !inWindow(d.LostDate) {
			continue
		}
		lostCount++
		edgeWeights[[2]string{lostFromStage(d), models.StatusLost}]++
		reason := strings.TrimSpace(d.LostReason)
		if reason == "" {
			reason = "Unspecified"
		}
		lostReasons[reason]++
	}

	flow := PipelineFlow{
		Nodes:       make([]FlowNode, 0, len(models.PipelineStages)+1),
		Edges:       make([]FlowEdge, 0, len(edgeWeights)),
		LostReasons: make([]LostReasonCount, 0, len(lostReasons)),
	}

	for _, stage := range models.PipelineStages {
		flow.Nodes = append(flow.Nodes, FlowNode{ID: stage, Name: stage, Type: "stage", Count: stageCounts[stage]})
	}
	flow.Nodes = append(flow.Nodes, FlowNode{ID: models.StatusLost, Name: models.StatusLost, Type: "sink", Count: lostCount})

	for pair, weight := range edgeWeights {
		flow.Edges = append(flow.Edges, FlowEdge{Source: pair[0], Target: pair[1], Value: weight})
	}
	sort.Slice(flow.Edges, func(i, j int) bool {
		a, b := flow.Edges[i], flow.Edges[j]
		if ra, rb := models.StageRank(a.Source), models.StageRank(b.Source); ra != rb {
			return ra < rb
		}
		if ra, rb := models.StageRank(a.Target), models.StageRank(b.Target); ra != rb {
			return ra < rb
		}
		return a.Target < b.Target
	})

	for reason, count := range lostReasons {
		flow.LostReasons = append(flow.LostReasons, LostReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(flow.LostReasons, func(i, j int) bool {
		if flow.LostReasons[i].Count != flow.LostReasons[j].Count {
			return flow.LostReasons[i].Count > flow.LostReasons[j].Count
		}
		return flow.LostReasons[i].Reason < flow.LostReasons[j].Reason
	})

	return flow
}
