package model

import "strings"

// Phase identifies the development phase an effort block belongs to.
type Phase string

const (
	PhaseAnalysis    Phase = "analysis"
	PhaseDesign      Phase = "design"
	PhaseQAPrep      Phase = "qa_prep"
	PhaseDevelopment Phase = "development"
	PhaseReview      Phase = "review"
	PhaseQATesting   Phase = "qa_testing"
	PhaseBugFix      Phase = "bug_fix"
	PhaseRetest      Phase = "retest"
	PhaseIntegration Phase = "integration"
	PhaseSmoke       Phase = "smoke"
	PhaseDeployment  Phase = "deployment"
)

// Phases lists every known phase in lifecycle order.
var Phases = []Phase{
	PhaseAnalysis, PhaseDesign, PhaseQAPrep, PhaseDevelopment, PhaseReview,
	PhaseQATesting, PhaseBugFix, PhaseRetest, PhaseIntegration, PhaseSmoke,
	PhaseDeployment,
}

// ParsePhase resolves a phase name. Spaces and dashes are treated as
// underscores and a handful of spellings used in effort sheets are accepted.
func ParsePhase(s string) (Phase, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	switch key {
	case "analysis", "setup":
		return PhaseAnalysis, true
	case "design":
		return PhaseDesign, true
	case "qa_prep", "tc_prep", "test_prep":
		return PhaseQAPrep, true
	case "development", "dev_work":
		return PhaseDevelopment, true
	case "review", "code_review":
		return PhaseReview, true
	case "qa_testing", "qa_test", "testing":
		return PhaseQATesting, true
	case "bug_fix", "bug_fixes", "fixes":
		return PhaseBugFix, true
	case "retest", "re_test":
		return PhaseRetest, true
	case "integration":
		return PhaseIntegration, true
	case "smoke", "smoke_test":
		return PhaseSmoke, true
	case "deployment", "deploy", "final_deployment":
		return PhaseDeployment, true
	default:
		return "", false
	}
}

// BacklogItem is one row of the effort table supplied by the caller.
type BacklogItem struct {
	Task  string  `json:"task" yaml:"task"`
	Hint  string  `json:"hint,omitempty" yaml:"hint,omitempty"`
	Hours float64 `json:"hours" yaml:"hours"`
}

// EffortBlock is an atomic unit of estimated work bound to a sprint.
type EffortBlock struct {
	Index  int     `json:"index"`
	Sprint int     `json:"sprint"`
	Task   string  `json:"task"`
	Role   Role    `json:"role"`
	Hours  float64 `json:"hours"`
	Phase  Phase   `json:"phase"`
}

// DefaultBaseline returns the effort baseline used when no backlog is supplied.
func DefaultBaseline() []BacklogItem {
	return []BacklogItem{
		{Task: "Analysis Phase", Hint: string(PhaseAnalysis), Hours: 25},
		{Task: "TC Prep", Hint: string(PhaseQAPrep), Hours: 40},
		{Task: "Development Work", Hint: string(PhaseDevelopment), Hours: 150},
		{Task: "Code Review", Hint: string(PhaseReview), Hours: 20},
		{Task: "QA Testing", Hint: string(PhaseQATesting), Hours: 80},
		{Task: "Bug Fixes", Hint: string(PhaseBugFix), Hours: 30},
		{Task: "Deployment", Hint: string(PhaseDeployment), Hours: 6},
		{Task: "Smoke Test", Hint: string(PhaseSmoke), Hours: 8},
	}
}

// TotalHours sums the hours of the backlog.
func TotalHours(items []BacklogItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Hours
	}
	return total
}
