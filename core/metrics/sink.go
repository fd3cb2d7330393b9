package metrics

import "time"

// PlanRecord summarizes one planning run.
type PlanRecord struct {
	PlanID     string
	Source     string
	Sprints    int
	Blocks     int
	Entries    int
	Score      float64
	Completion float64
	CostDelta  float64
	Health     float64
	Cost       float64
	Overflow   int
	Unassigned int
	Transfers  int
	Duration   time.Duration
	Time       time.Time
}

// PlanSink records plan summaries.
type PlanSink interface {
	RecordPlan(rec PlanRecord) error
}

// UtilizationRecord is the load of one resource in one sprint.
type UtilizationRecord struct {
	PlanID   string
	Sprint   int
	Resource string
	Role     string
	Hours    float64
	Capacity float64
	Time     time.Time
}

// UtilizationRecorder records per-resource utilization.
type UtilizationRecorder interface {
	RecordUtilization(recs []UtilizationRecord) error
}

// OptimizerStep is one sprint count evaluated by the optimizer.
type OptimizerStep struct {
	Sprints  int
	Score    float64
	Overflow int
	Met      bool
	Time     time.Time
}

// OptimizerRecorder records optimizer steps.
type OptimizerRecorder interface {
	RecordOptimizerStep(step OptimizerStep) error
}

// OverflowRecord is a resource left above capacity by a plan.
type OverflowRecord struct {
	PlanID   string
	Sprint   int
	Resource string
	Role     string
	Hours    float64
	Capacity float64
	Time     time.Time
}

// OverflowRecorder records overloaded resources.
type OverflowRecorder interface {
	RecordOverflow(rec OverflowRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanRecord) error                 { return nil }
func (NopSink) RecordUtilization([]UtilizationRecord) error { return nil }
func (NopSink) RecordOptimizerStep(OptimizerStep) error     { return nil }
func (NopSink) RecordOverflow(OverflowRecord) error         { return nil }
