package planner

import (
	"sort"
	"time"

	"github.com/kilianp07/sprintplan/core/allocation"
	"github.com/kilianp07/sprintplan/core/capacity"
	"github.com/kilianp07/sprintplan/core/model"
	"github.com/kilianp07/sprintplan/core/scoring"
)

// Totals compares the backlog effort with what the plan placed.
type Totals struct {
	BaselineHours   float64 `json:"baseline_hours"`
	PlannedHours    float64 `json:"planned_hours"`
	UnassignedHours float64 `json:"unassigned_hours"`
	ExcludedHours   float64 `json:"excluded_hours"`
	Delta           float64 `json:"delta"`
	Overloaded      int     `json:"overloaded"`
}

// UtilizationRow is the load of one resource in one sprint.
type UtilizationRow struct {
	Sprint   int        `json:"sprint"`
	Owner    string     `json:"owner"`
	Role     model.Role `json:"role"`
	Hours    float64    `json:"hours"`
	Capacity float64    `json:"capacity"`
	Percent  float64    `json:"percent"`
}

// Plan is the result of one planning run.
type Plan struct {
	ID          string                 `json:"id"`
	Source      string                 `json:"source,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	Sprints     []model.Sprint         `json:"sprints"`
	Capacity    []capacity.Row         `json:"capacity"`
	Blocks      []model.EffortBlock    `json:"blocks"`
	Entries     []model.Entry          `json:"entries"`
	Diagnostics allocation.Diagnostics `json:"diagnostics"`
	Warnings    []allocation.Warning   `json:"warnings"`
	Score       scoring.Result         `json:"score"`
	Totals      Totals                 `json:"totals"`
	Utilization []UtilizationRow       `json:"utilization"`

	roster   model.Roster
	table    *capacity.Table
	backlog  []model.BacklogItem
	scorer   scoring.Scorer
	critical float64
}

// Roster returns the roster the plan was built for.
func (p *Plan) Roster() model.Roster { return p.roster }

// Owners returns the distinct resources that received work, in roster order.
func (p *Plan) Owners() []string {
	seen := make(map[string]bool)
	for _, e := range p.Entries {
		if !e.IsBacklog() {
			seen[e.Owner] = true
		}
	}
	var out []string
	for _, r := range p.roster.Resources {
		if seen[r.ID] {
			out = append(out, r.ID)
		}
	}
	return out
}

// Revalidate recomputes criticality, overloads, score and totals after the
// entries were edited by hand. Entries must reference known owners and
// sprints of the plan. The receiver is left untouched.
func (p *Plan) Revalidate(entries []model.Entry) (*Plan, error) {
	n := p.table.Len()
	out := append([]model.Entry(nil), entries...)
	for i, e := range out {
		if e.Sprint < 0 || e.Sprint >= n {
			return nil, model.Configf("entries", "row %d: sprint %d out of range", i, e.Sprint)
		}
		if e.IsBacklog() {
			continue
		}
		if _, ok := p.roster.Index(e.Owner); !ok {
			return nil, model.Configf("entries", "row %d: unknown owner %s", i, e.Owner)
		}
		if e.Hours < 0 {
			return nil, model.Configf("entries", "row %d: hours must not be negative", i)
		}
	}
	ledger := allocation.LedgerFromEntries(out, p.roster, n)
	allocation.NewCriticalityEstimator(p.roster, ledger, p.table, p.critical).Mark(out)

	next := *p
	next.Entries = out
	next.Diagnostics.Overloads = allocation.FindOverloads(ledger, p.roster, p.table, n)
	next.Diagnostics.Transfers = nil
	next.Diagnostics.Unassigned = nil
	for _, e := range out {
		if e.IsBacklog() {
			next.Diagnostics.Unassigned = append(next.Diagnostics.Unassigned, model.EffortBlock{
				Index: e.Block, Sprint: e.Sprint, Task: e.Task, Role: e.Role, Hours: e.Hours, Phase: e.Phase,
			})
		}
	}
	next.finish(ledger)
	return &next, nil
}

// finish derives the score, warnings, totals and utilization from the
// entries and diagnostics.
func (p *Plan) finish(ledger allocation.Ledger) {
	n := p.table.Len()
	p.Warnings = p.Diagnostics.Warnings()
	p.Score = p.scorer.Score(scoring.Input{
		Entries:  p.Entries,
		Roster:   p.roster,
		Ledger:   ledger,
		Caps:     p.table,
		Sprints:  n,
		Overflow: p.Diagnostics.OverflowedResources(),
	})
	p.Totals = totals(p.backlog, p.Entries, p.Diagnostics)
	p.Utilization = make([]UtilizationRow, 0, n*p.roster.Len())
	for s := 0; s < n; s++ {
		for i, r := range p.roster.Resources {
			row := UtilizationRow{
				Sprint:   s,
				Owner:    r.ID,
				Role:     r.Role,
				Hours:    ledger.Load(s, i),
				Capacity: p.table.Capacity(s, r.Role),
			}
			if row.Capacity > 0 {
				row.Percent = row.Hours / row.Capacity * 100
			}
			p.Utilization = append(p.Utilization, row)
		}
	}
}

func totals(backlog []model.BacklogItem, entries []model.Entry, diag allocation.Diagnostics) Totals {
	t := Totals{
		BaselineHours: model.TotalHours(backlog),
		ExcludedHours: model.TotalHours(diag.Excluded),
		Overloaded:    diag.OverflowedResources(),
	}
	for _, e := range entries {
		if e.IsBacklog() {
			t.UnassignedHours += e.Hours
			continue
		}
		t.PlannedHours += e.Hours
	}
	t.Delta = t.PlannedHours - t.BaselineHours
	return t
}

// EntriesBySprint groups entries per sprint, keeping their order.
func (p *Plan) EntriesBySprint() map[int][]model.Entry {
	out := make(map[int][]model.Entry)
	for _, e := range p.Entries {
		out[e.Sprint] = append(out[e.Sprint], e)
	}
	return out
}

// SortedEntries returns the entries ordered by sprint then owner, the order
// used by tabular exports.
func (p *Plan) SortedEntries() []model.Entry {
	out := append([]model.Entry(nil), p.Entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sprint != out[j].Sprint {
			return out[i].Sprint < out[j].Sprint
		}
		return out[i].Owner < out[j].Owner
	})
	return out
}
