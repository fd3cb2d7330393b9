package allocation

import (
	"github.com/kilianp07/sprintplan/core/model"
)

// GreedyAssigner places effort blocks in order on the least loaded eligible
// resource of their sprint.
type GreedyAssigner struct {
	roster   model.Roster
	resolver *Resolver
	ledger   *LoadLedger
}

// NewGreedyAssigner builds an assigner recording placements in ledger.
func NewGreedyAssigner(roster model.Roster, resolver *Resolver, ledger *LoadLedger) *GreedyAssigner {
	return &GreedyAssigner{roster: roster, resolver: resolver, ledger: ledger}
}

// Assign places every block and returns one entry per block, in block order.
// Blocks whose role has no resource become backlog entries and are reported
// in diag together with degraded placements and ignored overrides.
func (a *GreedyAssigner) Assign(blocks []model.EffortBlock, diag *Diagnostics) []model.Entry {
	entries := make([]model.Entry, 0, len(blocks))
	for _, b := range blocks {
		res := a.resolver.Resolve(b.Sprint, b.Task, b.Role)
		if res.IgnoredOverride != "" {
			diag.IgnoredOverrides = append(diag.IgnoredOverrides, IgnoredOverride{Sprint: b.Sprint, Task: b.Task, Owner: res.IgnoredOverride})
		}
		e := model.Entry{
			Sprint: b.Sprint,
			Task:   b.Task,
			Role:   b.Role,
			Hours:  b.Hours,
			Phase:  b.Phase,
			Block:  b.Index,
		}
		idx, ok := LeastLoaded(a.ledger, b.Sprint, res.Candidates)
		if !ok {
			e.Owner = model.Unassigned
			e.Role = model.RoleBacklog
			diag.Unassigned = append(diag.Unassigned, b)
			entries = append(entries, e)
			continue
		}
		e.Owner = a.roster.Resources[idx].ID
		switch res.Mode {
		case ModeOverride:
			e.Pinned = true
		case ModeDegraded:
			diag.Degraded = append(diag.Degraded, Degraded{Sprint: b.Sprint, Task: b.Task, Role: b.Role, Owner: e.Owner})
		}
		a.ledger.Add(b.Sprint, idx, b.Hours)
		entries = append(entries, e)
	}
	return entries
}
