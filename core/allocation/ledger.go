package allocation

import "github.com/kilianp07/sprintplan/core/model"

// eps absorbs floating point noise when comparing hours.
const eps = 1e-9

// Ledger exposes read access to cumulative assigned hours.
type Ledger interface {
	Load(sprint, resource int) float64
}

// Capacities provides the per-resource capacity of a role in a sprint.
// *capacity.Table implements it.
type Capacities interface {
	Capacity(sprint int, role model.Role) float64
}

// LoadLedger is an arena of assigned hours indexed by sprint and roster
// position. It is owned by a single planning run.
type LoadLedger struct {
	resources int
	hours     []float64
}

// NewLoadLedger allocates a zeroed ledger.
func NewLoadLedger(sprints, resources int) *LoadLedger {
	return &LoadLedger{resources: resources, hours: make([]float64, sprints*resources)}
}

// LedgerFromEntries rebuilds the load ledger of a set of entries. Entries
// owned by resources absent from the roster are ignored.
func LedgerFromEntries(entries []model.Entry, roster model.Roster, sprints int) *LoadLedger {
	l := NewLoadLedger(sprints, roster.Len())
	index := rosterIndex(roster)
	for _, e := range entries {
		if e.IsBacklog() || e.Sprint < 0 || e.Sprint >= sprints {
			continue
		}
		if r, ok := index[e.Owner]; ok {
			l.Add(e.Sprint, r, e.Hours)
		}
	}
	return l
}

// Sprints returns the number of sprints tracked.
func (l *LoadLedger) Sprints() int {
	if l.resources == 0 {
		return 0
	}
	return len(l.hours) / l.resources
}

// Resources returns the number of resources tracked.
func (l *LoadLedger) Resources() int { return l.resources }

// Load implements Ledger.
func (l *LoadLedger) Load(sprint, resource int) float64 {
	return l.hours[sprint*l.resources+resource]
}

// Add records hours on a resource.
func (l *LoadLedger) Add(sprint, resource int, hours float64) {
	l.hours[sprint*l.resources+resource] += hours
}

// Move transfers hours between two resources of the same sprint.
func (l *LoadLedger) Move(sprint, from, to int, hours float64) {
	l.Add(sprint, from, -hours)
	l.Add(sprint, to, hours)
}

// LeastLoaded returns the candidate with the smallest load in sprint. Ties
// go to the earliest candidate, so callers pass candidates in roster order.
func LeastLoaded(l Ledger, sprint int, candidates []int) (int, bool) {
	if len(candidates) == 0 {
		return -1, false
	}
	best := candidates[0]
	bestLoad := l.Load(sprint, best)
	for _, c := range candidates[1:] {
		if load := l.Load(sprint, c); load < bestLoad {
			best, bestLoad = c, load
		}
	}
	return best, true
}

func rosterIndex(r model.Roster) map[string]int {
	m := make(map[string]int, r.Len())
	for i, res := range r.Resources {
		m[res.ID] = i
	}
	return m
}
