package allocation

import "github.com/kilianp07/sprintplan/core/model"

// DefaultCriticalThreshold is the headroom fraction under which an entry is
// flagged critical.
const DefaultCriticalThreshold = 0.1

// CriticalityEstimator flags entries whose owner is close to or beyond
// capacity in the entry's sprint.
type CriticalityEstimator struct {
	Threshold float64
	roster    model.Roster
	ledger    Ledger
	caps      Capacities
	index     map[string]int
}

// NewCriticalityEstimator builds an estimator. A non-positive threshold
// selects DefaultCriticalThreshold.
func NewCriticalityEstimator(roster model.Roster, ledger Ledger, caps Capacities, threshold float64) *CriticalityEstimator {
	if threshold <= 0 {
		threshold = DefaultCriticalThreshold
	}
	return &CriticalityEstimator{Threshold: threshold, roster: roster, ledger: ledger, caps: caps, index: rosterIndex(roster)}
}

// Mark sets the Critical flag of every entry in place. Backlog entries are
// never critical.
func (c *CriticalityEstimator) Mark(entries []model.Entry) {
	for i := range entries {
		entries[i].Critical = c.critical(entries[i])
	}
}

func (c *CriticalityEstimator) critical(e model.Entry) bool {
	if e.IsBacklog() {
		return false
	}
	idx, ok := c.index[e.Owner]
	if !ok {
		return false
	}
	capacity := c.caps.Capacity(e.Sprint, c.roster.Resources[idx].Role)
	headroom := capacity - c.ledger.Load(e.Sprint, idx)
	return headroom < c.Threshold*capacity
}
