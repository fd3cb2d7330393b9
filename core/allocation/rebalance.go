package allocation

import (
	"github.com/kilianp07/sprintplan/core/model"
)

// Rebalancer moves excess hours off overloaded resources onto peers of the
// same role within the same sprint. Pinned entries never move and hours
// never cross sprints or roles.
type Rebalancer struct {
	roster   model.Roster
	resolver *Resolver
	ledger   *LoadLedger
	caps     Capacities
	index    map[string]int
}

// NewRebalancer builds a rebalancer operating on ledger.
func NewRebalancer(roster model.Roster, resolver *Resolver, ledger *LoadLedger, caps Capacities) *Rebalancer {
	return &Rebalancer{roster: roster, resolver: resolver, ledger: ledger, caps: caps, index: rosterIndex(roster)}
}

// Rebalance returns the adjusted entries and the transfers performed. Donors
// are visited in roster order and shed their most recently placed work
// first; the recipient is always the peer with the most headroom. Running it
// again on its own output changes nothing.
func (r *Rebalancer) Rebalance(entries []model.Entry) ([]model.Entry, []Transfer) {
	out := append([]model.Entry(nil), entries...)
	dead := make(map[int]bool)
	var transfers []Transfer
	for s := 0; s < r.ledger.Sprints(); s++ {
		for _, role := range model.StaffRoles {
			pool := r.resolver.Pool(role)
			if len(pool) < 2 {
				continue
			}
			c := r.caps.Capacity(s, role)
			for _, donor := range pool {
				for {
					excess := r.ledger.Load(s, donor) - c
					if excess <= eps {
						break
					}
					to, room := r.recipient(s, pool, donor, c)
					if to < 0 {
						break
					}
					moved, ts := r.shed(&out, dead, s, role, donor, to, minf(excess, room))
					transfers = append(transfers, ts...)
					if moved <= eps {
						break
					}
				}
			}
		}
	}
	if len(dead) == 0 {
		return out, transfers
	}
	kept := out[:0]
	for i, e := range out {
		if !dead[i] {
			kept = append(kept, e)
		}
	}
	return kept, transfers
}

// recipient returns the available peer with the largest positive headroom.
func (r *Rebalancer) recipient(sprint int, pool []int, donor int, c float64) (int, float64) {
	best, bestRoom := -1, eps
	for _, idx := range pool {
		if idx == donor || !r.resolver.Available(sprint, idx) {
			continue
		}
		if room := c - r.ledger.Load(sprint, idx); room > bestRoom {
			best, bestRoom = idx, room
		}
	}
	return best, bestRoom
}

// shed moves up to amount hours from donor to recipient, latest entries
// first, splitting the last entry touched when needed.
func (r *Rebalancer) shed(entries *[]model.Entry, dead map[int]bool, sprint int, role model.Role, donor, to int, amount float64) (float64, []Transfer) {
	from := r.roster.Resources[donor].ID
	dest := r.roster.Resources[to].ID
	var transfers []Transfer
	left := amount
	for i := len(*entries) - 1; i >= 0 && left > eps; i-- {
		e := (*entries)[i]
		if dead[i] || e.Pinned || e.Sprint != sprint || e.Role != role || e.Owner != from {
			continue
		}
		take := minf(left, e.Hours)
		full := take >= e.Hours-eps
		if full {
			take = e.Hours
		}
		j := r.mergeTarget(*entries, dead, sprint, dest, e.Block)
		switch {
		case full && j >= 0:
			(*entries)[j].Hours += take
			dead[i] = true
		case full:
			(*entries)[i].Owner = dest
		case j >= 0:
			(*entries)[i].Hours -= take
			(*entries)[j].Hours += take
		default:
			(*entries)[i].Hours -= take
			moved := e
			moved.Owner = dest
			moved.Hours = take
			moved.Critical = false
			*entries = append(*entries, moved)
		}
		r.ledger.Move(sprint, donor, to, take)
		transfers = append(transfers, Transfer{
			Sprint: sprint, Role: role, Task: e.Task, Block: e.Block,
			From: from, To: dest, Hours: take,
		})
		left -= take
	}
	return amount - left, transfers
}

func (r *Rebalancer) mergeTarget(entries []model.Entry, dead map[int]bool, sprint int, owner string, block int) int {
	for j, e := range entries {
		if !dead[j] && !e.Pinned && e.Sprint == sprint && e.Owner == owner && e.Block == block {
			return j
		}
	}
	return -1
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
