package allocation

import "github.com/kilianp07/sprintplan/core/model"

// Mode tells how a candidate set was obtained.
type Mode int

const (
	// ModeAvailable is the pool minus unavailable resources.
	ModeAvailable Mode = iota
	// ModeOverride is a single manually forced owner.
	ModeOverride
	// ModeDegraded is the full pool used because nobody was available.
	ModeDegraded
	// ModeEmpty means the role has no resources at all.
	ModeEmpty
)

func (m Mode) String() string {
	switch m {
	case ModeAvailable:
		return "available"
	case ModeOverride:
		return "override"
	case ModeDegraded:
		return "degraded"
	case ModeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Resolution is the candidate set of one (sprint, task, role) lookup.
type Resolution struct {
	Candidates []int
	Mode       Mode
	// IgnoredOverride holds an override owner missing from the roster.
	IgnoredOverride string
}

// Resolver computes eligible resources from the roster, manual overrides and
// availability. It never mutates its inputs.
type Resolver struct {
	roster       model.Roster
	index        map[string]int
	pools        map[model.Role][]int
	overrides    model.OverrideMap
	availability model.AvailabilityMap
}

// NewResolver indexes the roster by role.
func NewResolver(roster model.Roster, overrides model.OverrideMap, availability model.AvailabilityMap) *Resolver {
	pools := make(map[model.Role][]int, len(model.StaffRoles))
	for _, role := range model.StaffRoles {
		pools[role] = roster.Pool(role)
	}
	return &Resolver{
		roster:       roster,
		index:        rosterIndex(roster),
		pools:        pools,
		overrides:    overrides,
		availability: availability,
	}
}

// Pool returns every resource of role in roster order.
func (r *Resolver) Pool(role model.Role) []int { return r.pools[role] }

// Available reports whether the resource at idx can take work in sprint.
func (r *Resolver) Available(sprint, idx int) bool {
	return !r.availability.Unavailable(sprint, r.roster.Resources[idx].ID)
}

// Resolve returns the candidates for task in sprint. An override bypasses
// load balancing; otherwise unavailable resources are filtered out, falling
// back to the whole pool when that leaves nobody.
func (r *Resolver) Resolve(sprint int, task string, role model.Role) Resolution {
	var res Resolution
	if owner, ok := r.overrides.Owner(sprint, task); ok {
		if idx, known := r.index[owner]; known {
			return Resolution{Candidates: []int{idx}, Mode: ModeOverride}
		}
		res.IgnoredOverride = owner
	}
	pool := r.pools[role]
	if len(pool) == 0 {
		res.Mode = ModeEmpty
		return res
	}
	avail := make([]int, 0, len(pool))
	for _, idx := range pool {
		if r.Available(sprint, idx) {
			avail = append(avail, idx)
		}
	}
	if len(avail) == 0 {
		res.Candidates = append([]int(nil), pool...)
		res.Mode = ModeDegraded
		return res
	}
	res.Candidates = avail
	res.Mode = ModeAvailable
	return res
}
