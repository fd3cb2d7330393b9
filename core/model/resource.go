package model

import "fmt"

// Resource is a person (or team alias) able to absorb effort of one role.
type Resource struct {
	ID         string  `json:"id" yaml:"id"`
	Role       Role    `json:"role" yaml:"role"`
	HourlyRate float64 `json:"hourly_rate,omitempty" yaml:"hourly_rate,omitempty"`
}

// Roster is the ordered list of resources of a planning run. The order is
// significant: it breaks ties between equally loaded candidates.
type Roster struct {
	Resources []Resource `json:"resources" yaml:"resources"`
}

// NewRoster builds a roster from per-role identifier lists. Roles are
// appended in StaffRoles order so the result is deterministic.
func NewRoster(byRole map[Role][]string) Roster {
	var r Roster
	for _, role := range StaffRoles {
		for _, id := range byRole[role] {
			r.Resources = append(r.Resources, Resource{ID: id, Role: role})
		}
	}
	return r
}

// DefaultRoster mirrors the team the planner starts with when nothing is
// configured: three developers, one QA, one lead and a shared DevOps alias.
func DefaultRoster() Roster {
	return NewRoster(map[Role][]string{
		RoleDev:  {"D1", "D2", "D3"},
		RoleQA:   {"Q1"},
		RoleLead: {"L1"},
		RoleOps:  {"DevOps"},
	})
}

// Len returns the number of resources.
func (r Roster) Len() int { return len(r.Resources) }

// Pool returns the indices of the resources holding role, in roster order.
func (r Roster) Pool(role Role) []int {
	var idx []int
	for i, res := range r.Resources {
		if res.Role == role {
			idx = append(idx, i)
		}
	}
	return idx
}

// Index returns the position of the resource with the given ID.
func (r Roster) Index(id string) (int, bool) {
	for i, res := range r.Resources {
		if res.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Validate checks that every resource has a unique, non-empty ID and a staff role.
func (r Roster) Validate() error {
	seen := make(map[string]struct{}, len(r.Resources))
	for i, res := range r.Resources {
		if res.ID == "" {
			return fmt.Errorf("resource %d: id is required", i)
		}
		if res.ID == Unassigned {
			return fmt.Errorf("resource id %q is reserved", res.ID)
		}
		if _, ok := seen[res.ID]; ok {
			return fmt.Errorf("duplicate resource id %s", res.ID)
		}
		if res.Role == RoleBacklog || res.Role < RoleDev || res.Role > RoleBacklog {
			return fmt.Errorf("resource %s: invalid role %s", res.ID, res.Role)
		}
		if res.HourlyRate < 0 {
			return fmt.Errorf("resource %s: hourly rate must not be negative", res.ID)
		}
		seen[res.ID] = struct{}{}
	}
	return nil
}
