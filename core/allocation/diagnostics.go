package allocation

import (
	"fmt"

	"github.com/kilianp07/sprintplan/core/model"
)

// Overload is a resource whose load exceeds its sprint capacity.
type Overload struct {
	Sprint   int        `json:"sprint"`
	Resource string     `json:"resource"`
	Role     model.Role `json:"role"`
	Hours    float64    `json:"hours"`
	Capacity float64    `json:"capacity"`
}

// Degraded records a placement made while every resource of the role was
// marked unavailable.
type Degraded struct {
	Sprint int        `json:"sprint"`
	Task   string     `json:"task"`
	Role   model.Role `json:"role"`
	Owner  string     `json:"owner"`
}

// IgnoredOverride is an override naming a resource missing from the roster.
type IgnoredOverride struct {
	Sprint int    `json:"sprint"`
	Task   string `json:"task"`
	Owner  string `json:"owner"`
}

// Transfer is an amount of hours moved by the rebalancer.
type Transfer struct {
	Sprint int        `json:"sprint"`
	Role   model.Role `json:"role"`
	Task   string     `json:"task"`
	Block  int        `json:"block"`
	From   string     `json:"from"`
	To     string     `json:"to"`
	Hours  float64    `json:"hours"`
}

// Diagnostics collects the non-fatal findings of a planning run.
type Diagnostics struct {
	Overloads        []Overload          `json:"overloads"`
	Unassigned       []model.EffortBlock `json:"unassigned"`
	Degraded         []Degraded          `json:"degraded,omitempty"`
	IgnoredOverrides []IgnoredOverride   `json:"ignored_overrides,omitempty"`
	Transfers        []Transfer          `json:"transfers,omitempty"`
	Excluded         []model.BacklogItem `json:"excluded,omitempty"`
}

// WarningKind classifies a warning.
type WarningKind string

const (
	WarnUnassignable    WarningKind = "unassignable_block"
	WarnOverflow        WarningKind = "overflow"
	WarnDegraded        WarningKind = "degraded_eligibility"
	WarnOverrideIgnored WarningKind = "override_ignored"
)

// Warning is a flattened, printable diagnostic.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Sprint  int         `json:"sprint"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}

// Warnings flattens the diagnostics into a single list.
func (d Diagnostics) Warnings() []Warning {
	var out []Warning
	for _, b := range d.Unassigned {
		out = append(out, Warning{Kind: WarnUnassignable, Sprint: b.Sprint, Subject: b.Task,
			Message: fmt.Sprintf("%.1fh of %s work has no %s resource", b.Hours, b.Phase, b.Role)})
	}
	for _, o := range d.Overloads {
		out = append(out, Warning{Kind: WarnOverflow, Sprint: o.Sprint, Subject: o.Resource,
			Message: fmt.Sprintf("%s in %s: %.1fh / %.1fh", o.Resource, model.SprintName(o.Sprint), o.Hours, o.Capacity)})
	}
	for _, g := range d.Degraded {
		out = append(out, Warning{Kind: WarnDegraded, Sprint: g.Sprint, Subject: g.Task,
			Message: fmt.Sprintf("no available %s resource, placed on %s", g.Role, g.Owner)})
	}
	for _, i := range d.IgnoredOverrides {
		out = append(out, Warning{Kind: WarnOverrideIgnored, Sprint: i.Sprint, Subject: i.Task,
			Message: fmt.Sprintf("override owner %s is not in the roster", i.Owner)})
	}
	return out
}

// OverflowedResources returns the number of distinct resources overloaded
// in at least one sprint.
func (d Diagnostics) OverflowedResources() int {
	seen := make(map[string]struct{}, len(d.Overloads))
	for _, o := range d.Overloads {
		seen[o.Resource] = struct{}{}
	}
	return len(seen)
}

// FindOverloads lists every (sprint, resource) whose load exceeds capacity.
func FindOverloads(l Ledger, roster model.Roster, caps Capacities, sprints int) []Overload {
	var out []Overload
	for s := 0; s < sprints; s++ {
		for i, res := range roster.Resources {
			load := l.Load(s, i)
			c := caps.Capacity(s, res.Role)
			if load > c+eps {
				out = append(out, Overload{Sprint: s, Resource: res.ID, Role: res.Role, Hours: load, Capacity: c})
			}
		}
	}
	return out
}
