package model

import "fmt"

// Entry is one row of the assignment ledger: hours of a task placed on an
// owner in a sprint. Block links the entry back to the effort block it was
// cut from; a rebalanced block is spread over several entries.
type Entry struct {
	Sprint   int     `json:"sprint"`
	Task     string  `json:"task"`
	Owner    string  `json:"owner"`
	Role     Role    `json:"role"`
	Hours    float64 `json:"hours"`
	Critical bool    `json:"critical"`
	Phase    Phase   `json:"phase,omitempty"`
	Block    int     `json:"block"`
	// Pinned is set when the owner comes from a manual override.
	Pinned bool `json:"pinned,omitempty"`
}

// IsBacklog reports whether the entry holds unplaced effort.
func (e Entry) IsBacklog() bool { return e.Role == RoleBacklog }

// SprintName returns the display label used for sprint i.
func SprintName(i int) string { return fmt.Sprintf("Sprint %d", i) }

// TaskKey addresses a task within a sprint.
type TaskKey struct {
	Sprint int    `json:"sprint" yaml:"sprint"`
	Task   string `json:"task" yaml:"task"`
}

// ResourceKey addresses a resource within a sprint.
type ResourceKey struct {
	Sprint   int    `json:"sprint" yaml:"sprint"`
	Resource string `json:"resource" yaml:"resource"`
}

// OverrideMap forces the owner of a task in a sprint.
type OverrideMap map[TaskKey]string

// AvailabilityMap marks resources unavailable for a sprint when true.
type AvailabilityMap map[ResourceKey]bool

// Unavailable reports whether resource is marked unavailable in sprint.
func (m AvailabilityMap) Unavailable(sprint int, resource string) bool {
	return m[ResourceKey{Sprint: sprint, Resource: resource}]
}

// Owner returns the forced owner for task in sprint, if any.
func (m OverrideMap) Owner(sprint int, task string) (string, bool) {
	o, ok := m[TaskKey{Sprint: sprint, Task: task}]
	return o, ok && o != ""
}
