package mqtt

import (
	"fmt"
	"strings"
)

// DefaultPrefix is the root of every topic published by the planner.
const DefaultPrefix = "sprintplan"

// Topics builds the topic names under a prefix.
type Topics struct {
	prefix string
}

// NewTopics trims trailing slashes from prefix.
func NewTopics(prefix string) Topics {
	return Topics{prefix: strings.TrimRight(prefix, "/")}
}

// Status carries the retained online/offline marker.
func (t Topics) Status() string { return t.prefix + "/status" }

// Plan carries the summary of a plan.
func (t Topics) Plan(planID string) string { return fmt.Sprintf("%s/plans/%s", t.prefix, planID) }

// Overflow carries the overloads of a resource.
func (t Topics) Overflow(resource string) string {
	return fmt.Sprintf("%s/overflow/%s", t.prefix, sanitize(resource))
}

// Optimizer carries optimizer steps.
func (t Topics) Optimizer() string { return t.prefix + "/optimizer" }

// sanitize replaces characters with a meaning in MQTT topic filters.
func sanitize(s string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_").Replace(s)
}
