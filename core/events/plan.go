package events

import (
	"time"

	"github.com/kilianp07/sprintplan/core/model"
)

// PlanEvent is published once per completed planning run.
type PlanEvent struct {
	PlanID     string
	Sprints    int
	Blocks     int
	Entries    int
	Score      float64
	Overflow   int
	Unassigned int
	Transfers  int
	Duration   time.Duration
	Time       time.Time
}

// OverflowEvent is published for each (sprint, resource) left overloaded.
type OverflowEvent struct {
	PlanID   string
	Sprint   int
	Resource string
	Role     model.Role
	Hours    float64
	Capacity float64
}
