package planner

import (
	"github.com/kilianp07/sprintplan/core/model"
	"github.com/kilianp07/sprintplan/core/phase"
)

// Input is everything a planning run needs.
type Input struct {
	// Source labels the run in logs and sinks, usually the scenario name.
	Source       string
	Backlog      []model.BacklogItem
	Roster       model.Roster
	Calendar     model.Calendar
	Overrides    model.OverrideMap
	Availability model.AvailabilityMap
	// Classifier replaces the keyword classifier when set.
	Classifier phase.Classifier
}

func (p *Planner) validate(in Input) error {
	if in.Roster.Len() == 0 {
		return model.Configf("roster", "at least one resource is required")
	}
	if err := in.Roster.Validate(); err != nil {
		return model.Configf("roster", "%v", err)
	}
	for _, role := range p.required {
		if len(in.Roster.Pool(role)) == 0 {
			return model.Configf("roster", "no resource with role %s", role)
		}
	}
	for i, item := range in.Backlog {
		if item.Task == "" {
			return model.Configf("backlog", "row %d: task is required", i)
		}
		if item.Hours < 0 {
			return model.Configf("backlog", "task %s: hours must not be negative", item.Task)
		}
	}
	return nil
}
