// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - PlanEvent: a planning run finished
//   - OverflowEvent: a resource ends a run above capacity
//   - OptimizerEvent: the sprint count optimizer evaluated a count
package events
