package logging

import (
	"context"
	"time"
)

// Kind tells which operation produced a record.
type Kind string

const (
	KindPlan     Kind = "plan"
	KindOptimize Kind = "optimize"
)

// Record captures the outcome of one planning run.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	PlanID     string    `json:"plan_id"`
	Kind       Kind      `json:"kind"`
	Sprints    int       `json:"sprints"`
	Blocks     int       `json:"blocks"`
	Score      float64   `json:"score"`
	Overflow   int       `json:"overflow_count"`
	Unassigned int       `json:"unassigned"`
	// Resources lists every owner that received work.
	Resources []string `json:"resources"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Query defines filters for retrieving records. Zero values match all.
type Query struct {
	Start    time.Time
	End      time.Time
	Kind     Kind
	Resource string
	Limit    int
}

// Match reports whether r satisfies the filters other than Limit.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	if q.Resource == "" {
		return true
	}
	for _, id := range r.Resources {
		if id == q.Resource {
			return true
		}
	}
	return false
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// truncate keeps the most recent limit records.
func truncate(recs []Record, limit int) []Record {
	if limit > 0 && len(recs) > limit {
		return recs[len(recs)-limit:]
	}
	return recs
}
