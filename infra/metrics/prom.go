package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/sprintplan/core/metrics"
)

// PromSink exposes plan summaries as Prometheus metrics.
type PromSink struct {
	plans       *prometheus.CounterVec
	score       *prometheus.GaugeVec
	utilization *prometheus.GaugeVec
	overflow    *prometheus.CounterVec
	optimizer   *prometheus.GaugeVec
}

// NewPromSink registers plan metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprintplan_plans_recorded_total",
			Help: "Total number of plans recorded",
		}, []string{"source", "overflow"}),
		score: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sprintplan_plan_score_ratio",
			Help: "Score terms of the last plan per source",
		}, []string{"source", "term"}),
		utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sprintplan_resource_utilization_ratio",
			Help: "Load over capacity of a resource in a sprint of the last plan",
		}, []string{"resource", "role", "sprint"}),
		overflow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprintplan_overflow_hours_total",
			Help: "Hours planned above capacity",
		}, []string{"resource", "role"}),
		optimizer: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sprintplan_optimizer_score_ratio",
			Help: "Score of each sprint count evaluated by the optimizer",
		}, []string{"sprints"}),
	}
	var err error
	if s.plans, err = register(reg, s.plans); err != nil {
		return nil, err
	}
	if s.score, err = register(reg, s.score); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, s.utilization); err != nil {
		return nil, err
	}
	if s.overflow, err = register(reg, s.overflow); err != nil {
		return nil, err
	}
	if s.optimizer, err = register(reg, s.optimizer); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlan counts the plan and publishes its score terms.
func (s *PromSink) RecordPlan(rec coremetrics.PlanRecord) error {
	src := source(rec.Source)
	s.plans.WithLabelValues(src, strconv.FormatBool(rec.Overflow > 0)).Inc()
	s.score.WithLabelValues(src, "score").Set(rec.Score)
	s.score.WithLabelValues(src, "completion").Set(rec.Completion)
	s.score.WithLabelValues(src, "cost_delta").Set(rec.CostDelta)
	s.score.WithLabelValues(src, "health").Set(rec.Health)
	return nil
}

// RecordUtilization replaces the utilization gauges with the given plan.
func (s *PromSink) RecordUtilization(recs []coremetrics.UtilizationRecord) error {
	s.utilization.Reset()
	for _, r := range recs {
		if r.Capacity <= 0 {
			continue
		}
		s.utilization.WithLabelValues(r.Resource, r.Role, strconv.Itoa(r.Sprint)).Set(r.Hours / r.Capacity)
	}
	return nil
}

// RecordOverflow adds the hours above capacity.
func (s *PromSink) RecordOverflow(rec coremetrics.OverflowRecord) error {
	if excess := rec.Hours - rec.Capacity; excess > 0 {
		s.overflow.WithLabelValues(rec.Resource, rec.Role).Add(excess)
	}
	return nil
}

// RecordOptimizerStep sets the score of the evaluated sprint count.
func (s *PromSink) RecordOptimizerStep(step coremetrics.OptimizerStep) error {
	s.optimizer.WithLabelValues(strconv.Itoa(step.Sprints)).Set(step.Score)
	return nil
}

func source(s string) string {
	if s == "" {
		return "default"
	}
	return s
}
