package planner

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	planRuns       *prometheus.CounterVec
	planDuration   prometheus.Histogram
	planScore      prometheus.Gauge
	planOverflow   prometheus.Gauge
	planTransfers  prometheus.Counter
	optimizerSteps *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Histogram, prometheus.Gauge, prometheus.Gauge, prometheus.Counter, *prometheus.CounterVec) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sprintplan_plan_runs_total",
			Help: "Number of planning runs by result",
		},
		[]string{"result"},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sprintplan_plan_duration_seconds",
			Help:    "Duration of a planning run",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)
	score := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sprintplan_plan_score",
			Help: "Score of the last recorded plan",
		},
	)
	overflow := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sprintplan_plan_overflow_resources",
			Help: "Resources above capacity in the last recorded plan",
		},
	)
	transfers := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sprintplan_rebalance_transfers_total",
			Help: "Number of hour transfers performed by the rebalancer",
		},
	)
	steps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sprintplan_optimizer_steps_total",
			Help: "Sprint counts evaluated by the optimizer",
		},
		[]string{"met"},
	)
	return runs, dur, score, overflow, transfers, steps
}

func init() {
	planRuns, planDuration, planScore, planOverflow, planTransfers, optimizerSteps = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers planner metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(planRuns, planDuration, planScore, planOverflow, planTransfers, optimizerSteps)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	planRuns, planDuration, planScore, planOverflow, planTransfers, optimizerSteps = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
