package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/sprintplan/core/planner"
	"github.com/kilianp07/sprintplan/infra/metrics"
	"github.com/kilianp07/sprintplan/internal/eventbus"
	"github.com/kilianp07/sprintplan/pkg/scenario"
)

// RunScenario plans sc against a private Prometheus registry and fails t
// when an expectation does not hold. The optimizer runs only when the
// scenario expects a sprint count.
func RunScenario(t *testing.T, sc *scenario.Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	bus := eventbus.New()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	metrics.StartEventCollector(ctx, bus, sink)

	p, err := planner.New(planner.Config{}, planner.WithSink(sink), planner.WithBus(bus))
	if err != nil {
		t.Fatalf("planner: %v", err)
	}
	in, err := sc.Input()
	if err != nil {
		t.Fatalf("input: %v", err)
	}

	plan, err := p.Plan(ctx, in)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	var opt *planner.OptimizeResult
	if sc.Expected.RecommendedSprints > 0 {
		if opt, err = p.Optimize(ctx, in); err != nil {
			t.Fatalf("optimize: %v", err)
		}
	}
	if failed := sc.Check(plan, opt); len(failed) > 0 {
		t.Errorf("scenario %s: %s", sc.Name, scenario.Summary(failed))
	}
}
