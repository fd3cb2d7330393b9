package planner

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/sprintplan/core/events"
	"github.com/kilianp07/sprintplan/core/metrics"
	"github.com/kilianp07/sprintplan/core/planner/logging"
)

// Step is one sprint count evaluated by the optimizer.
type Step struct {
	Sprints  int     `json:"sprints"`
	Score    float64 `json:"score"`
	Overflow int     `json:"overflow_count"`
	Met      bool    `json:"met"`
}

// OptimizeResult holds the recommended sprint count and its plan.
type OptimizeResult struct {
	Recommended int `json:"recommended"`
	// Met is false when no count reached the target and the best scoring
	// count was returned instead.
	Met   bool   `json:"met"`
	Plan  *Plan  `json:"plan"`
	Steps []Step `json:"steps"`
}

// Optimize evaluates sprint counts from MinSprints upward, at most
// MaxIterations of them, and recommends the smallest count whose score
// reaches TargetScore with no overloaded resource. When none does, the
// highest scoring count wins, the smaller count on ties. Any failing run
// aborts the search.
func (p *Planner) Optimize(ctx context.Context, in Input) (_ *OptimizeResult, err error) {
	ctx, span := p.tracer.Start(ctx, "planner.optimize", trace.WithAttributes(
		attribute.Int("optimizer.min_sprints", p.cfg.MinSprints),
		attribute.Int("optimizer.max_iterations", p.cfg.MaxIterations),
	))
	defer func() { endSpan(span, err) }()

	start := p.now()
	counts := make([]int, p.cfg.MaxIterations)
	for i := range counts {
		counts[i] = p.cfg.MinSprints + i
	}
	plans := make([]*Plan, len(counts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, n := range counts {
		g.Go(func() error {
			cin := in
			cin.Calendar = in.Calendar.WithSprints(n)
			plan, err := p.run(gctx, cin)
			if err != nil {
				return fmt.Errorf("%d sprints: %w", n, err)
			}
			plans[i] = plan
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		p.fail(err)
		return nil, err
	}

	res := &OptimizeResult{Steps: make([]Step, 0, len(plans))}
	best := -1
	for i, plan := range plans {
		step := Step{
			Sprints:  counts[i],
			Score:    plan.Score.Score,
			Overflow: plan.Score.Overflow,
			Met:      p.meets(plan),
		}
		res.Steps = append(res.Steps, step)
		p.recordStep(step)
		if step.Met {
			best = i
			res.Met = true
			break
		}
		if best < 0 || plan.Score.Score > plans[best].Score.Score {
			best = i
		}
	}
	res.Recommended = counts[best]
	res.Plan = plans[best]
	span.SetAttributes(attribute.Int("optimizer.recommended", res.Recommended), attribute.Bool("optimizer.met", res.Met))
	if !res.Met {
		p.log.Warnf("no sprint count reached score %.2f without overflow, recommending %d (score %.3f)",
			p.cfg.TargetScore, res.Recommended, res.Plan.Score.Score)
	}
	p.record(ctx, res.Plan, logging.KindOptimize, p.now().Sub(start))
	return res, nil
}

func (p *Planner) meets(plan *Plan) bool {
	return plan.Score.Overflow == 0 && plan.Score.Score >= p.cfg.TargetScore
}

func (p *Planner) recordStep(step Step) {
	optimizerSteps.WithLabelValues(fmt.Sprint(step.Met)).Inc()
	p.log.Debugw("optimizer step", map[string]any{
		"sprints":  step.Sprints,
		"score":    step.Score,
		"overflow": step.Overflow,
		"met":      step.Met,
	})
	if r, ok := p.sink.(metrics.OptimizerRecorder); ok {
		if err := r.RecordOptimizerStep(metrics.OptimizerStep{
			Sprints:  step.Sprints,
			Score:    step.Score,
			Overflow: step.Overflow,
			Met:      step.Met,
			Time:     p.now().UTC(),
		}); err != nil {
			p.log.Errorf("record optimizer step: %v", err)
		}
	}
	if p.bus != nil {
		p.bus.Publish(events.OptimizerEvent{
			Sprints:  step.Sprints,
			Score:    step.Score,
			Overflow: step.Overflow,
			Met:      step.Met,
		})
	}
}
