package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kilianp07/sprintplan/core/allocation"
	"github.com/kilianp07/sprintplan/core/capacity"
	"github.com/kilianp07/sprintplan/core/events"
	"github.com/kilianp07/sprintplan/core/logger"
	"github.com/kilianp07/sprintplan/core/metrics"
	"github.com/kilianp07/sprintplan/core/model"
	"github.com/kilianp07/sprintplan/core/monitoring"
	"github.com/kilianp07/sprintplan/core/phase"
	"github.com/kilianp07/sprintplan/core/planner/logging"
	"github.com/kilianp07/sprintplan/core/scoring"
	"github.com/kilianp07/sprintplan/internal/eventbus"
)

// Planner runs the allocation pipeline and records its outcome.
type Planner struct {
	cfg      Config
	required []model.Role
	policy   phase.Policy
	scorer   scoring.Scorer
	log      logger.Logger
	bus      eventbus.EventBus
	store    logging.Store
	sink     metrics.PlanSink
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(p *Planner) { p.log = logger.OrNop(l) } }

// WithBus publishes plan and optimizer events on bus.
func WithBus(bus eventbus.EventBus) Option { return func(p *Planner) { p.bus = bus } }

// WithStore appends a record of every run to store.
func WithStore(s logging.Store) Option { return func(p *Planner) { p.store = s } }

// WithSink forwards plan summaries to sink. Sinks that also implement
// metrics.UtilizationRecorder or metrics.OptimizerRecorder receive those too.
func WithSink(s metrics.PlanSink) Option { return func(p *Planner) { p.sink = s } }

// WithPolicy replaces the default phase policy.
func WithPolicy(pol phase.Policy) Option { return func(p *Planner) { p.policy = pol } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(p *Planner) { p.now = now } }

// New validates cfg and returns a Planner.
func New(cfg Config, opts ...Option) (*Planner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planner config: %w", err)
	}
	required, _ := cfg.requiredRoles()
	p := &Planner{
		cfg:      cfg,
		required: required,
		policy:   phase.DefaultPolicy(),
		scorer:   scoring.New(cfg.Weights),
		log:      logger.NopLogger{},
		sink:     metrics.NopSink{},
		tracer:   defaultTracer(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Config returns the effective configuration.
func (p *Planner) Config() Config { return p.cfg }

// Plan runs the pipeline once for the calendar's sprint count.
func (p *Planner) Plan(ctx context.Context, in Input) (plan *Plan, err error) {
	ctx, span := p.tracer.Start(ctx, "planner.plan", trace.WithAttributes(attribute.String("plan.source", in.Source)))
	defer func() { endSpan(span, err) }()

	start := p.now()
	plan, err = p.run(ctx, in)
	if err != nil {
		p.fail(err)
		return nil, err
	}
	span.SetAttributes(planAttrs(plan)...)
	p.record(ctx, plan, logging.KindPlan, p.now().Sub(start))
	return plan, nil
}

// run executes the pipeline without side effects. It is safe to call
// concurrently.
func (p *Planner) run(ctx context.Context, in Input) (_ *Plan, err error) {
	_, span := p.tracer.Start(ctx, "planner.run", trace.WithAttributes(attribute.Int("calendar.sprints", in.Calendar.Sprints)))
	defer func() { endSpan(span, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.validate(in); err != nil {
		return nil, err
	}
	table, err := capacity.Compute(in.Calendar)
	if err != nil {
		return nil, err
	}
	policy := p.policy
	if in.Classifier != nil {
		policy.Classifier = in.Classifier
	}
	dist, err := policy.Distribute(in.Backlog, table.Len())
	if err != nil {
		return nil, err
	}

	n := table.Len()
	resolver := allocation.NewResolver(in.Roster, in.Overrides, in.Availability)
	ledger := allocation.NewLoadLedger(n, in.Roster.Len())
	diag := allocation.Diagnostics{Excluded: dist.Excluded}
	entries := allocation.NewGreedyAssigner(in.Roster, resolver, ledger).Assign(dist.Blocks, &diag)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, diag.Transfers = allocation.NewRebalancer(in.Roster, resolver, ledger, table).Rebalance(entries)
	allocation.NewCriticalityEstimator(in.Roster, ledger, table, p.cfg.CriticalThreshold).Mark(entries)
	diag.Overloads = allocation.FindOverloads(ledger, in.Roster, table, n)

	plan := &Plan{
		ID:          uuid.NewString(),
		Source:      in.Source,
		CreatedAt:   p.now().UTC(),
		Sprints:     table.Sprints(),
		Capacity:    table.Rows(),
		Blocks:      dist.Blocks,
		Entries:     entries,
		Diagnostics: diag,
		roster:      in.Roster,
		table:       table,
		backlog:     in.Backlog,
		scorer:      p.scorer,
		critical:    p.cfg.CriticalThreshold,
	}
	plan.finish(ledger)
	return plan, nil
}

func (p *Planner) fail(err error) {
	result := "error"
	if errors.Is(err, model.ErrConfiguration) {
		result = "config_error"
	} else {
		monitoring.Capture(err, "planner")
	}
	planRuns.WithLabelValues(result).Inc()
	p.log.Errorf("planning failed: %v", err)
}

// record pushes the outcome of a successful run to metrics, the log store,
// the sink and the event bus. Failures are logged and never returned.
func (p *Planner) record(ctx context.Context, plan *Plan, kind logging.Kind, d time.Duration) {
	n := len(plan.Sprints)
	planRuns.WithLabelValues("ok").Inc()
	planDuration.Observe(d.Seconds())
	planScore.Set(plan.Score.Score)
	planOverflow.Set(float64(plan.Score.Overflow))
	planTransfers.Add(float64(len(plan.Diagnostics.Transfers)))

	p.log.Infow("plan computed", map[string]any{
		"plan_id":   plan.ID,
		"kind":      string(kind),
		"sprints":   n,
		"blocks":    len(plan.Blocks),
		"score":     plan.Score.Score,
		"overflow":  plan.Score.Overflow,
		"transfers": len(plan.Diagnostics.Transfers),
		"duration":  d.String(),
	})
	warnings := make([]string, 0, len(plan.Warnings))
	for _, w := range plan.Warnings {
		p.log.Warnf("%s: %s", w.Kind, w.Message)
		warnings = append(warnings, w.Message)
	}

	if p.store != nil {
		rec := logging.Record{
			Timestamp:  plan.CreatedAt,
			PlanID:     plan.ID,
			Kind:       kind,
			Sprints:    n,
			Blocks:     len(plan.Blocks),
			Score:      plan.Score.Score,
			Overflow:   plan.Score.Overflow,
			Unassigned: len(plan.Diagnostics.Unassigned),
			Resources:  plan.Owners(),
			Warnings:   warnings,
		}
		if err := p.store.Append(ctx, rec); err != nil {
			p.log.Errorf("append plan log: %v", err)
			monitoring.CaptureException(err, map[string]string{"component": "planner", "plan_id": plan.ID})
		}
	}

	p.recordSink(plan, d)
	p.publish(plan, d)
}

func (p *Planner) recordSink(plan *Plan, d time.Duration) {
	err := p.sink.RecordPlan(metrics.PlanRecord{
		PlanID:     plan.ID,
		Source:     plan.Source,
		Sprints:    len(plan.Sprints),
		Blocks:     len(plan.Blocks),
		Entries:    len(plan.Entries),
		Score:      plan.Score.Score,
		Completion: plan.Score.Completion,
		CostDelta:  plan.Score.CostDelta,
		Health:     plan.Score.Health,
		Cost:       plan.Score.Cost,
		Overflow:   plan.Score.Overflow,
		Unassigned: len(plan.Diagnostics.Unassigned),
		Transfers:  len(plan.Diagnostics.Transfers),
		Duration:   d,
		Time:       plan.CreatedAt,
	})
	if err != nil {
		p.log.Errorf("record plan: %v", err)
	}
	ur, ok := p.sink.(metrics.UtilizationRecorder)
	if !ok {
		return
	}
	recs := make([]metrics.UtilizationRecord, 0, len(plan.Utilization))
	for _, u := range plan.Utilization {
		recs = append(recs, metrics.UtilizationRecord{
			PlanID:   plan.ID,
			Sprint:   u.Sprint,
			Resource: u.Owner,
			Role:     u.Role.String(),
			Hours:    u.Hours,
			Capacity: u.Capacity,
			Time:     plan.CreatedAt,
		})
	}
	if err := ur.RecordUtilization(recs); err != nil {
		p.log.Errorf("record utilization: %v", err)
	}
}

func (p *Planner) publish(plan *Plan, d time.Duration) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(events.PlanEvent{
		PlanID:     plan.ID,
		Sprints:    len(plan.Sprints),
		Blocks:     len(plan.Blocks),
		Entries:    len(plan.Entries),
		Score:      plan.Score.Score,
		Overflow:   plan.Score.Overflow,
		Unassigned: len(plan.Diagnostics.Unassigned),
		Transfers:  len(plan.Diagnostics.Transfers),
		Duration:   d,
		Time:       plan.CreatedAt,
	})
	for _, o := range plan.Diagnostics.Overloads {
		p.bus.Publish(events.OverflowEvent{
			PlanID:   plan.ID,
			Sprint:   o.Sprint,
			Resource: o.Resource,
			Role:     o.Role,
			Hours:    o.Hours,
			Capacity: o.Capacity,
		})
	}
}
