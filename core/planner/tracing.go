package planner

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kilianp07/sprintplan/core/planner"

// WithTracerProvider records spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Planner) { p.tracer = tp.Tracer(tracerName) }
}

func defaultTracer() trace.Tracer { return otel.Tracer(tracerName) }

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func planAttrs(plan *Plan) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("plan.id", plan.ID),
		attribute.Int("plan.sprints", len(plan.Sprints)),
		attribute.Int("plan.blocks", len(plan.Blocks)),
		attribute.Float64("plan.score", plan.Score.Score),
		attribute.Int("plan.overflow", plan.Score.Overflow),
	}
}
