package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kilianp07/sprintplan/core/model"
)

func TestPlan_Spans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	p := newPlanner(t, Config{}, WithTracerProvider(tp))

	plan, err := p.Plan(context.Background(), twoFeatures())
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "planner.run", spans[0].Name())
	assert.Equal(t, "planner.plan", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Contains(t, spans[1].Attributes(), attribute.String("plan.id", plan.ID))

	in := twoFeatures()
	in.Roster = model.Roster{}
	_, err = p.Plan(context.Background(), in)
	require.Error(t, err)
	spans = rec.Ended()
	require.Len(t, spans, 4)
	assert.Equal(t, codes.Error, spans[3].Status().Code)
	assert.NotEmpty(t, spans[3].Events(), "error recorded as span event")
}

func TestOptimize_Spans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	p := newPlanner(t, Config{MaxIterations: 3}, WithTracerProvider(tp))

	res, err := p.Optimize(context.Background(), bigFeature())
	require.NoError(t, err)

	var runs int
	var root sdktrace.ReadOnlySpan
	for _, s := range rec.Ended() {
		switch s.Name() {
		case "planner.run":
			runs++
		case "planner.optimize":
			root = s
		}
	}
	assert.Equal(t, 3, runs)
	require.NotNil(t, root)
	assert.Contains(t, root.Attributes(), attribute.Int("optimizer.recommended", res.Recommended))
}
