package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sprintplan/core/factory"
)

type countSink struct {
	plans, util, steps int
	err                error
}

func (c *countSink) RecordPlan(PlanRecord) error {
	c.plans++
	return c.err
}

func (c *countSink) RecordUtilization([]UtilizationRecord) error {
	c.util++
	return nil
}

func (c *countSink) RecordOptimizerStep(OptimizerStep) error {
	c.steps++
	return nil
}

type planOnly struct{ n int }

func (p *planOnly) RecordPlan(PlanRecord) error {
	p.n++
	return nil
}

func TestMultiSinkForwards(t *testing.T) {
	boom := errors.New("boom")
	a := &countSink{err: boom}
	b := &countSink{}
	c := &planOnly{}
	m := NewMultiSink(a, b, c)

	err := m.RecordPlan(PlanRecord{PlanID: "p"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, b.plans, "later sinks still called")
	assert.Equal(t, 1, c.n)

	require.NoError(t, m.RecordUtilization(nil))
	require.NoError(t, m.RecordOptimizerStep(OptimizerStep{}))
	assert.Equal(t, 1, a.util)
	assert.Equal(t, 1, b.steps)
}

func TestNewPlanSink(t *testing.T) {
	require.NoError(t, RegisterPlanSink("test-count", func(map[string]any) (PlanSink, error) {
		return &countSink{}, nil
	}))

	s, err := NewPlanSink(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	s, err = NewPlanSink([]factory.ModuleConfig{{Type: "test-count"}})
	require.NoError(t, err)
	assert.IsType(t, &countSink{}, s)

	s, err = NewPlanSink([]factory.ModuleConfig{{Type: "test-count"}, {Type: "test-count"}})
	require.NoError(t, err)
	m, ok := s.(*MultiSink)
	require.True(t, ok)
	assert.Len(t, m.Sinks, 2)

	_, err = NewPlanSink([]factory.ModuleConfig{{Type: "missing"}})
	assert.Error(t, err)
	assert.Contains(t, SinkTypes(), "test-count")
}
