package metrics

import "errors"

// MultiSink fans records out to several sinks. Every sink is called even
// when an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []PlanSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...PlanSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards the record to all sinks.
func (m *MultiSink) RecordPlan(rec PlanRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordPlan(rec))
	}
	return errors.Join(errs...)
}

// RecordUtilization forwards to sinks implementing UtilizationRecorder.
func (m *MultiSink) RecordUtilization(recs []UtilizationRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(UtilizationRecorder); ok {
			errs = append(errs, r.RecordUtilization(recs))
		}
	}
	return errors.Join(errs...)
}

// RecordOptimizerStep forwards to sinks implementing OptimizerRecorder.
func (m *MultiSink) RecordOptimizerStep(step OptimizerStep) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(OptimizerRecorder); ok {
			errs = append(errs, r.RecordOptimizerStep(step))
		}
	}
	return errors.Join(errs...)
}

// RecordOverflow forwards to sinks implementing OverflowRecorder.
func (m *MultiSink) RecordOverflow(rec OverflowRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(OverflowRecorder); ok {
			errs = append(errs, r.RecordOverflow(rec))
		}
	}
	return errors.Join(errs...)
}
