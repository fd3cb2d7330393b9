package events

// OptimizerEvent reports one evaluated sprint count. Err is set when the
// run failed.
type OptimizerEvent struct {
	Sprints  int
	Score    float64
	Overflow int
	Met      bool
	Err      error
}
