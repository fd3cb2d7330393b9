package scoring

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/sprintplan/core/allocation"
	"github.com/kilianp07/sprintplan/core/model"
)

// Weights balances the three terms of the score.
type Weights struct {
	Completion float64 `json:"completion" yaml:"completion"`
	Cost       float64 `json:"cost" yaml:"cost"`
	Health     float64 `json:"health" yaml:"health"`
}

// DefaultWeights returns the 0.4/0.3/0.3 split.
func DefaultWeights() Weights {
	return Weights{Completion: 0.4, Cost: 0.3, Health: 0.3}
}

func (w Weights) sum() float64 { return w.Completion + w.Cost + w.Health }

// Input is everything the scorer reads from a finished run.
type Input struct {
	Entries  []model.Entry
	Roster   model.Roster
	Ledger   allocation.Ledger
	Caps     allocation.Capacities
	Sprints  int
	Overflow int
}

// Utilization summarizes load/capacity ratios over every (sprint, resource).
type Utilization struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Peak   float64 `json:"peak"`
}

// Result is a scored run.
type Result struct {
	Score        float64     `json:"score"`
	Completion   float64     `json:"completion"`
	CostDelta    float64     `json:"cost_delta"`
	Health       float64     `json:"health"`
	Overflow     int         `json:"overflow_count"`
	Cost         float64     `json:"cost"`
	BaselineCost float64     `json:"baseline_cost"`
	Utilization  Utilization `json:"utilization"`
}

// Scorer computes a scalar plan score in [0, 1].
type Scorer struct {
	Weights Weights
}

// New returns a scorer. Weights summing to zero or less fall back to
// DefaultWeights.
func New(w Weights) Scorer {
	if w.sum() <= 0 || w.Completion < 0 || w.Cost < 0 || w.Health < 0 {
		w = DefaultWeights()
	}
	return Scorer{Weights: w}
}

// Score evaluates a run.
func (s Scorer) Score(in Input) Result {
	w := s.Weights
	if w.sum() <= 0 {
		w = DefaultWeights()
	}
	res := Result{Overflow: in.Overflow}
	res.Completion = completion(in.Entries)
	res.Cost, res.BaselineCost = cost(in.Entries, in.Roster)
	res.CostDelta = costDelta(res.Cost, res.BaselineCost)
	res.Health = 1
	if n := in.Roster.Len(); n > 0 {
		res.Health = 1 - float64(in.Overflow)/float64(n)
	}
	res.Utilization = utilization(in)
	res.Score = (w.Completion*res.Completion + w.Cost*(1-res.CostDelta) + w.Health*res.Health) / w.sum()
	return res
}

// completion is the share of effort blocks placed on a real resource.
func completion(entries []model.Entry) float64 {
	total := make(map[int]bool)
	for _, e := range entries {
		placed := !e.IsBacklog()
		total[e.Block] = total[e.Block] || placed
	}
	if len(total) == 0 {
		return 1
	}
	var placed int
	for _, ok := range total {
		if ok {
			placed++
		}
	}
	return float64(placed) / float64(len(total))
}

// cost prices entries at their owner's rate; the baseline prices them at
// the cheapest rate of the entry's role.
func cost(entries []model.Entry, roster model.Roster) (actual, baseline float64) {
	cheapest := make(map[model.Role]float64)
	for _, role := range model.StaffRoles {
		pool := roster.Pool(role)
		if len(pool) == 0 {
			continue
		}
		low := roster.Resources[pool[0]].HourlyRate
		for _, idx := range pool[1:] {
			if r := roster.Resources[idx].HourlyRate; r < low {
				low = r
			}
		}
		cheapest[role] = low
	}
	for _, e := range entries {
		idx, ok := roster.Index(e.Owner)
		if !ok {
			continue
		}
		rate := roster.Resources[idx].HourlyRate
		actual += e.Hours * rate
		if low, ok := cheapest[e.Role]; ok && low < rate {
			rate = low
		}
		baseline += e.Hours * rate
	}
	return actual, baseline
}

func costDelta(actual, baseline float64) float64 {
	switch {
	case actual <= baseline:
		return 0
	case baseline == 0:
		return 1
	}
	d := (actual - baseline) / baseline
	if d > 1 {
		return 1
	}
	return d
}

func utilization(in Input) Utilization {
	if in.Ledger == nil || in.Caps == nil {
		return Utilization{}
	}
	ratios := make([]float64, 0, in.Sprints*in.Roster.Len())
	var u Utilization
	for s := 0; s < in.Sprints; s++ {
		for i, res := range in.Roster.Resources {
			c := in.Caps.Capacity(s, res.Role)
			if c <= 0 {
				continue
			}
			r := in.Ledger.Load(s, i) / c
			ratios = append(ratios, r)
			if r > u.Peak {
				u.Peak = r
			}
		}
	}
	switch len(ratios) {
	case 0:
	case 1:
		u.Mean = ratios[0]
	default:
		u.Mean, u.StdDev = stat.MeanStdDev(ratios, nil)
	}
	return u
}
