package phase

import (
	"sort"

	"github.com/kilianp07/sprintplan/core/model"
)

// Band is a span of sprints a phase can be scheduled into.
type Band int

const (
	// BandSetup is the first sprint.
	BandSetup Band = iota
	// BandBuild covers the development sprints.
	BandBuild
	// BandTest covers the sprints dedicated to QA testing.
	BandTest
	// BandRelease is the final sprint.
	BandRelease
)

// Sprints returns the sprint indices of the band for a plan of n sprints.
// Degenerate plans collapse bands onto the sprints that exist.
func (b Band) Sprints(n int) []int {
	if n <= 0 {
		return nil
	}
	switch b {
	case BandSetup:
		return []int{0}
	case BandBuild:
		switch {
		case n > 2:
			return span(1, n-2)
		case n == 2:
			return []int{1}
		default:
			return []int{0}
		}
	case BandTest:
		switch {
		case n > 3:
			return span(2, n-2)
		case n == 3:
			return []int{2}
		case n == 2:
			return []int{1}
		default:
			return []int{0}
		}
	case BandRelease:
		return []int{n - 1}
	}
	return nil
}

func span(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

// Share places a fraction of a phase's effort into a band. The fraction is
// split evenly across the band's sprints unless FirstOnly is set.
type Share struct {
	Band      Band
	Fraction  float64
	FirstOnly bool
}

// Rule tells which role performs a phase and how its effort is banded.
type Rule struct {
	Role   model.Role
	Shares []Share
}

// DefaultRules returns the phase-gate distribution of the planner.
func DefaultRules() map[model.Phase]Rule {
	release := func(r model.Role) Rule { return Rule{Role: r, Shares: []Share{{Band: BandRelease, Fraction: 1}}} }
	return map[model.Phase]Rule{
		model.PhaseAnalysis: {Role: model.RoleLead, Shares: []Share{{Band: BandSetup, Fraction: 1}}},
		model.PhaseDesign:   {Role: model.RoleDesign, Shares: []Share{{Band: BandSetup, Fraction: 1}}},
		model.PhaseQAPrep: {Role: model.RoleQA, Shares: []Share{
			{Band: BandSetup, Fraction: 0.6},
			{Band: BandTest, Fraction: 0.4, FirstOnly: true},
		}},
		model.PhaseDevelopment: {Role: model.RoleDev, Shares: []Share{{Band: BandBuild, Fraction: 1}}},
		model.PhaseReview: {Role: model.RoleLead, Shares: []Share{
			{Band: BandBuild, Fraction: 0.7},
			{Band: BandRelease, Fraction: 0.3},
		}},
		model.PhaseQATesting:   {Role: model.RoleQA, Shares: []Share{{Band: BandTest, Fraction: 1}}},
		model.PhaseBugFix:      release(model.RoleDev),
		model.PhaseRetest:      release(model.RoleQA),
		model.PhaseIntegration: release(model.RoleDev),
		model.PhaseSmoke:       release(model.RoleQA),
		model.PhaseDeployment:  release(model.RoleOps),
	}
}

// DefaultPhase is the phase assumed for work of role when no phase is named.
func DefaultPhase(role model.Role) model.Phase {
	switch role {
	case model.RoleQA:
		return model.PhaseQATesting
	case model.RoleLead:
		return model.PhaseReview
	case model.RoleOps:
		return model.PhaseDeployment
	case model.RoleDesign:
		return model.PhaseDesign
	default:
		return model.PhaseDevelopment
	}
}

// Policy turns a backlog into the ordered effort blocks of a plan.
type Policy struct {
	Rules      map[model.Phase]Rule
	Classifier Classifier
}

// DefaultPolicy returns the default rules with the keyword classifier.
func DefaultPolicy() Policy {
	return Policy{Rules: DefaultRules(), Classifier: NewKeywordClassifier()}
}

// Result is the outcome of distributing a backlog.
type Result struct {
	Blocks []model.EffortBlock
	// Excluded lists backlog rows dropped by the classifier.
	Excluded []model.BacklogItem
}

// Resolve returns the phase of item. An explicit phase hint wins, then a
// role hint, then the classifier. The boolean is false for excluded rows.
func (p Policy) Resolve(item model.BacklogItem) (model.Phase, bool) {
	if ph, ok := model.ParsePhase(item.Hint); ok {
		return ph, true
	}
	if role, ok := model.ParseRole(item.Hint); ok && role != model.RoleBacklog {
		return DefaultPhase(role), true
	}
	cls := p.Classifier
	if cls == nil {
		cls = NewKeywordClassifier()
	}
	role, keep := cls.Classify(item.Task)
	if !keep {
		return "", false
	}
	return DefaultPhase(role), true
}

type piece struct {
	sprint int
	hours  float64
}

// Distribute produces the effort blocks of items for a plan of n sprints.
// Blocks are ordered by sprint, then backlog order; each item's hours are
// conserved exactly across its blocks.
func (p Policy) Distribute(items []model.BacklogItem, n int) (Result, error) {
	if n <= 0 {
		return Result{}, model.Configf("sprints", "must be positive, got %d", n)
	}
	rules := p.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	var res Result
	for i, item := range items {
		if item.Hours < 0 {
			return Result{}, model.Configf("backlog", "item %d (%s) has negative hours", i, item.Task)
		}
		ph, ok := p.Resolve(item)
		if !ok {
			res.Excluded = append(res.Excluded, item)
			continue
		}
		if item.Hours == 0 {
			continue
		}
		rule, ok := rules[ph]
		if !ok || len(rule.Shares) == 0 {
			return Result{}, model.Configf("phase_rules", "no rule for phase %s", ph)
		}
		for _, pc := range split(item.Hours, rule.Shares, n) {
			res.Blocks = append(res.Blocks, model.EffortBlock{
				Sprint: pc.sprint,
				Task:   item.Task,
				Role:   rule.Role,
				Hours:  pc.hours,
				Phase:  ph,
			})
		}
	}
	sort.SliceStable(res.Blocks, func(a, b int) bool { return res.Blocks[a].Sprint < res.Blocks[b].Sprint })
	for i := range res.Blocks {
		res.Blocks[i].Index = i
	}
	return res, nil
}

// split spreads hours over the shares and merges pieces landing in the same
// sprint. The last piece absorbs floating point remainders.
func split(hours float64, shares []Share, n int) []piece {
	var pieces []piece
	at := make(map[int]int)
	add := func(sprint int, h float64) {
		if i, ok := at[sprint]; ok {
			pieces[i].hours += h
			return
		}
		at[sprint] = len(pieces)
		pieces = append(pieces, piece{sprint: sprint, hours: h})
	}
	for _, sh := range shares {
		sprints := sh.Band.Sprints(n)
		if sh.FirstOnly {
			sprints = sprints[:1]
		}
		portion := hours * sh.Fraction
		for _, s := range sprints {
			add(s, portion/float64(len(sprints)))
		}
	}
	var sum float64
	for _, pc := range pieces[:len(pieces)-1] {
		sum += pc.hours
	}
	pieces[len(pieces)-1].hours = hours - sum
	return pieces
}
