package phase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sprintplan/core/model"
)

func TestBandSprints(t *testing.T) {
	cases := []struct {
		n                            int
		setup, build, test, release []int
	}{
		{1, []int{0}, []int{0}, []int{0}, []int{0}},
		{2, []int{0}, []int{1}, []int{1}, []int{1}},
		{3, []int{0}, []int{1}, []int{2}, []int{2}},
		{4, []int{0}, []int{1, 2}, []int{2}, []int{3}},
		{6, []int{0}, []int{1, 2, 3, 4}, []int{2, 3, 4}, []int{5}},
	}
	for _, c := range cases {
		assert.Equal(t, c.setup, BandSetup.Sprints(c.n), "setup n=%d", c.n)
		assert.Equal(t, c.build, BandBuild.Sprints(c.n), "build n=%d", c.n)
		assert.Equal(t, c.test, BandTest.Sprints(c.n), "test n=%d", c.n)
		assert.Equal(t, c.release, BandRelease.Sprints(c.n), "release n=%d", c.n)
	}
	assert.Nil(t, BandSetup.Sprints(0))
}

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()
	cases := []struct {
		label string
		role  model.Role
		keep  bool
	}{
		{"Feature A", model.RoleDev, true},
		{"Regression testing", model.RoleQA, true},
		{"UAT support", model.RoleQA, true},
		{"bug bash", model.RoleQA, true},
		{"Write TC for login", model.RoleQA, true},
		{"SRS document", model.RoleDev, false},
		{"Requirement analysis", model.RoleDev, false},
	}
	for _, tc := range cases {
		role, keep := c.Classify(tc.label)
		assert.Equal(t, tc.keep, keep, tc.label)
		if keep {
			assert.Equal(t, tc.role, role, tc.label)
		}
	}
}

func TestResolveHints(t *testing.T) {
	p := DefaultPolicy()
	ph, ok := p.Resolve(model.BacklogItem{Task: "Analysis Phase", Hint: "analysis"})
	require.True(t, ok)
	assert.Equal(t, model.PhaseAnalysis, ph)

	ph, ok = p.Resolve(model.BacklogItem{Task: "Release pipeline", Hint: "Ops"})
	require.True(t, ok)
	assert.Equal(t, model.PhaseDeployment, ph)

	ph, ok = p.Resolve(model.BacklogItem{Task: "Login QA"})
	require.True(t, ok)
	assert.Equal(t, model.PhaseQATesting, ph)

	_, ok = p.Resolve(model.BacklogItem{Task: "Analysis of logs"})
	assert.False(t, ok)

	p.Classifier = ClassifierFunc(func(string) (model.Role, bool) { return model.RoleDesign, true })
	ph, ok = p.Resolve(model.BacklogItem{Task: "Mockups", Hint: "whatever"})
	require.True(t, ok)
	assert.Equal(t, model.PhaseDesign, ph)
}

func sumByItem(blocks []model.EffortBlock) map[string]float64 {
	out := make(map[string]float64)
	for _, b := range blocks {
		out[b.Task] += b.Hours
	}
	return out
}

func TestDistributeDefaultBaselineFourSprints(t *testing.T) {
	res, err := DefaultPolicy().Distribute(model.DefaultBaseline(), 4)
	require.NoError(t, err)
	require.Empty(t, res.Excluded)

	type want struct {
		sprint int
		task   string
		role   model.Role
		hours  float64
	}
	expected := []want{
		{0, "Analysis Phase", model.RoleLead, 25},
		{0, "TC Prep", model.RoleQA, 24},
		{1, "Development Work", model.RoleDev, 75},
		{1, "Code Review", model.RoleLead, 7},
		{2, "TC Prep", model.RoleQA, 16},
		{2, "Development Work", model.RoleDev, 75},
		{2, "Code Review", model.RoleLead, 7},
		{2, "QA Testing", model.RoleQA, 80},
		{3, "Code Review", model.RoleLead, 6},
		{3, "Bug Fixes", model.RoleDev, 30},
		{3, "Deployment", model.RoleOps, 6},
		{3, "Smoke Test", model.RoleQA, 8},
	}
	require.Len(t, res.Blocks, len(expected))
	for i, w := range expected {
		b := res.Blocks[i]
		assert.Equal(t, i, b.Index)
		assert.Equal(t, w.sprint, b.Sprint, "block %d", i)
		assert.Equal(t, w.task, b.Task, "block %d", i)
		assert.Equal(t, w.role, b.Role, "block %d", i)
		assert.InDelta(t, w.hours, b.Hours, 1e-9, "block %d", i)
	}
}

func TestDistributeDegenerateSprintCounts(t *testing.T) {
	items := model.DefaultBaseline()

	one, err := DefaultPolicy().Distribute(items, 1)
	require.NoError(t, err)
	require.Len(t, one.Blocks, len(items))
	for _, b := range one.Blocks {
		assert.Equal(t, 0, b.Sprint)
	}

	two, err := DefaultPolicy().Distribute(items, 2)
	require.NoError(t, err)
	for _, b := range two.Blocks {
		switch b.Phase {
		case model.PhaseDevelopment, model.PhaseReview, model.PhaseQATesting:
			assert.Equal(t, 1, b.Sprint, b.Task)
		case model.PhaseAnalysis:
			assert.Equal(t, 0, b.Sprint)
		}
	}

	for _, n := range []int{1, 2, 3, 5, 9} {
		res, err := DefaultPolicy().Distribute(items, n)
		require.NoError(t, err)
		sums := sumByItem(res.Blocks)
		for _, it := range items {
			assert.InDelta(t, it.Hours, sums[it.Task], 1e-9, "n=%d %s", n, it.Task)
		}
	}
}

func TestDistributeBacklogClassification(t *testing.T) {
	items := []model.BacklogItem{
		{Task: "Feature A", Hours: 40},
		{Task: "SRS review", Hours: 10},
		{Task: "UAT round", Hours: 12},
		{Task: "Empty", Hours: 0},
	}
	res, err := DefaultPolicy().Distribute(items, 1)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 2)
	assert.Equal(t, model.RoleDev, res.Blocks[0].Role)
	assert.Equal(t, model.RoleQA, res.Blocks[1].Role)
	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "SRS review", res.Excluded[0].Task)
}

func TestDistributeErrors(t *testing.T) {
	_, err := DefaultPolicy().Distribute(nil, 0)
	assert.True(t, errors.Is(err, model.ErrConfiguration))

	_, err = DefaultPolicy().Distribute([]model.BacklogItem{{Task: "X", Hours: -1}}, 2)
	assert.True(t, errors.Is(err, model.ErrConfiguration))

	p := Policy{Rules: map[model.Phase]Rule{}}
	_, err = p.Distribute([]model.BacklogItem{{Task: "X", Hours: 1}}, 2)
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}
