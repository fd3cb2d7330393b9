package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sprintplan/core/model"
)

type flatCaps float64

func (c flatCaps) Capacity(int, model.Role) float64 { return float64(c) }

func twoDevs() model.Roster {
	return model.NewRoster(map[model.Role][]string{
		model.RoleDev: {"D1", "D2"},
		model.RoleQA:  {"Q1"},
	})
}

type run struct {
	entries []model.Entry
	diag    Diagnostics
	ledger  *LoadLedger
}

func plan(t *testing.T, roster model.Roster, blocks []model.EffortBlock, sprints int, caps Capacities, ov model.OverrideMap, av model.AvailabilityMap) run {
	t.Helper()
	res := NewResolver(roster, ov, av)
	ledger := NewLoadLedger(sprints, roster.Len())
	var diag Diagnostics
	entries := NewGreedyAssigner(roster, res, ledger).Assign(blocks, &diag)
	entries, diag.Transfers = NewRebalancer(roster, res, ledger, caps).Rebalance(entries)
	NewCriticalityEstimator(roster, ledger, caps, 0).Mark(entries)
	diag.Overloads = FindOverloads(ledger, roster, caps, sprints)
	return run{entries: entries, diag: diag, ledger: ledger}
}

func devBlock(i int, task string, hours float64) model.EffortBlock {
	return model.EffortBlock{Index: i, Sprint: 0, Task: task, Role: model.RoleDev, Hours: hours, Phase: model.PhaseDevelopment}
}

func loadOf(entries []model.Entry, sprint int, owner string) float64 {
	var h float64
	for _, e := range entries {
		if e.Sprint == sprint && e.Owner == owner {
			h += e.Hours
		}
	}
	return h
}

func TestLeastLoadedTieBreaksOnOrder(t *testing.T) {
	l := NewLoadLedger(1, 3)
	idx, ok := LeastLoaded(l, 0, []int{0, 1, 2})
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	l.Add(0, 0, 5)
	idx, _ = LeastLoaded(l, 0, []int{0, 1, 2})
	assert.Equal(t, 1, idx)

	_, ok = LeastLoaded(l, 0, nil)
	assert.False(t, ok)
}

func TestGreedySpreadsAcrossPool(t *testing.T) {
	r := plan(t, twoDevs(), []model.EffortBlock{devBlock(0, "A", 10), devBlock(1, "B", 10)}, 1, flatCaps(64), nil, nil)
	require.Len(t, r.entries, 2)
	assert.Equal(t, "D1", r.entries[0].Owner)
	assert.Equal(t, "D2", r.entries[1].Owner)
	assert.Empty(t, r.diag.Transfers)
	assert.Empty(t, r.diag.Overloads)
	for _, e := range r.entries {
		assert.False(t, e.Critical)
	}
}

func TestRebalanceSplitsExcess(t *testing.T) {
	r := plan(t, twoDevs(), []model.EffortBlock{devBlock(0, "X", 40), devBlock(1, "Y", 10)}, 1, flatCaps(30), nil, nil)

	assert.InDelta(t, 30, loadOf(r.entries, 0, "D1"), 1e-9)
	assert.InDelta(t, 20, loadOf(r.entries, 0, "D2"), 1e-9)
	require.Len(t, r.diag.Transfers, 1)
	tr := r.diag.Transfers[0]
	assert.Equal(t, "X", tr.Task)
	assert.Equal(t, "D1", tr.From)
	assert.Equal(t, "D2", tr.To)
	assert.InDelta(t, 10, tr.Hours, 1e-9)
	assert.Empty(t, r.diag.Overloads)

	// D1 sits exactly at capacity, so its entry is critical.
	for _, e := range r.entries {
		if e.Owner == "D1" {
			assert.True(t, e.Critical)
		}
	}
}

func TestRebalanceIsIdempotent(t *testing.T) {
	roster := twoDevs()
	blocks := []model.EffortBlock{devBlock(0, "X", 50), devBlock(1, "Y", 5), devBlock(2, "Z", 12)}
	res := NewResolver(roster, nil, nil)
	ledger := NewLoadLedger(1, roster.Len())
	var diag Diagnostics
	entries := NewGreedyAssigner(roster, res, ledger).Assign(blocks, &diag)
	rb := NewRebalancer(roster, res, ledger, flatCaps(30))
	first, _ := rb.Rebalance(entries)
	second, transfers := rb.Rebalance(first)
	assert.Empty(t, transfers)
	assert.Equal(t, first, second)
}

func TestRebalanceConservesHoursPerBlock(t *testing.T) {
	roster := model.NewRoster(map[model.Role][]string{model.RoleDev: {"D1", "D2", "D3"}})
	blocks := []model.EffortBlock{devBlock(0, "A", 70), devBlock(1, "B", 20), devBlock(2, "C", 45), devBlock(3, "D", 9)}
	r := plan(t, roster, blocks, 1, flatCaps(40), nil, nil)
	perBlock := make(map[int]float64)
	for _, e := range r.entries {
		perBlock[e.Block] += e.Hours
	}
	for _, b := range blocks {
		assert.InDelta(t, b.Hours, perBlock[b.Index], 1e-9, b.Task)
	}
	var total float64
	for i := 0; i < roster.Len(); i++ {
		total += r.ledger.Load(0, i)
	}
	assert.InDelta(t, 144, total, 1e-9)
}

func TestRebalanceLeavesOverflowWhenPoolIsFull(t *testing.T) {
	r := plan(t, twoDevs(), []model.EffortBlock{devBlock(0, "A", 40), devBlock(1, "B", 40)}, 1, flatCaps(30), nil, nil)
	assert.Empty(t, r.diag.Transfers)
	require.Len(t, r.diag.Overloads, 2)
	assert.Equal(t, 2, r.diag.OverflowedResources())
	for _, e := range r.entries {
		assert.True(t, e.Critical)
	}
}

func TestOverrideIsPinned(t *testing.T) {
	ov := model.OverrideMap{{Sprint: 0, Task: "A"}: "D2"}
	blocks := []model.EffortBlock{devBlock(0, "A", 50), devBlock(1, "B", 1)}
	r := plan(t, twoDevs(), blocks, 1, flatCaps(30), ov, nil)
	for _, e := range r.entries {
		if e.Task == "A" {
			assert.Equal(t, "D2", e.Owner)
			assert.True(t, e.Pinned)
			assert.InDelta(t, 50, e.Hours, 1e-9)
		}
	}
	// D2 stays overloaded since its only overflowing work is pinned.
	require.Len(t, r.diag.Overloads, 1)
	assert.Equal(t, "D2", r.diag.Overloads[0].Resource)
}

func TestOverrideAcrossRoles(t *testing.T) {
	ov := model.OverrideMap{{Sprint: 0, Task: "A"}: "Q1"}
	r := plan(t, twoDevs(), []model.EffortBlock{devBlock(0, "A", 5)}, 1, flatCaps(30), ov, nil)
	require.Len(t, r.entries, 1)
	assert.Equal(t, "Q1", r.entries[0].Owner)
	assert.Equal(t, model.RoleDev, r.entries[0].Role)
}

func TestUnknownOverrideIsIgnored(t *testing.T) {
	ov := model.OverrideMap{{Sprint: 0, Task: "A"}: "ghost"}
	r := plan(t, twoDevs(), []model.EffortBlock{devBlock(0, "A", 5)}, 1, flatCaps(30), ov, nil)
	assert.Equal(t, "D1", r.entries[0].Owner)
	assert.False(t, r.entries[0].Pinned)
	require.Len(t, r.diag.IgnoredOverrides, 1)
	assert.Equal(t, "ghost", r.diag.IgnoredOverrides[0].Owner)
}

func TestAvailabilityFiltersAndDegrades(t *testing.T) {
	av := model.AvailabilityMap{{Sprint: 0, Resource: "D1"}: true}
	r := plan(t, twoDevs(), []model.EffortBlock{devBlock(0, "A", 5), devBlock(1, "B", 5)}, 1, flatCaps(30), nil, av)
	for _, e := range r.entries {
		assert.Equal(t, "D2", e.Owner)
	}
	assert.Empty(t, r.diag.Degraded)

	av[model.ResourceKey{Sprint: 0, Resource: "D2"}] = true
	r = plan(t, twoDevs(), []model.EffortBlock{devBlock(0, "A", 5)}, 1, flatCaps(30), nil, av)
	assert.Equal(t, "D1", r.entries[0].Owner)
	require.Len(t, r.diag.Degraded, 1)
}

func TestRebalanceSkipsUnavailableRecipient(t *testing.T) {
	av := model.AvailabilityMap{{Sprint: 0, Resource: "D2"}: true}
	r := plan(t, twoDevs(), []model.EffortBlock{devBlock(0, "A", 50)}, 1, flatCaps(30), nil, av)
	assert.Empty(t, r.diag.Transfers)
	assert.Len(t, r.diag.Overloads, 1)
}

func TestEmptyRoleGoesToBacklog(t *testing.T) {
	b := model.EffortBlock{Index: 0, Sprint: 0, Task: "Deploy", Role: model.RoleOps, Hours: 6, Phase: model.PhaseDeployment}
	r := plan(t, twoDevs(), []model.EffortBlock{b}, 1, flatCaps(30), nil, nil)
	require.Len(t, r.entries, 1)
	assert.Equal(t, model.Unassigned, r.entries[0].Owner)
	assert.True(t, r.entries[0].IsBacklog())
	assert.False(t, r.entries[0].Critical)
	require.Len(t, r.diag.Unassigned, 1)

	warns := r.diag.Warnings()
	require.Len(t, warns, 1)
	assert.Equal(t, WarnUnassignable, warns[0].Kind)
}

func TestLedgerFromEntriesMatchesAssignment(t *testing.T) {
	roster := twoDevs()
	r := plan(t, roster, []model.EffortBlock{devBlock(0, "X", 40), devBlock(1, "Y", 10)}, 1, flatCaps(30), nil, nil)
	rebuilt := LedgerFromEntries(r.entries, roster, 1)
	for i := 0; i < roster.Len(); i++ {
		assert.InDelta(t, r.ledger.Load(0, i), rebuilt.Load(0, i), 1e-9)
	}
}

func TestTwoFeaturesOneSprint(t *testing.T) {
	roster := model.NewRoster(map[model.Role][]string{model.RoleDev: {"D1", "D2"}})
	blocks := []model.EffortBlock{devBlock(0, "Feature A", 40), devBlock(1, "Feature B", 40)}
	first := plan(t, roster, blocks, 1, flatCaps(64), nil, nil)
	require.Len(t, first.entries, 2)
	assert.Equal(t, "D1", first.entries[0].Owner)
	assert.Equal(t, "D2", first.entries[1].Owner)
	assert.Empty(t, first.diag.Transfers)
	assert.Zero(t, first.diag.OverflowedResources())

	second := plan(t, roster, blocks, 1, flatCaps(64), nil, nil)
	assert.Equal(t, first.entries, second.entries)
}
