// Package scenario loads planning scenarios from YAML or TOML files.
//
// A scenario bundles a calendar, a roster, a backlog and optional manual
// overrides so that a planning run can be reproduced from the command line
// or replayed as a regression case.
package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/sprintplan/core/model"
	"github.com/kilianp07/sprintplan/core/planner"
)

const dateLayout = "2006-01-02"

// Defaults applied to calendar fields left empty.
const (
	DefaultSprints    = 4
	DefaultSprintDays = 14
	DefaultDailyHours = 8
	DefaultBufferPct  = 10
)

type CalendarDef struct {
	Start          string             `json:"start" yaml:"start" toml:"start"`
	Sprints        int                `json:"sprints" yaml:"sprints" toml:"sprints"`
	SprintDays     int                `json:"sprint_days" yaml:"sprint_days" toml:"sprint_days"`
	DailyHours     float64            `json:"daily_hours" yaml:"daily_hours" toml:"daily_hours"`
	BufferPct      *float64           `json:"buffer_pct" yaml:"buffer_pct" toml:"buffer_pct"`
	SkipWeekends   bool               `json:"skip_weekends" yaml:"skip_weekends" toml:"skip_weekends"`
	Holidays       []string           `json:"holidays" yaml:"holidays" toml:"holidays"`
	RoleDailyHours map[string]float64 `json:"role_daily_hours" yaml:"role_daily_hours" toml:"role_daily_hours"`
}

type ResourceDef struct {
	ID         string  `json:"id" yaml:"id" toml:"id"`
	Role       string  `json:"role" yaml:"role" toml:"role"`
	HourlyRate float64 `json:"hourly_rate" yaml:"hourly_rate" toml:"hourly_rate"`
}

type TaskDef struct {
	Task  string  `json:"task" yaml:"task" toml:"task"`
	Hint  string  `json:"hint" yaml:"hint" toml:"hint"`
	Hours float64 `json:"hours" yaml:"hours" toml:"hours"`
}

type OverrideDef struct {
	Sprint int    `json:"sprint" yaml:"sprint" toml:"sprint"`
	Task   string `json:"task" yaml:"task" toml:"task"`
	Owner  string `json:"owner" yaml:"owner" toml:"owner"`
}

type UnavailableDef struct {
	Sprint   int    `json:"sprint" yaml:"sprint" toml:"sprint"`
	Resource string `json:"resource" yaml:"resource" toml:"resource"`
}

// Expected holds the assertions a regression run checks. Zero values are
// not checked.
type Expected struct {
	MaxOverflow        *int    `json:"max_overflow" yaml:"max_overflow" toml:"max_overflow"`
	MinScore           float64 `json:"min_score" yaml:"min_score" toml:"min_score"`
	RecommendedSprints int     `json:"recommended_sprints" yaml:"recommended_sprints" toml:"recommended_sprints"`
}

type Scenario struct {
	Name        string           `json:"name" yaml:"name" toml:"name"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Calendar    CalendarDef      `json:"calendar" yaml:"calendar" toml:"calendar"`
	Roster      []ResourceDef    `json:"roster" yaml:"roster" toml:"roster"`
	Backlog     []TaskDef        `json:"backlog" yaml:"backlog" toml:"backlog"`
	Overrides   []OverrideDef    `json:"overrides,omitempty" yaml:"overrides,omitempty" toml:"overrides,omitempty"`
	Unavailable []UnavailableDef `json:"unavailable,omitempty" yaml:"unavailable,omitempty" toml:"unavailable,omitempty"`
	Expected    Expected         `json:"expected" yaml:"expected" toml:"expected"`
}

// Load reads a scenario file. Files ending in .toml are decoded as TOML,
// anything else as YAML.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parse := Parse
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		parse = ParseTOML
	}
	sc, err := parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ParseTOML decodes a TOML scenario. Unknown keys are rejected.
func ParseTOML(r io.Reader) (*Scenario, error) {
	var sc Scenario
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Parse decodes a YAML scenario. Unknown keys are rejected.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if err == io.EOF {
			return &sc, nil
		}
		return nil, err
	}
	return &sc, nil
}

// Input converts the scenario into a planner input. An empty roster or
// backlog falls back to the built-in team and effort baseline.
func (s *Scenario) Input() (planner.Input, error) {
	cal, err := s.Calendar.toModel()
	if err != nil {
		return planner.Input{}, err
	}
	roster, err := s.roster()
	if err != nil {
		return planner.Input{}, err
	}
	in := planner.Input{
		Source:   s.Name,
		Backlog:  s.backlog(),
		Roster:   roster,
		Calendar: cal,
	}
	if len(s.Overrides) > 0 {
		in.Overrides = make(model.OverrideMap, len(s.Overrides))
		for _, o := range s.Overrides {
			in.Overrides[model.TaskKey{Sprint: o.Sprint, Task: o.Task}] = o.Owner
		}
	}
	if len(s.Unavailable) > 0 {
		in.Availability = make(model.AvailabilityMap, len(s.Unavailable))
		for _, u := range s.Unavailable {
			in.Availability[model.ResourceKey{Sprint: u.Sprint, Resource: u.Resource}] = true
		}
	}
	return in, nil
}

func (s *Scenario) roster() (model.Roster, error) {
	if len(s.Roster) == 0 {
		return model.DefaultRoster(), nil
	}
	var r model.Roster
	for _, def := range s.Roster {
		role, ok := model.ParseRole(def.Role)
		if !ok || role == model.RoleBacklog {
			return model.Roster{}, model.Configf("roster", "resource %s: unknown role %q", def.ID, def.Role)
		}
		r.Resources = append(r.Resources, model.Resource{ID: def.ID, Role: role, HourlyRate: def.HourlyRate})
	}
	return r, nil
}

func (s *Scenario) backlog() []model.BacklogItem {
	if len(s.Backlog) == 0 {
		return model.DefaultBaseline()
	}
	out := make([]model.BacklogItem, len(s.Backlog))
	for i, t := range s.Backlog {
		out[i] = model.BacklogItem{Task: t.Task, Hint: t.Hint, Hours: t.Hours}
	}
	return out
}

func (c CalendarDef) toModel() (model.Calendar, error) {
	cal := model.Calendar{
		Sprints:      c.Sprints,
		SprintDays:   c.SprintDays,
		DailyHours:   c.DailyHours,
		BufferPct:    DefaultBufferPct,
		SkipWeekends: c.SkipWeekends,
	}
	if cal.Sprints == 0 {
		cal.Sprints = DefaultSprints
	}
	if cal.SprintDays == 0 {
		cal.SprintDays = DefaultSprintDays
	}
	if cal.DailyHours == 0 {
		cal.DailyHours = DefaultDailyHours
	}
	if c.BufferPct != nil {
		cal.BufferPct = *c.BufferPct
	}
	if c.Start == "" {
		now := time.Now().UTC()
		cal.Start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		start, err := time.Parse(dateLayout, c.Start)
		if err != nil {
			return model.Calendar{}, model.Configf("calendar.start", "%v", err)
		}
		cal.Start = start
	}
	for _, h := range c.Holidays {
		d, err := time.Parse(dateLayout, h)
		if err != nil {
			return model.Calendar{}, model.Configf("calendar.holidays", "%v", err)
		}
		cal.Holidays = append(cal.Holidays, d)
	}
	if len(c.RoleDailyHours) > 0 {
		cal.RoleDailyHours = make(map[model.Role]float64, len(c.RoleDailyHours))
		for name, h := range c.RoleDailyHours {
			role, ok := model.ParseRole(name)
			if !ok || role == model.RoleBacklog {
				return model.Calendar{}, model.Configf("calendar.role_daily_hours", "unknown role %q", name)
			}
			cal.RoleDailyHours[role] = h
		}
	}
	return cal, nil
}

// Check compares a finished plan, and optionally an optimizer result,
// against the scenario's expectations. It returns one message per failed
// expectation.
func (s *Scenario) Check(plan *planner.Plan, opt *planner.OptimizeResult) []string {
	var failed []string
	exp := s.Expected
	if plan != nil {
		if exp.MaxOverflow != nil && plan.Score.Overflow > *exp.MaxOverflow {
			failed = append(failed, fmt.Sprintf("overflow %d exceeds %d", plan.Score.Overflow, *exp.MaxOverflow))
		}
		if exp.MinScore > 0 && plan.Score.Score < exp.MinScore {
			failed = append(failed, fmt.Sprintf("score %.3f below %.3f", plan.Score.Score, exp.MinScore))
		}
	}
	if opt != nil && exp.RecommendedSprints > 0 && opt.Recommended != exp.RecommendedSprints {
		failed = append(failed, fmt.Sprintf("recommended %d sprints, want %d", opt.Recommended, exp.RecommendedSprints))
	}
	return failed
}

// Summary renders failed expectations on one line.
func Summary(failed []string) string { return strings.Join(failed, "; ") }
