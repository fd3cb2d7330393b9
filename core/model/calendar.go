package model

import "time"

// Calendar holds the calendar parameters of a planning run.
type Calendar struct {
	Start      time.Time   `json:"start" yaml:"start"`
	SprintDays int         `json:"sprint_days" yaml:"sprint_days"`
	Sprints    int         `json:"sprints" yaml:"sprints"`
	DailyHours float64     `json:"daily_hours" yaml:"daily_hours"`
	BufferPct  float64     `json:"buffer_pct" yaml:"buffer_pct"`
	Holidays   []time.Time `json:"holidays,omitempty" yaml:"holidays,omitempty"`
	// SkipWeekends makes each sprint span SprintDays working days.
	SkipWeekends bool `json:"skip_weekends,omitempty" yaml:"skip_weekends,omitempty"`
	// RoleDailyHours overrides DailyHours for specific roles.
	RoleDailyHours map[Role]float64 `json:"role_daily_hours,omitempty" yaml:"role_daily_hours,omitempty"`
}

// DailyHoursFor returns the daily hour limit applying to role.
func (c Calendar) DailyHoursFor(role Role) float64 {
	if h, ok := c.RoleDailyHours[role]; ok {
		return h
	}
	return c.DailyHours
}

// WithSprints returns a copy of the calendar using n sprints.
func (c Calendar) WithSprints(n int) Calendar {
	c.Sprints = n
	return c
}

// Sprint is one generated scheduling period. End is the last day inside the
// sprint window.
type Sprint struct {
	Index       int       `json:"index"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	WorkingDays int       `json:"working_days"`
	HolidayDays int       `json:"holiday_days"`
}

// Name returns the display label of the sprint.
func (s Sprint) Name() string { return SprintName(s.Index) }
