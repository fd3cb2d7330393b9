package capacity

import (
	"time"

	"github.com/kilianp07/sprintplan/core/model"
)

// Floor is the smallest capacity a sprint can report. Positive capacities
// below it are raised to it so utilization ratios stay finite.
const Floor = 0.1

// Row is one line of the capacity table handed to utilization displays.
type Row struct {
	Sprint   int        `json:"sprint"`
	Name     string     `json:"name"`
	Role     model.Role `json:"role"`
	Capacity float64    `json:"capacity"`
}

// Table stores the usable hours per resource for every sprint and role.
type Table struct {
	sprints []model.Sprint
	caps    [][]float64
}

// Compute derives the sprint windows and the per-role capacity of each
// sprint from the calendar. Invalid calendars and sprints left without
// usable hours are reported as configuration errors.
func Compute(cal model.Calendar) (*Table, error) {
	if err := validate(cal); err != nil {
		return nil, err
	}
	sprints := Windows(cal)
	caps := make([][]float64, len(sprints))
	for i, s := range sprints {
		caps[i] = make([]float64, len(model.StaffRoles))
		for _, role := range model.StaffRoles {
			daily := cal.DailyHoursFor(role)
			raw := (float64(s.WorkingDays)*daily - float64(s.HolidayDays)*daily) * (1 - cal.BufferPct/100)
			if raw <= 0 {
				return nil, model.Configf("calendar", "%s has no usable hours for role %s (%.2f)", s.Name(), role, raw)
			}
			if raw < Floor {
				raw = Floor
			}
			caps[i][role] = raw
		}
	}
	return &Table{sprints: sprints, caps: caps}, nil
}

func validate(cal model.Calendar) error {
	switch {
	case cal.Sprints <= 0:
		return model.Configf("sprints", "must be positive, got %d", cal.Sprints)
	case cal.SprintDays <= 0:
		return model.Configf("sprint_days", "must be positive, got %d", cal.SprintDays)
	case cal.DailyHours <= 0:
		return model.Configf("daily_hours", "must be positive, got %.2f", cal.DailyHours)
	case cal.BufferPct < 0 || cal.BufferPct > 100:
		return model.Configf("buffer_pct", "must be within [0,100], got %.2f", cal.BufferPct)
	}
	for role, h := range cal.RoleDailyHours {
		if h <= 0 {
			return model.Configf("role_daily_hours", "%s cap must be positive, got %.2f", role, h)
		}
	}
	return nil
}

// Windows generates the calendar window of every sprint. With SkipWeekends
// each sprint spans SprintDays working days; otherwise SprintDays calendar days.
func Windows(cal model.Calendar) []model.Sprint {
	holidays := make(map[time.Time]struct{}, len(cal.Holidays))
	for _, h := range cal.Holidays {
		holidays[day(h)] = struct{}{}
	}
	out := make([]model.Sprint, 0, cal.Sprints)
	cursor := day(cal.Start)
	for i := 0; i < cal.Sprints; i++ {
		s := model.Sprint{Index: i, WorkingDays: cal.SprintDays}
		if cal.SkipWeekends {
			cursor = nextWeekday(cursor)
			s.Start = cursor
			for n := 0; n < cal.SprintDays; n++ {
				cursor = nextWeekday(cursor)
				if _, ok := holidays[cursor]; ok {
					s.HolidayDays++
				}
				s.End = cursor
				cursor = cursor.AddDate(0, 0, 1)
			}
		} else {
			s.Start = cursor
			s.End = cursor.AddDate(0, 0, cal.SprintDays-1)
			for d := s.Start; !d.After(s.End); d = d.AddDate(0, 0, 1) {
				if _, ok := holidays[d]; ok {
					s.HolidayDays++
				}
			}
			cursor = cursor.AddDate(0, 0, cal.SprintDays)
		}
		out = append(out, s)
	}
	return out
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nextWeekday(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// Capacity returns the per-resource capacity of role in sprint. Unknown
// sprints and the backlog pseudo role have no capacity.
func (t *Table) Capacity(sprint int, role model.Role) float64 {
	if sprint < 0 || sprint >= len(t.caps) || role < 0 || int(role) >= len(model.StaffRoles) {
		return 0
	}
	return t.caps[sprint][role]
}

// Sprints returns the generated sprint windows.
func (t *Table) Sprints() []model.Sprint {
	return append([]model.Sprint(nil), t.sprints...)
}

// Len returns the number of sprints.
func (t *Table) Len() int { return len(t.sprints) }

// Rows flattens the table, sprint by sprint, in StaffRoles order.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, len(t.sprints)*len(model.StaffRoles))
	for _, s := range t.sprints {
		for _, role := range model.StaffRoles {
			rows = append(rows, Row{Sprint: s.Index, Name: s.Name(), Role: role, Capacity: t.caps[s.Index][role]})
		}
	}
	return rows
}
