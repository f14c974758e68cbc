package domain

import "time"

// Progress is the goal status for a session history.
type Progress struct {
	CompletedDays int                `json:"completedDays"`
	RequiredDays  int                `json:"requiredDays"`
	PerDayHours   map[string]float64 `json:"perDayHours"`
}

// PerDayHours sums session durations in hours keyed by session Date.
func PerDayHours(sessions []Session) map[string]float64 {
	out := make(map[string]float64)
	for _, s := range sessions {
		out[s.Date] += float64(s.Duration) / 3600
	}
	return out
}

// IsBusinessDay reports whether t falls on Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ComputeProgress walks business days forward from the goal start until
// either GoalBusinessDays days were enumerated or today (inclusive) was
// passed, and counts the days with any recorded activity. RequiredDays is
// the configured goal, never reduced by the walk stopping early.
func ComputeProgress(sessions []Session, goal GoalConfig, today time.Time) Progress {
	perDay := PerDayHours(sessions)
	p := Progress{RequiredDays: goal.GoalBusinessDays, PerDayHours: perDay}

	end := midnight(today)
	enumerated := 0
	for d := midnight(goal.StartDate); enumerated < goal.GoalBusinessDays && !d.After(end); d = d.AddDate(0, 0, 1) {
		if !IsBusinessDay(d) {
			continue
		}
		enumerated++
		if _, ok := perDay[d.Format(DayLayout)]; ok {
			p.CompletedDays++
		}
	}
	return p
}

// CellState buckets a goal calendar cell.
type CellState string

const (
	CellCompleted CellState = "completed"
	CellMissed    CellState = "missed"
	CellFuture    CellState = "future"
	CellOutside   CellState = "outside"
)

// ActivityLevel tiers a completed day by hours worked.
type ActivityLevel int

const (
	ActivityNone ActivityLevel = iota
	ActivityLow
	ActivityMedium
	ActivityHigh
)

// LevelForHours tiers an active day: >= 8h high, >= 4h medium, else low.
func LevelForHours(hours float64) ActivityLevel {
	switch {
	case hours >= 8:
		return ActivityHigh
	case hours >= 4:
		return ActivityMedium
	default:
		return ActivityLow
	}
}

// CalendarCell is one business day of the goal calendar.
type CalendarCell struct {
	Index int           `json:"index"`
	Day   string        `json:"day,omitempty"`
	State CellState     `json:"state"`
	Level ActivityLevel `json:"level"`
	Hours float64       `json:"hours"`
}

// ClassifyCell buckets the cell at index among required goal days.
func ClassifyCell(index, required int, day, today time.Time, hours float64, active bool) (CellState, ActivityLevel) {
	switch {
	case index >= required:
		return CellOutside, ActivityNone
	case midnight(day).After(midnight(today)):
		return CellFuture, ActivityNone
	case active:
		return CellCompleted, LevelForHours(hours)
	default:
		return CellMissed, ActivityNone
	}
}

// Calendar lays out the first GoalBusinessDays business days from the goal
// start. When size exceeds the goal the trailing cells are outside the
// window.
func Calendar(perDay map[string]float64, goal GoalConfig, today time.Time, size int) []CalendarCell {
	required := goal.GoalBusinessDays
	if size < required {
		size = required
	}
	cells := make([]CalendarCell, 0, size)
	d := midnight(goal.StartDate)
	for i := 0; i < size; i++ {
		if i >= required {
			state, level := ClassifyCell(i, required, d, today, 0, false)
			cells = append(cells, CalendarCell{Index: i, State: state, Level: level})
			continue
		}
		for !IsBusinessDay(d) {
			d = d.AddDate(0, 0, 1)
		}
		label := d.Format(DayLayout)
		hours, active := perDay[label]
		state, level := ClassifyCell(i, required, d, today, hours, active)
		cells = append(cells, CalendarCell{Index: i, Day: label, State: state, Level: level, Hours: hours})
		d = d.AddDate(0, 0, 1)
	}
	return cells
}

// Streaks holds the current and longest runs of active business days.
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// DefaultStreakLookback is the number of calendar days scanned for streaks.
const DefaultStreakLookback = 84

// ComputeStreaks scans the lookback days ending today. Weekends neither
// extend nor break a streak; a business day without activity breaks it. The
// current streak is non-zero only when today itself has activity.
func ComputeStreaks(perDay map[string]float64, today time.Time, lookback int) Streaks {
	var st Streaks
	run := 0
	base := midnight(today)
	for i := lookback - 1; i >= 0; i-- {
		d := base.AddDate(0, 0, -i)
		if !IsBusinessDay(d) {
			continue
		}
		if _, ok := perDay[d.Format(DayLayout)]; ok {
			run++
			if i == 0 {
				st.Current = run
			}
			continue
		}
		if run > st.Longest {
			st.Longest = run
		}
		run = 0
	}
	if run > st.Longest {
		st.Longest = run
	}
	return st
}
