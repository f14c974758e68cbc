package domain

import (
	"sort"
	"time"
)

// DaySummary aggregates the sessions of one calendar day for display.
type DaySummary struct {
	Day          string     `json:"day"`
	SessionIDs   []int64    `json:"sessionIds"`
	Count        int        `json:"count"`
	TotalSeconds int64      `json:"totalSeconds"`
	HasActive    bool       `json:"hasActive"`
	Adjusted     bool       `json:"adjusted"`
	FirstClockIn time.Time  `json:"firstClockIn"`
	LastClockOut *time.Time `json:"lastClockOut"`
}

// GroupByDay groups sessions by their Date label. Each group is ordered by
// clock-in time.
func GroupByDay(sessions []Session) map[string][]Session {
	grouped := make(map[string][]Session)
	for _, s := range sessions {
		grouped[s.Date] = append(grouped[s.Date], s)
	}
	for _, group := range grouped {
		SortByClockIn(group, false)
	}
	return grouped
}

// Summarize computes the combined row for one day's sessions.
func Summarize(day string, group []Session) DaySummary {
	sum := DaySummary{Day: day, Count: len(group), SessionIDs: make([]int64, 0, len(group))}
	for i, s := range group {
		sum.SessionIDs = append(sum.SessionIDs, s.ID)
		sum.TotalSeconds += s.Duration
		if s.Active() {
			sum.HasActive = true
		}
		if s.Adjusted() {
			sum.Adjusted = true
		}
		if i == 0 || s.ClockIn.Before(sum.FirstClockIn) {
			sum.FirstClockIn = s.ClockIn
		}
		if s.ClockOut != nil && (sum.LastClockOut == nil || s.ClockOut.After(*sum.LastClockOut)) {
			out := *s.ClockOut
			sum.LastClockOut = &out
		}
	}
	return sum
}

// DaySummaries returns one summary per day, newest day first.
func DaySummaries(sessions []Session) []DaySummary {
	grouped := GroupByDay(sessions)
	out := make([]DaySummary, 0, len(grouped))
	for day, group := range grouped {
		out = append(out, Summarize(day, group))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	return out
}
