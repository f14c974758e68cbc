package domain

import (
	"errors"
	"time"
)

// DayLayout is the layout of calendar-day labels.
const DayLayout = "2006-01-02"

// Schedule describes the two daily billable windows. Offsets are measured
// from local midnight in Location (time.Local when nil).
type Schedule struct {
	MorningStart   time.Duration
	MorningEnd     time.Duration
	AfternoonStart time.Duration
	AfternoonEnd   time.Duration
	Location       *time.Location
}

// DefaultSchedule bills 08:00-12:00 and 13:00-17:00 local time.
var DefaultSchedule = Schedule{
	MorningStart:   8 * time.Hour,
	MorningEnd:     12 * time.Hour,
	AfternoonStart: 13 * time.Hour,
	AfternoonEnd:   17 * time.Hour,
}

// Validate checks that the windows are ordered and fit inside one day.
func (s Schedule) Validate() error {
	if s.MorningStart < 0 || s.AfternoonEnd > 24*time.Hour {
		return errors.New("business hours must fall within one day")
	}
	if !(s.MorningStart < s.MorningEnd && s.MorningEnd <= s.AfternoonStart && s.AfternoonStart < s.AfternoonEnd) {
		return errors.New("business hours windows must be ordered: morning start < morning end <= afternoon start < afternoon end")
	}
	return nil
}

// Loc returns the schedule's location.
func (s Schedule) Loc() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// Day returns the calendar-day label of t in the schedule's location.
func (s Schedule) Day(t time.Time) string {
	return t.In(s.Loc()).Format(DayLayout)
}

// BillableSeconds returns the whole seconds between clockIn and clockOut
// that fall inside the two windows of clockIn's calendar day. A start before
// the morning opens counts from the opening, a start in the lunch gap counts
// from the afternoon opening, and an end past the afternoon close stops at
// the close. Nothing after clockIn's day is billed, so a session left open
// overnight yields at most one day of time.
func (s Schedule) BillableSeconds(clockIn, clockOut time.Time) int64 {
	if !clockOut.After(clockIn) {
		return 0
	}
	day := clockIn.In(s.Loc())
	var total time.Duration
	for _, w := range [2][2]time.Duration{
		{s.MorningStart, s.MorningEnd},
		{s.AfternoonStart, s.AfternoonEnd},
	} {
		total += overlap(clockIn, clockOut, at(day, w[0]), at(day, w[1]))
	}
	return int64(total / time.Second)
}

// IsWithinBusinessHours reports whether t falls inside either window,
// boundaries included.
func (s Schedule) IsWithinBusinessHours(t time.Time) bool {
	local := t.In(s.Loc())
	in := func(from, to time.Duration) bool {
		return !local.Before(at(local, from)) && !local.After(at(local, to))
	}
	return in(s.MorningStart, s.MorningEnd) || in(s.AfternoonStart, s.AfternoonEnd)
}

// RawSeconds returns the plain elapsed whole seconds from clockIn to clockOut.
func RawSeconds(clockIn, clockOut time.Time) int64 {
	return int64(clockOut.Sub(clockIn) / time.Second)
}

// at returns the wall-clock time offset after midnight on t's day, so window
// edges stay at their clock times on DST transition days.
func at(t time.Time, offset time.Duration) time.Time {
	y, m, d := t.Date()
	h := int(offset / time.Hour)
	mins := int(offset % time.Hour / time.Minute)
	sec := int(offset % time.Minute / time.Second)
	return time.Date(y, m, d, h, mins, sec, 0, t.Location())
}

func overlap(start, end, from, to time.Time) time.Duration {
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}
