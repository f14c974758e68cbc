package app

import (
	"context"
	"time"

	"clockin/internal/domain"
)

// ProgressService computes goal progress, the goal calendar and activity
// series from a user's sessions.
type ProgressService struct {
	sessions domain.SessionRepository
	settings *SettingsService
	loc      *time.Location
	now      func() time.Time
}

// NewProgressService creates a ProgressService.
func NewProgressService(sessions domain.SessionRepository, settings *SettingsService, loc *time.Location) *ProgressService {
	if loc == nil {
		loc = time.Local
	}
	return &ProgressService{sessions: sessions, settings: settings, loc: loc, now: time.Now}
}

// WithClock replaces the time source.
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

// Report bundles goal progress with streaks.
type Report struct {
	domain.Progress
	Goal    domain.GoalConfig `json:"goal"`
	Streaks domain.Streaks    `json:"streaks"`
	Percent float64           `json:"percent"`
}

func (s *ProgressService) load(ctx context.Context, userID string) ([]domain.Session, domain.GoalConfig, error) {
	items, err := s.sessions.ListSessionsByUser(ctx, userID, 0)
	if err != nil {
		return nil, domain.GoalConfig{}, domain.Storage("list sessions", err)
	}
	goal, err := s.settings.Goal(ctx)
	if err != nil {
		return nil, domain.GoalConfig{}, err
	}
	return items, goal, nil
}

// Progress returns the user's goal progress as of today.
func (s *ProgressService) Progress(ctx context.Context, userID string) (Report, error) {
	items, goal, err := s.load(ctx, userID)
	if err != nil {
		return Report{}, err
	}
	today := s.now().In(s.loc)
	p := domain.ComputeProgress(items, goal, today)
	r := Report{
		Progress: p,
		Goal:     goal,
		Streaks:  domain.ComputeStreaks(p.PerDayHours, today, domain.DefaultStreakLookback),
	}
	if p.RequiredDays > 0 {
		r.Percent = float64(p.CompletedDays) / float64(p.RequiredDays) * 100
	}
	return r, nil
}

// Calendar returns the goal calendar padded to size cells.
func (s *ProgressService) Calendar(ctx context.Context, userID string, size int) ([]domain.CalendarCell, error) {
	items, goal, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.Calendar(domain.PerDayHours(items), goal, s.now().In(s.loc), size), nil
}

// DayPoint is a single data point returned by GetDaily.
type DayPoint struct {
	Day   string  `json:"day"`
	Hours float64 `json:"hours"`
}

// GetDaily returns hours worked for each of the last days days, oldest first.
func (s *ProgressService) GetDaily(ctx context.Context, userID string, days int) ([]DayPoint, error) {
	if days <= 0 {
		return nil, &domain.ValidationError{Field: "days", Reason: "must be positive"}
	}
	if days > 366 {
		days = 366
	}
	items, err := s.sessions.ListSessionsByUser(ctx, userID, 0)
	if err != nil {
		return nil, domain.Storage("list sessions", err)
	}
	perDay := domain.PerDayHours(items)

	today := s.now().In(s.loc)
	points := make([]DayPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(domain.DayLayout)
		points = append(points, DayPoint{Day: day, Hours: perDay[day]})
	}
	return points, nil
}
