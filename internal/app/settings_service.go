package app

import (
	"context"
	"strconv"
	"time"

	"clockin/internal/domain"
)

// SettingsService reads and writes process-wide settings with defaults for
// unset keys.
type SettingsService struct {
	repo domain.SettingsRepository
	loc  *time.Location
}

// NewSettingsService creates a SettingsService. Start dates are interpreted
// in loc.
func NewSettingsService(repo domain.SettingsRepository, loc *time.Location) *SettingsService {
	if loc == nil {
		loc = time.Local
	}
	return &SettingsService{repo: repo, loc: loc}
}

func (s *SettingsService) get(ctx context.Context, key, def string) (string, error) {
	v, ok, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return "", domain.Storage("get setting "+key, err)
	}
	if !ok || v == "" {
		return def, nil
	}
	return v, nil
}

func (s *SettingsService) set(ctx context.Context, key, value string) error {
	if err := s.repo.SetSetting(ctx, key, value); err != nil {
		return domain.Storage("set setting "+key, err)
	}
	return nil
}

// Goal returns the goal configuration. Unset or unreadable values fall back
// to the defaults.
func (s *SettingsService) Goal(ctx context.Context) (domain.GoalConfig, error) {
	days, err := s.get(ctx, domain.SettingGoalDays, strconv.Itoa(domain.DefaultGoalBusinessDays))
	if err != nil {
		return domain.GoalConfig{}, err
	}
	start, err := s.get(ctx, domain.SettingStartDate, domain.DefaultStartDate)
	if err != nil {
		return domain.GoalConfig{}, err
	}

	goal := domain.GoalConfig{GoalBusinessDays: domain.DefaultGoalBusinessDays}
	if n, err := strconv.Atoi(days); err == nil && n > 0 {
		goal.GoalBusinessDays = n
	}
	t, err := time.ParseInLocation(domain.DayLayout, start, s.loc)
	if err != nil {
		t, _ = time.ParseInLocation(domain.DayLayout, domain.DefaultStartDate, s.loc)
	}
	goal.StartDate = t
	return goal, nil
}

// SetGoal stores the goal day count and start date.
func (s *SettingsService) SetGoal(ctx context.Context, days int, startDate string) error {
	if days <= 0 {
		return &domain.ValidationError{Field: "goalDays", Reason: "must be positive"}
	}
	day, err := domain.ParseDayLabel(startDate)
	if err != nil {
		return err
	}
	if err := s.set(ctx, domain.SettingGoalDays, strconv.Itoa(days)); err != nil {
		return err
	}
	return s.set(ctx, domain.SettingStartDate, day)
}

// Theme returns the UI theme, dark by default.
func (s *SettingsService) Theme(ctx context.Context) (string, error) {
	return s.get(ctx, domain.SettingTheme, domain.DefaultTheme)
}

// SetTheme stores the UI theme, either "dark" or "light".
func (s *SettingsService) SetTheme(ctx context.Context, theme string) error {
	if theme != "dark" && theme != "light" {
		return &domain.ValidationError{Field: "theme", Reason: `must be "dark" or "light"`}
	}
	return s.set(ctx, domain.SettingTheme, theme)
}

// ToggleTheme flips between dark and light and returns the new theme.
func (s *SettingsService) ToggleTheme(ctx context.Context) (string, error) {
	cur, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := "light"
	if cur == "light" {
		next = "dark"
	}
	return next, s.SetTheme(ctx, next)
}

// CurrentUser returns the email of the logged-in local user, or "".
func (s *SettingsService) CurrentUser(ctx context.Context) (string, error) {
	return s.get(ctx, domain.SettingCurrentUser, "")
}

// SetCurrentUser records the logged-in local user.
func (s *SettingsService) SetCurrentUser(ctx context.Context, email string) error {
	return s.set(ctx, domain.SettingCurrentUser, email)
}

// ClearCurrentUser forgets the logged-in local user.
func (s *SettingsService) ClearCurrentUser(ctx context.Context) error {
	if err := s.repo.DeleteSetting(ctx, domain.SettingCurrentUser); err != nil {
		return domain.Storage("delete setting", err)
	}
	return nil
}
