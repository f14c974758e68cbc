package domain

import (
	"context"
	"time"
)

// Setting keys.
const (
	SettingTheme       = "theme"
	SettingGoalDays    = "goalDays"
	SettingStartDate   = "startDate"
	SettingCurrentUser = "currentUser"
)

// Defaults applied while a setting is unset.
const (
	DefaultTheme            = "dark"
	DefaultGoalBusinessDays = 61
	DefaultStartDate        = "2025-06-02"
)

// GoalConfig is the tracked period: day 1 and the number of business days
// to complete.
type GoalConfig struct {
	StartDate        time.Time `json:"startDate"`
	GoalBusinessDays int       `json:"goalBusinessDays"`
}

// SettingsRepository is the port for process-wide string settings.
type SettingsRepository interface {
	// GetSetting reports ok=false for an unset key.
	GetSetting(ctx context.Context, key string) (value string, ok bool, err error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}
