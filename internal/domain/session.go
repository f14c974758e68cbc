package domain

import (
	"context"
	"sort"
	"time"
)

// Session is a single clock-in/clock-out record. ClockOut is nil while the
// session is active. Duration holds billable seconds.
type Session struct {
	ID       int64      `json:"id"`
	UserID   string     `json:"userId"`
	ClockIn  time.Time  `json:"clockIn"`
	ClockOut *time.Time `json:"clockOut"`
	Duration int64      `json:"duration"`
	Date     string     `json:"date"`
}

// Active reports whether the session has not been clocked out.
func (s Session) Active() bool {
	return s.ClockOut == nil
}

// Adjusted reports whether a closed session's stored duration differs from
// its wall-clock duration.
func (s Session) Adjusted() bool {
	if s.ClockOut == nil {
		return false
	}
	return RawSeconds(s.ClockIn, *s.ClockOut) != s.Duration
}

// SessionRepository is the port for session persistence.
type SessionRepository interface {
	// AddSession stores s and returns its newly assigned id.
	AddSession(ctx context.Context, s Session) (int64, error)
	// GetSession returns nil, nil for an unknown id.
	GetSession(ctx context.Context, id int64) (*Session, error)
	// UpdateSession replaces the session with s.ID, or returns ErrNotFound.
	UpdateSession(ctx context.Context, s Session) error
	// DeleteSession removes a session; unknown ids are not an error.
	DeleteSession(ctx context.Context, id int64) error
	// ListSessionsByUser returns sessions in storage order. limit <= 0 means all.
	ListSessionsByUser(ctx context.Context, userID string, limit int) ([]Session, error)
	// ListSessionsByDate returns a user's sessions carrying the given day label.
	ListSessionsByDate(ctx context.Context, userID, day string) ([]Session, error)
}

// SortByClockIn orders sessions by clock-in time.
func SortByClockIn(sessions []Session, newestFirst bool) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if newestFirst {
			return sessions[i].ClockIn.After(sessions[j].ClockIn)
		}
		return sessions[i].ClockIn.Before(sessions[j].ClockIn)
	})
}
