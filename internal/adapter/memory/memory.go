// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"clockin/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu           sync.Mutex
	sessions     []domain.Session
	users        []*domain.User
	authSessions map[string]*domain.AuthSession
	settings     map[string]string

	sessionIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		authSessions: make(map[string]*domain.AuthSession),
		settings:     make(map[string]string),
	}
}

// Ensure interfaces are met.
var _ domain.SessionRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.AuthSessionRepository = (*DB)(nil)
var _ domain.SettingsRepository = (*DB)(nil)

// Close is a no-op.
func (db *DB) Close() error { return nil }

// --- SessionRepository ---

// AddSession stores a session under a new id.
func (db *DB) AddSession(ctx context.Context, s domain.Session) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.sessionIDCounter++
	s.ID = db.sessionIDCounter
	db.sessions = append(db.sessions, clone(s))
	return s.ID, nil
}

// GetSession retrieves a session by id.
func (db *DB) GetSession(ctx context.Context, id int64) (*domain.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, s := range db.sessions {
		if s.ID == id {
			c := clone(s)
			return &c, nil
		}
	}
	return nil, nil
}

// UpdateSession replaces a session by id.
func (db *DB) UpdateSession(ctx context.Context, s domain.Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.sessions {
		if db.sessions[i].ID == s.ID {
			db.sessions[i] = clone(s)
			return nil
		}
	}
	return domain.ErrNotFound
}

// DeleteSession deletes a session by id.
func (db *DB) DeleteSession(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, s := range db.sessions {
		if s.ID == id {
			db.sessions = append(db.sessions[:i], db.sessions[i+1:]...)
			return nil
		}
	}
	return nil
}

// ListSessionsByUser lists a user's sessions in insertion order.
func (db *DB) ListSessionsByUser(ctx context.Context, userID string, limit int) ([]domain.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Session, 0)
	for _, s := range db.sessions {
		if s.UserID != userID {
			continue
		}
		result = append(result, clone(s))
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// ListSessionsByDate lists a user's sessions for one day label.
func (db *DB) ListSessionsByDate(ctx context.Context, userID, day string) ([]domain.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Session, 0)
	for _, s := range db.sessions {
		if s.UserID == userID && s.Date == day {
			result = append(result, clone(s))
		}
	}
	return result, nil
}

func clone(s domain.Session) domain.Session {
	if s.ClockOut != nil {
		out := *s.ClockOut
		s.ClockOut = &out
	}
	return s
}

// --- UserRepository ---

// GetUser retrieves a user by email.
func (db *DB) GetUser(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	// Return nil if not found
	return nil, nil
}

// CreateUser creates a new user.
func (db *DB) CreateUser(ctx context.Context, u domain.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.users {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	db.users = append(db.users, &u)
	return nil
}

// UpdateUser replaces the user with the same email.
func (db *DB) UpdateUser(ctx context.Context, u domain.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, existing := range db.users {
		if existing.Email == u.Email {
			db.users[i] = &u
			return nil
		}
	}
	return domain.ErrNotFound
}

// CountUsers returns the total number of users.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- AuthSessionRepository ---

// CreateAuthSession stores a login session.
func (db *DB) CreateAuthSession(ctx context.Context, s domain.AuthSession) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	db.authSessions[s.Token] = &s
	return nil
}

// GetAuthSession retrieves a login session by token.
func (db *DB) GetAuthSession(ctx context.Context, token string) (*domain.AuthSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if s, ok := db.authSessions[token]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

// DeleteAuthSession deletes a login session.
func (db *DB) DeleteAuthSession(ctx context.Context, token string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.authSessions, token)
	return nil
}

// DeleteExpiredAuthSessions deletes login sessions that expired before now.
func (db *DB) DeleteExpiredAuthSessions(ctx context.Context, now time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for k, v := range db.authSessions {
		if now.After(v.ExpiresAt) {
			delete(db.authSessions, k)
		}
	}
	return nil
}

// --- SettingsRepository ---

// GetSetting returns a setting value.
func (db *DB) GetSetting(ctx context.Context, key string) (string, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	v, ok := db.settings[key]
	return v, ok, nil
}

// SetSetting stores a setting value.
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.settings[key] = value
	return nil
}

// DeleteSetting removes a setting.
func (db *DB) DeleteSetting(ctx context.Context, key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.settings, key)
	return nil
}

