// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// User represents a registered user. Email is the unique key and Password is
// an opaque credential compared verbatim.
type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthSession represents a logged-in browser session.
type AuthSession struct {
	Token     string
	UserID    string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UserRepository defines the port for user persistence operations.
// GetUser returns nil, nil when no user has the given email.
type UserRepository interface {
	GetUser(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, u User) error
	UpdateUser(ctx context.Context, u User) error
	CountUsers(ctx context.Context) (int, error)
}

// AuthSessionRepository defines the port for login session persistence.
// GetAuthSession returns nil, nil for an unknown token.
type AuthSessionRepository interface {
	CreateAuthSession(ctx context.Context, s AuthSession) error
	GetAuthSession(ctx context.Context, token string) (*AuthSession, error)
	DeleteAuthSession(ctx context.Context, token string) error
	DeleteExpiredAuthSessions(ctx context.Context, now time.Time) error
}
