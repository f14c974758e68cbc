package sqlstore

import (
	"context"
	"time"

	"clockin/internal/domain"
)

// GetUser retrieves a user by email.
func (s *Store) GetUser(ctx context.Context, email string) (*domain.User, error) {
	var (
		u       domain.User
		created scanTime
	)
	err := s.queryRow(ctx,
		"SELECT email, name, password, created_at FROM users WHERE email = ?;", email,
	).Scan(&u.Email, &u.Name, &u.Password, &created)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = created.Time
	return &u, nil
}

// CreateUser creates a new user.
func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.exec(ctx,
		"INSERT INTO users(email, name, password, created_at) VALUES(?, ?, ?, ?);",
		u.Email, u.Name, u.Password, s.timeArg(u.CreatedAt),
	)
	if err != nil && s.isUnique(err) {
		return domain.ErrUserExists
	}
	return err
}

// UpdateUser replaces a user's name and password.
func (s *Store) UpdateUser(ctx context.Context, u domain.User) error {
	res, err := s.exec(ctx, "UPDATE users SET name = ?, password = ? WHERE email = ?;", u.Name, u.Password, u.Email)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountUsers returns the total number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.queryRow(ctx, "SELECT COUNT(*) FROM users;").Scan(&count)
	return count, err
}

// CreateAuthSession stores a login session.
func (s *Store) CreateAuthSession(ctx context.Context, a domain.AuthSession) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.exec(ctx,
		"INSERT INTO auth_sessions(token, user_id, user_agent, expires_at, created_at) VALUES(?, ?, ?, ?, ?);",
		a.Token, a.UserID, a.UserAgent, s.timeArg(a.ExpiresAt), s.timeArg(a.CreatedAt),
	)
	return err
}

// GetAuthSession retrieves a login session by token.
func (s *Store) GetAuthSession(ctx context.Context, token string) (*domain.AuthSession, error) {
	var (
		a                  domain.AuthSession
		expires, createdAt scanTime
	)
	err := s.queryRow(ctx,
		"SELECT token, user_id, user_agent, expires_at, created_at FROM auth_sessions WHERE token = ?;", token,
	).Scan(&a.Token, &a.UserID, &a.UserAgent, &expires, &createdAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.ExpiresAt = expires.Time
	a.CreatedAt = createdAt.Time
	return &a, nil
}

// DeleteAuthSession deletes a login session by token.
func (s *Store) DeleteAuthSession(ctx context.Context, token string) error {
	_, err := s.exec(ctx, "DELETE FROM auth_sessions WHERE token = ?;", token)
	return err
}

// DeleteExpiredAuthSessions deletes login sessions that expired before now.
func (s *Store) DeleteExpiredAuthSessions(ctx context.Context, now time.Time) error {
	_, err := s.exec(ctx, "DELETE FROM auth_sessions WHERE expires_at < ?;", s.timeArg(now))
	return err
}
