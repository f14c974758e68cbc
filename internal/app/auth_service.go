// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"clockin/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidPassword indicates that the user exists but the password did not match.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrSessionNotFound indicates that the requested login session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the login session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// DefaultSessionTTL is how long a login session stays valid.
const DefaultSessionTTL = 24 * time.Hour

// AuthService handles registration, authentication and login sessions.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.AuthSessionRepository
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.AuthSessionRepository, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Register creates a user. Emails are case-insensitive and must be unique.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, &domain.ValidationError{Field: "email", Reason: "a valid email is required"}
	case strings.TrimSpace(name) == "":
		return nil, &domain.ValidationError{Field: "name", Reason: "required"}
	case password == "":
		return nil, &domain.ValidationError{Field: "password", Reason: "required"}
	}

	existing, err := s.users.GetUser(ctx, email)
	if err != nil {
		return nil, domain.Storage("get user", err)
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	u := domain.User{Email: email, Name: strings.TrimSpace(name), Password: password, CreatedAt: s.now()}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, domain.Storage("create user", err)
	}
	return &u, nil
}

// Authenticate checks an email and password. It distinguishes an unknown
// user from a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, normalizeEmail(email))
	if err != nil {
		return nil, domain.Storage("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Password == "" || !ConstantTimeCompare(user.Password, password) {
		return nil, ErrInvalidPassword
	}
	return user, nil
}

// Login authenticates a user and creates a login session.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.startSession(ctx, user.Email, userAgent)
}

func (s *AuthService) startSession(ctx context.Context, email, userAgent string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	if err := s.sessions.CreateAuthSession(ctx, domain.AuthSession{
		Token:     token,
		UserID:    email,
		UserAgent: userAgent,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}); err != nil {
		return "", domain.Storage("create auth session", err)
	}
	return token, nil
}

// Logout invalidates a login session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteAuthSession(ctx, token)
}

// ValidateSession checks if a session token is valid and matches the user agent.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.User, error) {
	session, err := s.sessions.GetAuthSession(ctx, token)
	if err != nil || session == nil {
		return nil, ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		_ = s.sessions.DeleteAuthSession(ctx, token)
		return nil, ErrSessionExpired
	}

	if session.UserAgent != userAgent {
		_ = s.sessions.DeleteAuthSession(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetUser(ctx, session.UserID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// PurgeExpired removes login sessions past their expiry.
func (s *AuthService) PurgeExpired(ctx context.Context) error {
	return s.sessions.DeleteExpiredAuthSessions(ctx, s.now())
}

// ValidateForwardAuth validates a request from a forward-auth proxy. It
// trusts the Remote-User header and provisions unknown users.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, remoteUser string) (*domain.User, error) {
	if remoteUser == "" {
		return nil, errors.New("no remote user header")
	}
	return s.provision(ctx, remoteUser, "")
}

// LoginWithUser creates a session for an already authenticated user (e.g. via SSO).
func (s *AuthService) LoginWithUser(ctx context.Context, email, name, userAgent string) (string, error) {
	user, err := s.provision(ctx, email, name)
	if err != nil {
		return "", err
	}
	return s.startSession(ctx, user.Email, userAgent)
}

// provision returns the user with email, creating one without a password if
// missing. Such users can only sign in through SSO.
func (s *AuthService) provision(ctx context.Context, email, name string) (*domain.User, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetUser(ctx, email)
	if err != nil {
		return nil, domain.Storage("get user", err)
	}
	if user != nil {
		return user, nil
	}

	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u := domain.User{Email: email, Name: name, CreatedAt: s.now()}
	if err := s.users.CreateUser(ctx, u); err != nil {
		// Lost a race with a concurrent provision.
		if errors.Is(err, domain.ErrUserExists) {
			if user, err := s.users.GetUser(ctx, email); err == nil && user != nil {
				return user, nil
			}
		}
		return nil, domain.Storage("create user", err)
	}
	return &u, nil
}

// GetUser returns the user with email or ErrUserNotFound.
func (s *AuthService) GetUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, normalizeEmail(email))
	if err != nil {
		return nil, domain.Storage("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
