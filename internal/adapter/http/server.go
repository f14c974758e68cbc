// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"
	"time"

	"clockin/internal/app"
	"clockin/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Services bundles the application services the HTTP adapter drives.
type Services struct {
	Auth     *app.AuthService
	Ledger   *app.LedgerService
	Progress *app.ProgressService
	Settings *app.SettingsService
	Transfer *app.TransferService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc  *app.AuthService
	ledger   *app.LedgerService
	progress *app.ProgressService
	settings *app.SettingsService
	transfer *app.TransferService

	oidcConfig  OIDCConfig
	origins     []string
	webDir      string
	disableAuth bool
	fixedUser   string
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string) *Server {
	return &Server{
		authSvc:  svc.Auth,
		ledger:   svc.Ledger,
		progress: svc.Progress,
		settings: svc.Settings,
		transfer: svc.Transfer,
		webDir:   webDir,
	}
}

// WithOIDC enables SSO login.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithCORS allows cross-origin requests from origins.
func (s *Server) WithCORS(origins []string) *Server {
	s.origins = origins
	return s
}

// WithoutAuth skips session checks and runs every request as email. Used in
// tests and single-user setups behind a trusted proxy.
func (s *Server) WithoutAuth(email string) *Server {
	s.disableAuth = true
	s.fixedUser = email
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(withNoCache)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		r.Get("/config", s.handleConfig)

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/sso/login", s.handleSSOLogin)
		r.Get("/auth/sso/callback", s.handleSSOCallback)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			r.Post("/clock/in", s.handleClockIn)
			r.Post("/clock/out", s.handleClockOut)
			r.Get("/clock/active", s.handleClockActive)

			r.Get("/sessions", s.handleSessionsList)
			r.Post("/sessions", s.handleSessionsAdd)
			r.Post("/sessions/delete", s.handleSessionsBulkDelete)
			r.Get("/sessions/days", s.handleSessionsDays)
			r.Get("/sessions/today", s.handleSessionsToday)
			r.Put("/sessions/{id}", s.handleSessionRetime)
			r.Delete("/sessions/{id}", s.handleSessionDelete)

			r.Get("/progress", s.handleProgress)
			r.Get("/progress/calendar", s.handleProgressCalendar)
			r.Get("/progress/daily", s.handleProgressDaily)

			r.Get("/settings", s.handleSettingsGet)
			r.Put("/settings", s.handleSettingsPut)

			r.Post("/import", s.handleImport)
			r.Get("/export", s.handleExport)
		})
	})

	r.Handle("/*", spaFromDisk(s.webDir))
	return r
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	sched := s.ledger.Schedule()
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled": s.oidcConfig.Enabled,
		"timezone":    sched.Loc().String(),
		"businessHours": map[string]string{
			"morningStart":   clock(sched.MorningStart),
			"morningEnd":     clock(sched.MorningEnd),
			"afternoonStart": clock(sched.AfternoonStart),
			"afternoonEnd":   clock(sched.AfternoonEnd),
		},
	})
}

// userView is the public shape of a user; the password never leaves the server.
type userView struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewOf(u *domain.User) userView {
	return userView{Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}
