// Package bootstrap wires configuration, storage and services together.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	adapthttp "clockin/internal/adapter/http"
	"clockin/internal/adapter/postgres"
	"clockin/internal/adapter/sqlite"
	"clockin/internal/app"
	"clockin/internal/config"
	"clockin/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Store is everything the services persist through.
type Store interface {
	domain.SessionRepository
	domain.UserRepository
	domain.AuthSessionRepository
	domain.SettingsRepository
	Close() error
}

// App holds the wired services.
type App struct {
	Config   config.Config
	Store    Store
	Schedule domain.Schedule

	Auth     *app.AuthService
	Ledger   *app.LedgerService
	Progress *app.ProgressService
	Settings *app.SettingsService
	Transfer *app.TransferService
}

// OpenStore opens Postgres when DatabaseURL is set and the local SQLite file
// otherwise.
func OpenStore(cfg config.Config) (Store, error) {
	if cfg.DatabaseURL != "" {
		st, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		return st, nil
	}
	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return st, nil
}

// New opens the configured store and wires the services. notifier may be nil.
func New(cfg config.Config, notifier domain.Notifier) (*App, error) {
	st, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	a, err := NewWithStore(cfg, st, notifier)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore wires the services over st.
func NewWithStore(cfg config.Config, st Store, notifier domain.Notifier) (*App, error) {
	sched, err := cfg.Schedule()
	if err != nil {
		return nil, err
	}
	loc := sched.Loc()

	ledger := app.NewLedgerService(st, sched, notifier)
	settings := app.NewSettingsService(st, loc)
	return &App{
		Config:   cfg,
		Store:    st,
		Schedule: sched,
		Auth:     app.NewAuthService(st, st, cfg.SessionTTL),
		Ledger:   ledger,
		Progress: app.NewProgressService(st, settings, loc),
		Settings: settings,
		Transfer: app.NewTransferService(ledger, st),
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// Timer returns a live timer on the configured schedule.
func (a *App) Timer() *app.LiveTimer {
	return app.NewLiveTimer(a.Schedule)
}

// Server builds the HTTP adapter. With SSO configured it discovers the
// provider, which needs network access to the issuer.
func (a *App) Server(ctx context.Context) (*adapthttp.Server, error) {
	srv := adapthttp.New(adapthttp.Services{
		Auth:     a.Auth,
		Ledger:   a.Ledger,
		Progress: a.Progress,
		Settings: a.Settings,
		Transfer: a.Transfer,
	}, a.Config.WebDir)

	if len(a.Config.CORSOrigins) > 0 {
		srv = srv.WithCORS(a.Config.CORSOrigins)
	}
	if a.Config.SingleUser != "" {
		log.Printf("auth disabled: acting as %s", a.Config.SingleUser)
		srv = srv.WithoutAuth(a.Config.SingleUser)
	}

	if oc := a.Config.OIDC; oc.Enabled() {
		provider, err := oidc.NewProvider(ctx, oc.Issuer)
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		srv = srv.WithOIDC(adapthttp.OIDCConfig{
			Enabled:  true,
			Provider: provider,
			OAuth2Config: oauth2.Config{
				ClientID:     oc.ClientID,
				ClientSecret: oc.ClientSecret,
				RedirectURL:  oc.RedirectURL,
				Endpoint:     provider.Endpoint(),
				Scopes:       oc.Scopes,
			},
		})
		log.Printf("sso enabled: issuer %s", oc.Issuer)
	}
	return srv, nil
}
