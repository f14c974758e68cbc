package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"clockin/internal/adapter/console"
	"clockin/internal/app"
	"clockin/internal/bootstrap"
	"clockin/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath  string
	dbPath      string
	databaseURL string
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "clockin",
		Short:         "Track working time against business hours",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file (default $CLOCKIN_CONFIG)")
	root.PersistentFlags().StringVar(&g.dbPath, "db", "", "SQLite database path")
	root.PersistentFlags().StringVar(&g.databaseURL, "database-url", "", "Postgres connection string")

	root.AddCommand(newRegisterCmd(&g))
	root.AddCommand(newLoginCmd(&g))
	root.AddCommand(newLogoutCmd(&g))
	root.AddCommand(newWhoamiCmd(&g))
	root.AddCommand(newClockCmd(&g))
	root.AddCommand(newSessionCmd(&g))
	root.AddCommand(newProgressCmd(&g))
	root.AddCommand(newImportCmd(&g))
	root.AddCommand(newExportCmd(&g))
	root.AddCommand(newSettingsCmd(&g))
	root.AddCommand(newWatchCmd(&g))
	root.AddCommand(newServeCmd(&g))
	return root
}

func loadConfig(g *globalFlags) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if g.dbPath != "" {
		cfg.DBPath = g.dbPath
	}
	if g.databaseURL != "" {
		cfg.DatabaseURL = g.databaseURL
	}
	return cfg, nil
}

func loadApp(cmd *cobra.Command, g *globalFlags) (*bootstrap.App, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, console.NewNotifier(cmd.ErrOrStderr()))
}

var errNotLoggedIn = errors.New("not logged in: run `clockin login` first")

// currentActor returns the logged-in local user.
func currentActor(ctx context.Context, a *bootstrap.App) (app.Actor, error) {
	email, err := a.Settings.CurrentUser(ctx)
	if err != nil {
		return app.Actor{}, err
	}
	if email == "" {
		return app.Actor{}, errNotLoggedIn
	}
	return app.Actor{UserID: email}, nil
}

// withActor loads the app, resolves the current user and runs fn.
func withActor(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, a *bootstrap.App, actor app.Actor) error) error {
	a, err := loadApp(cmd, g)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	actor, err := currentActor(ctx, a)
	if err != nil {
		return err
	}
	return fn(ctx, a, actor)
}
