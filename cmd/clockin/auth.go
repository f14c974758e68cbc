package main

import (
	"context"
	"errors"
	"fmt"

	"clockin/internal/app"
	"clockin/internal/bootstrap"

	"github.com/spf13/cobra"
)

func newRegisterCmd(g *globalFlags) *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:   "register --email <email> --name <name> --password <password>",
		Short: "Create a local user and log in as it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.Auth.Register(cmd.Context(), email, name, password)
			if err != nil {
				return err
			}
			if err := a.Settings.SetCurrentUser(cmd.Context(), u.Email); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", u.Email, u.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newLoginCmd(g *globalFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login --email <email> --password <password>",
		Short: "Log in as a local user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.Auth.Authenticate(cmd.Context(), email, password)
			switch {
			case errors.Is(err, app.ErrUserNotFound):
				return fmt.Errorf("no user registered as %s", email)
			case errors.Is(err, app.ErrInvalidPassword):
				return errors.New("invalid password")
			case err != nil:
				return err
			}
			if err := a.Settings.SetCurrentUser(cmd.Context(), u.Email); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newLogoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the logged-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Settings.ClearCurrentUser(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				u, err := a.Auth.GetUser(ctx, actor.UserID)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> since %s\n", u.Name, u.Email, u.CreatedAt.Format("2006-01-02"))
				return nil
			})
		},
	}
}
