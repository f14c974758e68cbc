package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clockin/internal/adapter/console"
	"clockin/internal/adapter/tui"
	"clockin/internal/app"
	"clockin/internal/bootstrap"
	"clockin/internal/domain"

	"github.com/spf13/cobra"
)

func newClockCmd(g *globalFlags) *cobra.Command {
	clock := &cobra.Command{Use: "clock", Short: "Clock in and out"}

	clock.AddCommand(&cobra.Command{
		Use:   "in",
		Short: "Start a session now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				sess, err := a.Ledger.ClockIn(ctx, actor)
				if errors.Is(err, app.ErrActiveSessionExists) {
					return errors.New("already clocked in; run `clockin clock out` first")
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %d started at %s\n", sess.ID, sess.ClockIn.In(a.Schedule.Loc()).Format("15:04"))
				return nil
			})
		},
	})

	clock.AddCommand(&cobra.Command{
		Use:   "out",
		Short: "End the running session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				sess, err := a.Ledger.ClockOut(ctx, actor)
				if errors.Is(err, app.ErrNoActiveSession) {
					return errors.New("not clocked in")
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %d: %s billed\n", sess.ID, console.FormatDuration(sess.Duration))
				return nil
			})
		},
	})

	clock.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show today's total and the running session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				sum, err := a.Ledger.TodaySummary(ctx, actor)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "%s: %d session(s), %s billed\n", sum.Day, sum.Sessions, console.FormatDuration(sum.TotalSeconds))
				if sum.Active != nil {
					_, _ = fmt.Fprintf(out, "clocked in since %s, %s so far\n",
						sum.Active.ClockIn.In(a.Schedule.Loc()).Format("15:04"), console.FormatDuration(sum.LiveSeconds))
				} else {
					_, _ = fmt.Fprintln(out, "not clocked in")
				}
				return nil
			})
		},
	})
	return clock
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show a live timer for the running session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				active, err := a.Ledger.FindActiveSession(ctx, actor.UserID)
				if err != nil {
					return err
				}
				if active == nil {
					return errors.New("not clocked in")
				}
				m := tui.NewWatch(ctx, a.Timer(), *active, interval, func(ctx context.Context) (domain.Session, error) {
					return a.Ledger.ClockOut(ctx, actor)
				})
				final, err := tui.RunWatch(m)
				if err != nil {
					return err
				}
				if _, err := final.ClockedOut(); err != nil {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "refresh interval")
	return cmd
}
