package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"clockin/internal/adapter/console"
	"clockin/internal/app"
	"clockin/internal/bootstrap"
	"clockin/internal/domain"

	"github.com/spf13/cobra"
)

func newSessionCmd(g *globalFlags) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Manage recorded sessions"}

	var entry app.ManualEntry
	add := &cobra.Command{
		Use:   "add --day <yyyy-mm-dd> --in <HH:MM> [--out <HH:MM>]",
		Short: "Record a session by hand",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				sess, err := a.Ledger.AddManual(ctx, actor, entry)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %d on %s: %s billed\n", sess.ID, sess.Date, console.FormatDuration(sess.Duration))
				return nil
			})
		},
	}
	add.Flags().StringVar(&entry.Day, "day", "", "calendar day")
	add.Flags().StringVar(&entry.ClockIn, "in", "", "clock-in time")
	add.Flags().StringVar(&entry.ClockOut, "out", "", "clock-out time (empty for a running session)")

	var listLimit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				items, err := a.Ledger.ListByUser(ctx, actor.UserID, 0)
				if err != nil {
					return err
				}
				domain.SortByClockIn(items, true)
				if listLimit > 0 && len(items) > listLimit {
					items = items[:listLimit]
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				loc := a.Schedule.Loc()
				for _, s := range items {
					out := "running"
					if s.ClockOut != nil {
						out = s.ClockOut.In(loc).Format("15:04")
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s-%s\t%s\n", s.ID, s.Date, s.ClockIn.In(loc).Format("15:04"), out, console.FormatDuration(s.Duration))
				}
				return nil
			})
		},
	}
	list.Flags().IntVar(&listLimit, "limit", 20, "maximum sessions to show (0 for all)")

	var daysLimit int
	days := &cobra.Command{
		Use:   "days",
		Short: "Show per-day totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				rows, err := a.Ledger.DaySummaries(ctx, actor.UserID, daysLimit)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), console.RenderDays(rows))
				return nil
			})
		},
	}
	days.Flags().IntVar(&daysLimit, "limit", 14, "maximum days to show (0 for all)")

	rm := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				ids := make([]int64, 0, len(args))
				for _, arg := range args {
					id, err := strconv.ParseInt(arg, 10, 64)
					if err != nil {
						return fmt.Errorf("invalid session id %q", arg)
					}
					sess, err := a.Ledger.GetSession(ctx, id)
					if errors.Is(err, domain.ErrNotFound) {
						continue
					}
					if err != nil {
						return err
					}
					if sess.UserID != actor.UserID {
						return fmt.Errorf("session %d not found", id)
					}
					ids = append(ids, id)
				}
				removed, err := a.Ledger.RemoveSessions(ctx, ids)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d session(s)\n", removed)
				return err
			})
		},
	}

	session.AddCommand(add, list, days, rm)
	return session
}
