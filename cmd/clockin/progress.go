package main

import (
	"context"
	"fmt"

	"clockin/internal/adapter/console"
	"clockin/internal/app"
	"clockin/internal/bootstrap"

	"github.com/spf13/cobra"
)

func newProgressCmd(g *globalFlags) *cobra.Command {
	var calendar bool
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show progress toward the business-day goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withActor(cmd, g, func(ctx context.Context, a *bootstrap.App, actor app.Actor) error {
				rep, err := a.Progress.Progress(ctx, actor.UserID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(out, console.Title.Render(fmt.Sprintf("Goal: %d business days from %s",
					rep.Goal.GoalBusinessDays, rep.Goal.StartDate.Format("2006-01-02"))))
				_, _ = fmt.Fprintln(out, console.RenderProgressBar(rep.CompletedDays, rep.RequiredDays, 30))
				_, _ = fmt.Fprintf(out, "%.1f%% complete, streak %d (longest %d)\n", rep.Percent, rep.Streaks.Current, rep.Streaks.Longest)

				if calendar {
					cells, err := a.Progress.Calendar(ctx, actor.UserID, 0)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(out)
					_, _ = fmt.Fprintln(out, console.RenderCalendar(cells, 5))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&calendar, "calendar", false, "also draw the goal calendar")
	return cmd
}
