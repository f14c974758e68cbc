package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newSettingsCmd(g *globalFlags) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Show or change settings"}

	settings.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			goal, err := a.Settings.Goal(cmd.Context())
			if err != nil {
				return err
			}
			theme, err := a.Settings.Theme(cmd.Context())
			if err != nil {
				return err
			}
			user, err := a.Settings.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			s := a.Schedule
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"user: %s\ntheme: %s\ngoal: %d business days from %s\nhours: %s-%s, %s-%s (%s)\n",
				user, theme, goal.GoalBusinessDays, goal.StartDate.Format("2006-01-02"),
				hhmm(s.MorningStart), hhmm(s.MorningEnd), hhmm(s.AfternoonStart), hhmm(s.AfternoonEnd), s.Loc())
			return nil
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:   "set-goal <business-days> <start-date>",
		Short: "Set the goal length and its first day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid day count %q", args[0])
			}
			a, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Settings.SetGoal(cmd.Context(), days, args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "goal set: %d business days from %s\n", days, args[1])
			return nil
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:   "theme [dark|light]",
		Short: "Set the theme, or toggle it when no argument is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			var theme string
			if len(args) == 1 {
				theme = args[0]
				err = a.Settings.SetTheme(cmd.Context(), theme)
			} else {
				theme, err = a.Settings.ToggleTheme(cmd.Context())
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "theme: %s\n", theme)
			return nil
		},
	})
	return settings
}

func hhmm(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
