package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the local ledger with the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, appOptions{LogOutput: os.Stderr})
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.reconciler.Reconcile(ctx)
			if err != nil {
				return err
			}
			if result.Skipped {
				fmt.Println(color.YellowString("Not signed in, nothing to sync"))
				return nil
			}

			for _, m := range result.Migrations {
				fmt.Printf("%s pushed %s as %s\n", color.GreenString("↑"), m.LocalID, m.RemoteID)
			}
			for _, migrationErr := range result.MigrationErrors {
				fmt.Printf("%s %v\n", color.RedString("!"), migrationErr)
			}
			fmt.Printf("%d sessions, %d completed focus sessions\n", len(result.Merged), result.CompletedFocusCount)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show productivity statistics computed by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			token, err := a.token(ctx)
			if err != nil {
				return err
			}

			to := a.clock.Now()
			from := to.AddDate(0, 0, -days)
			stats, err := a.remote.Stats(ctx, token, &from, &to)
			if err != nil {
				return err
			}

			fmt.Printf("Last %d days\n", days)
			fmt.Printf("  Sessions:          %d (%d completed, %d interrupted)\n",
				stats.TotalSessions, stats.CompletedSessions, stats.InterruptedSessions)
			fmt.Printf("  Focus time:        %s\n", (time.Duration(stats.TotalFocusTimeMinutes) * time.Minute).String())
			fmt.Printf("  Daily average:     %.1f min\n", stats.DailyAverageFocusTimeMinutes)
			fmt.Printf("  Weekly average:    %.1f min\n", stats.WeeklyAverageFocusTimeMinutes)
			fmt.Printf("  Longest streak:    %d days\n", stats.LongestFocusStreak)
			fmt.Printf("  Best day:          %s\n", stats.MostProductiveDayOfWeek)
			fmt.Printf("  Best time of day:  %s\n", stats.MostProductiveTimeOfDay)
			fmt.Printf("  Completion rate:   %s\n", color.CyanString("%.0f%%", stats.SessionCompletionRate))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "size of the window in days")
	return cmd
}
