package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"focusflow/internal/ledger"
	"focusflow/internal/model"
	"focusflow/internal/notify"
)

func historyCmd() *cobra.Command {
	var (
		mode    string
		outcome string
		since   time.Duration
		local   bool
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List resolved sessions from the local ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			filter := ledger.Filter{Outcome: model.Outcome(outcome), Limit: limit}
			if mode != "" {
				parsed, err := model.ParseSessionMode(mode)
				if err != nil {
					return err
				}
				filter.Mode = parsed
			}
			if since > 0 {
				from := a.clock.Now().Add(-since)
				filter.From = &from
			}
			if local {
				filter.SyncStatus = model.SyncLocal
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tMODE\tOUTCOME\tDURATION\tSYNC\tID")
			rows := 0
			for session, err := range a.ledger.List(ctx, filter) {
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					session.StartedAt.Local().Format("2006-01-02 15:04"),
					session.Mode.Label(),
					outcomeLabel(session.Outcome),
					notify.FormatSeconds(session.ActualDurationSeconds),
					session.SyncStatus,
					session.ID,
				)
				rows++
			}
			if rows == 0 {
				fmt.Println("No sessions recorded")
				return nil
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "only this mode (focus, short_break, long_break)")
	cmd.Flags().StringVar(&outcome, "outcome", "", "only this outcome (completed, interrupted)")
	cmd.Flags().DurationVar(&since, "since", 0, "only sessions started within this window, e.g. 24h")
	cmd.Flags().IntVar(&limit, "limit", 50, "show at most this many of the most recent sessions (0 for all)")
	cmd.Flags().BoolVar(&local, "unsynced", false, "only sessions not yet confirmed by the server")
	return cmd
}

func outcomeLabel(outcome model.Outcome) string {
	switch outcome {
	case model.OutcomeCompleted:
		return color.GreenString(string(outcome))
	case model.OutcomeInterrupted:
		return color.YellowString(string(outcome))
	default:
		return string(outcome)
	}
}
