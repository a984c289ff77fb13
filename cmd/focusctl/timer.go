package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	apperrors "focusflow/internal/errors"
	"focusflow/internal/ledger"
	"focusflow/internal/model"
	"focusflow/internal/notify"
	"focusflow/internal/timer"
	"focusflow/internal/tui"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [focus|short_break|long_break]",
		Short: "Run the timer in the foreground",
		Long: `Run the timer in the foreground until interrupted.

With a mode argument a new session is started in that mode. Without one the
pending session is resumed, or a session in the current mode is started.
Ctrl+C pauses the session; it resumes on the next run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, appOptions{Console: os.Stdout, LogOutput: os.Stderr})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := beginSession(ctx, a.engine, args); err != nil {
				return err
			}

			go a.reconciler.Run(ctx, a.cfg.SyncInterval)

			runner := timer.NewRunner(a.engine, a.clock)
			runner.OnTick = func(state model.TimerState) {
				fmt.Printf("\r%s %s ", color.CyanString(state.Mode.Label()), notify.FormatSeconds(state.RemainingSeconds))
			}
			runner.OnError = func(err error) {
				fmt.Fprintf(os.Stderr, "\n%s %v\n", color.RedString("tick:"), err)
			}
			_ = runner.Run(ctx)
			fmt.Println()

			// Nothing ticks after exit; leave the session paused.
			if a.engine.State().IsRunning {
				if err := a.engine.PauseOrResume(context.Background()); err != nil {
					return err
				}
				fmt.Println(color.YellowString("paused"))
			}
			return nil
		},
	}
}

func beginSession(ctx context.Context, engine *timer.Engine, args []string) error {
	if len(args) == 1 {
		mode, err := model.ParseSessionMode(args[0])
		if err != nil {
			return err
		}
		if err := engine.Start(ctx, mode); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return fmt.Errorf("a session is already pending, run focusctl reset first")
			}
			return err
		}
		return nil
	}
	if engine.State().IsRunning {
		return nil
	}
	return engine.PauseOrResume(ctx)
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := openApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			go a.reconciler.Run(ctx, a.cfg.SyncInterval)
			return tui.Run(ctx, a.engine, a.clock, a.reconciler)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the timer state and today's progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			state := a.engine.State()
			cfg := a.engine.Config()

			fmt.Printf("Mode:      %s\n", color.CyanString(state.Mode.Label()))
			fmt.Printf("Remaining: %s\n", notify.FormatSeconds(state.RemainingSeconds))
			switch {
			case state.IsRunning:
				fmt.Printf("State:     %s\n", color.GreenString("running"))
			case state.Current != nil:
				fmt.Printf("State:     %s\n", color.YellowString("paused"))
			default:
				fmt.Printf("State:     idle\n")
			}

			dayStart := startOfDay(a.clock.Now())
			today, err := a.ledger.Count(ctx, ledger.Filter{
				Mode:    model.ModeFocus,
				Outcome: model.OutcomeCompleted,
				From:    &dayStart,
			})
			if err != nil {
				return err
			}
			if cfg.DailyGoalSessions > 0 {
				fmt.Printf("Today:     %d/%d focus sessions\n", today, cfg.DailyGoalSessions)
			} else {
				fmt.Printf("Today:     %d focus sessions\n", today)
			}

			unsynced, err := a.ledger.Count(ctx, ledger.Filter{SyncStatus: model.SyncLocal})
			if err != nil {
				return err
			}
			if unsynced > 0 {
				fmt.Printf("Unsynced:  %d\n", unsynced)
			}
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Interrupt the pending session and rewind the countdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), appOptions{Console: os.Stdout})
			if err != nil {
				return err
			}
			defer a.Close()
			return a.engine.Reset(cmd.Context())
		},
	}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
