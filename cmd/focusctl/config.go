package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"focusflow/internal/config"
	"focusflow/internal/model"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change the timer configuration",
	}
	cmd.AddCommand(configShowCmd(), configSetCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the client and timer configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			doc := struct {
				Client config.ClientConfig `yaml:"client"`
				Timer  model.TimerConfig   `yaml:"timer"`
			}{a.cfg, a.engine.Config()}

			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(doc)
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one timer setting",
		Long: `Change one timer setting.

Keys:
  focus, short_break, long_break   duration such as 25m or a number of seconds
  cycles                           focus sessions before a long break
  auto_start_breaks, auto_start_focus   true or false
  daily_goal                       completed focus sessions per day, 0 for none`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			cfg, err := applySetting(a.engine.Config(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := a.engine.UpdateConfig(ctx, cfg); err != nil {
				return err
			}
			if err := a.store.SaveTimerConfig(ctx, cfg); err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func applySetting(cfg model.TimerConfig, key, value string) (model.TimerConfig, error) {
	var err error
	switch strings.ToLower(key) {
	case "focus":
		cfg.FocusSeconds, err = parseSeconds(value)
	case "short_break":
		cfg.ShortBreakSeconds, err = parseSeconds(value)
	case "long_break":
		cfg.LongBreakSeconds, err = parseSeconds(value)
	case "cycles":
		cfg.CyclesBeforeLongBreak, err = strconv.Atoi(value)
	case "auto_start_breaks":
		cfg.AutoStartBreaks, err = strconv.ParseBool(value)
	case "auto_start_focus":
		cfg.AutoStartFocus, err = strconv.ParseBool(value)
	case "daily_goal":
		cfg.DailyGoalSessions, err = strconv.Atoi(value)
	default:
		return cfg, fmt.Errorf("unknown setting %q", key)
	}
	if err != nil {
		return cfg, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return cfg, nil
}

// parseSeconds accepts a Go duration or a bare number of seconds.
func parseSeconds(value string) (int, error) {
	if seconds, err := strconv.Atoi(value); err == nil {
		return seconds, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	return int(d.Round(time.Second) / time.Second), nil
}
