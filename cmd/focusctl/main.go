package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "focusctl",
		Short:         "Pomodoro timer with a local ledger synced to a focusflow server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "client config file (default ~/.focusflow/config.yaml)")

	root.AddCommand(
		runCmd(),
		tuiCmd(),
		statusCmd(),
		resetCmd(),
		historyCmd(),
		syncCmd(),
		statsCmd(),
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		configCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
