package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var (
		email    string
		password string
		register bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the server and adopt the account's timer settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			authenticate := a.remote.Login
			if register {
				authenticate = a.remote.Register
			}
			result, err := authenticate(ctx, email, password)
			if err != nil {
				return err
			}
			if err := a.store.SaveToken(ctx, result.Token); err != nil {
				return err
			}

			settings, err := a.remote.FetchSettings(ctx, result.Token)
			if err != nil {
				return fmt.Errorf("fetch settings: %w", err)
			}
			timerCfg := settings.TimerConfig()
			if err := a.engine.UpdateConfig(ctx, timerCfg); err != nil {
				return err
			}
			if err := a.store.SaveTimerConfig(ctx, timerCfg); err != nil {
				return err
			}

			fmt.Printf("Signed in as %s\n", color.CyanString(result.User.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&register, "register", false, "create the account first")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.ClearToken(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the stored token belongs to",
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
			user, err := a.remote.CurrentUser(ctx, token)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", color.CyanString(user.Email), user.ID)
			return nil
		},
	}
}
