package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/fittrack/fittrack/internal/config"
	"github.com/fittrack/fittrack/internal/logging"
	"github.com/fittrack/fittrack/internal/metrics"
)

// NewTokenCmd creates the token subcommand.
func NewTokenCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for an email without a password check",
		Long: `Issue an access token signed with the configured secret. Intended for
operators testing the protected routes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			app, err := cfg.NewApp(logging.Discard(), metrics.NewMetrics(prometheus.NewRegistry()))
			if err != nil {
				return err
			}

			issued, err := app.CreateAccessToken(email)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, issued.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", issued.ExpiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "subject email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
