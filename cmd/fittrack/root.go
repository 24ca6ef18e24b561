package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the fittrack CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fittrack",
		Short: "fittrack - Fitness App account and progress backend",
		Long: `fittrack serves signup, login, email verification and the progress
dashboard over HTTP, and bundles a few operator tools.`,
		SilenceUsage: true,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewTokenCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
