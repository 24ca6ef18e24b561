package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fittrack/fittrack/progress"
	"github.com/fittrack/fittrack/schema"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema {signup|login|resend|progress}",
		Short:     "Print a JSON Schema document",
		Long:      `Print the JSON Schema for a request body (signup, login, resend) or for the progress record.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{schema.Signup, schema.Login, schema.Resend, "progress"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				doc []byte
				err error
			)
			if args[0] == "progress" {
				doc, err = progress.JSONSchema()
			} else {
				doc, err = schema.Document(args[0])
			}
			if err != nil {
				return fmt.Errorf("load %s schema: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if _, err := out.Write(doc); err != nil {
				return err
			}
			if len(doc) > 0 && doc[len(doc)-1] != '\n' {
				_, err = fmt.Fprintln(out)
			}
			return err
		},
	}
}
