// Package commands implements CLI command handlers for gitpulse.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitpulse/pkg/version"
)

// NewRootCommand creates the gitpulse root command. Without a subcommand it
// scans and prints the dashboard.
func NewRootCommand() *cobra.Command {
	cmd := newDashboardCommand(defaultDashboardDeps())

	cmd.AddCommand(NewRenderCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewMCPCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gitpulse %s\n", version.String())

			return err
		},
	}
}
