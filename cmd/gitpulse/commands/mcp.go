package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitpulse/pkg/config"
	"github.com/Sumatoshi-tech/gitpulse/pkg/mcp"
	"github.com/Sumatoshi-tech/gitpulse/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var (
		configPath string
		telemetry  telemetryFlags
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes one tool:
  - gitpulse_activity: scan a directory tree and report recent commit activity

Omitted tool arguments fall back to the config file settings.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			telemetry.logJSON = true

			obsCfg, err := observabilityConfig(cfg, telemetry, observability.ModeMCP, cobraCmd.ErrOrStderr())
			if err != nil {
				return err
			}

			providers, err := observability.Init(obsCfg)
			if err != nil {
				return err
			}
			defer shutdownObservability(providers)

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return err
			}

			scanMetrics, err := observability.NewScanMetrics(providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:      providers.Logger,
				Metrics:     red,
				ScanMetrics: scanMetrics,
				Tracer:      providers.Tracer,
				Defaults:    mcp.DefaultsFromConfig(cfg),
			})

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file")
	registerTelemetryFlags(cmd, &telemetry)
	_ = cmd.Flags().MarkHidden("log-json")

	return cmd
}
