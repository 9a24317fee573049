package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitpulse/pkg/config"
	"github.com/Sumatoshi-tech/gitpulse/pkg/observability"
	"github.com/Sumatoshi-tech/gitpulse/pkg/report"
	"github.com/Sumatoshi-tech/gitpulse/pkg/scan"
	"github.com/Sumatoshi-tech/gitpulse/pkg/terminal"
	"github.com/Sumatoshi-tech/gitpulse/pkg/version"
)

type configLoader func(path string) (*config.Config, error)

type dashboardDeps struct {
	loadConfig configLoader
	now        func() time.Time
}

func defaultDashboardDeps() dashboardDeps {
	return dashboardDeps{loadConfig: config.LoadConfig, now: time.Now}
}

// DashboardCommand holds flags and dependencies of the dashboard command.
type DashboardCommand struct {
	configPath string
	paths      []string
	days       int
	maxRepos   int
	workers    int
	exclude    []string
	output     string
	format     string
	noColor    bool
	quiet      bool
	telemetry  telemetryFlags

	deps dashboardDeps
}

func newDashboardCommand(deps dashboardDeps) *cobra.Command {
	dc := &DashboardCommand{deps: deps}

	cmd := &cobra.Command{
		Use:   "gitpulse",
		Short: "Git activity dashboard for every repository under a directory",
		Long: `gitpulse finds Git repositories below the scan directories, collects the
commits of the last N days and prints a dashboard: summary counters, a
per-repository breakdown, a daily commit chart and the most recent commits.

Use --output to also export the report as JSON, YAML or an HTML plot page.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          dc.run,
	}

	cmd.Flags().StringVarP(&dc.configPath, "config", "c", "", "Config file (default: first of "+
		"./config/settings.yaml, ~/.gitpulse.yaml, ~/.config/gitpulse/settings.yaml)")
	cmd.Flags().StringSliceVarP(&dc.paths, "path", "p", nil, "Directory to scan; repeatable (default: scan_directories)")
	cmd.Flags().IntVarP(&dc.days, "days", "d", config.DefaultDays, "Number of days to look back")
	cmd.Flags().IntVar(&dc.maxRepos, "max-repos", config.DefaultMaxRepos, "Maximum number of repositories to scan")
	cmd.Flags().IntVar(&dc.workers, "workers", config.DefaultWorkers, "Parallel extraction workers (0 = use CPU count)")
	cmd.Flags().StringSliceVar(&dc.exclude, "exclude", nil, "Path segments to skip (default: exclude_patterns)")
	cmd.Flags().StringVarP(&dc.output, "output", "o", "", "Export the report to this file (.lz4 suffix compresses)")
	cmd.Flags().StringVar(&dc.format, "format", "", "Export format: json, yaml, plot (default: from --output extension)")
	cmd.Flags().BoolVar(&dc.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVarP(&dc.quiet, "quiet", "q", false, "Suppress progress messages")
	registerTelemetryFlags(cmd, &dc.telemetry)

	return cmd
}

func registerTelemetryFlags(cmd *cobra.Command, flags *telemetryFlags) {
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().BoolVar(&flags.logJSON, "log-json", false, "Write logs as JSON")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write scan metrics in Prometheus text format to this file")
}

func (dc *DashboardCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := dc.deps.loadConfig(dc.configPath)
	if err != nil {
		return err
	}

	dc.applyFlags(cmd, cfg)

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	format, err := dc.exportFormat()
	if err != nil {
		return err
	}

	obsCfg, err := observabilityConfig(cfg, dc.telemetry, observability.ModeCLI, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return err
	}
	defer shutdownObservability(providers)

	metrics, err := observability.NewScanMetrics(providers.Meter)
	if err != nil {
		return err
	}

	progress := cmd.ErrOrStderr()
	if dc.quiet {
		progress = io.Discard
	}

	scanner := scan.New(
		scan.WithLogger(providers.Logger),
		scan.WithTracer(providers.Tracer),
		scan.WithMetrics(metrics),
		scan.WithProgress(scan.Progress{
			Scanning: func(root string) {
				fmt.Fprintf(progress, "Scanning %s...\n", root)
			},
			Discovered: func(count int) {
				fmt.Fprintf(progress, "Found %d git repositories\n", count)
			},
		}),
	)

	req := scan.Request{
		Roots:    cfg.ScanDirectories,
		Days:     cfg.DefaultDays,
		MaxRepos: cfg.MaxRepos,
		Exclude:  cfg.ExcludePatterns,
		Workers:  cfg.Workers,
	}

	res, err := scanner.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	termCfg := terminal.NewConfig()
	termCfg.NoColor = termCfg.NoColor || dc.noColor

	dashboard := terminal.NewDashboard(termCfg, req.Days)
	dashboard.FeedLimit = cfg.FeedLimit
	dashboard.ChartDays = cfg.ChartDays
	dashboard.Now = dc.deps.now

	err = dashboard.Render(cmd.OutOrStdout(), res.Report)
	if err != nil {
		return err
	}

	if dc.output == "" {
		return nil
	}

	doc := report.Build(res.Report, report.Metadata{
		GeneratedAt: dc.deps.now(),
		Days:        req.Days,
		Version:     version.Version,
		ScanRoots:   req.Roots,
	})

	err = report.WriteFile(dc.output, doc, format)
	if err != nil {
		return err
	}

	fmt.Fprintf(progress, "Report exported to %s\n", dc.output)

	return nil
}

// applyFlags overrides cfg with every flag the user set explicitly.
func (dc *DashboardCommand) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("path") {
		cfg.ScanDirectories = dc.paths
	}

	if flags.Changed("days") {
		cfg.DefaultDays = dc.days
	}

	if flags.Changed("max-repos") {
		cfg.MaxRepos = dc.maxRepos
	}

	if flags.Changed("workers") {
		cfg.Workers = dc.workers
	}

	if flags.Changed("exclude") {
		cfg.ExcludePatterns = dc.exclude
	}
}

func (dc *DashboardCommand) exportFormat() (report.Format, error) {
	if dc.format != "" {
		return report.ParseFormat(dc.format)
	}

	return report.FormatFromPath(dc.output), nil
}
