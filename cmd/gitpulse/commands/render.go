package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitpulse/pkg/aggregate"
	"github.com/Sumatoshi-tech/gitpulse/pkg/report"
	"github.com/Sumatoshi-tech/gitpulse/pkg/terminal"
)

const (
	renderCmdUse   = "render <report-file>"
	renderCmdShort = "Render an exported report without rescanning"
	renderArgCount = 1

	// formatText selects the terminal dashboard.
	formatText = "text"
)

// ErrPlotNeedsOutput is returned when an HTML page would go to a terminal.
var ErrPlotNeedsOutput = errors.New("plot format requires --output")

// NewRenderCommand creates the render subcommand.
func NewRenderCommand() *cobra.Command {
	var (
		format  string
		output  string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   renderCmdUse,
		Short: renderCmdShort,
		Long: `Render a report previously written with --output (json or yaml, optionally
.lz4 compressed) as the terminal dashboard, or convert it to another format.`,
		Args: cobra.ExactArgs(renderArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.OutOrStdout(), args[0], format, output, noColor)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, json, yaml, plot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runRender(stdout io.Writer, input, format, output string, noColor bool) error {
	doc, err := report.ReadFile(input)
	if err != nil {
		return err
	}

	if format == formatText {
		return withOutput(stdout, output, func(w io.Writer) error {
			termCfg := terminal.NewConfig()
			termCfg.NoColor = termCfg.NoColor || noColor || output != ""

			dashboard := terminal.NewDashboard(termCfg, doc.Metadata.Days)
			dashboard.Now = doc.Metadata.GeneratedAt.Local

			return dashboard.Render(w, aggregate.Aggregate(doc.Records()))
		})
	}

	parsed, err := report.ParseFormat(format)
	if err != nil {
		return err
	}

	if output != "" {
		return report.WriteFile(output, doc, parsed)
	}

	if parsed == report.FormatPlot {
		return ErrPlotNeedsOutput
	}

	return report.Encode(stdout, doc, parsed)
}

// withOutput runs fn against path, or stdout when path is empty.
func withOutput(stdout io.Writer, path string, fn func(io.Writer) error) (err error) {
	if path == "" {
		return fn(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close output file: %w", closeErr)
		}

		if err != nil {
			_ = os.Remove(path)
		}
	}()

	buffered := bufio.NewWriter(f)

	err = fn(buffered)
	if err != nil {
		return err
	}

	return buffered.Flush()
}
