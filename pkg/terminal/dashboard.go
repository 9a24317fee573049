package terminal

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/gitpulse/pkg/aggregate"
)

// Dashboard layout defaults.
const (
	DefaultFeedLimit = 15
	DefaultChartDays = 14

	indent         = "  "
	title          = "GIT ACTIVITY DASHBOARD"
	statLabelWidth = 24
	nameWidth      = 25
	feedRepoWidth  = 15
	feedMsgWidth   = 40
	busyThreshold  = 5
	sectionRule    = 60
	summaryRule    = 40
)

// Dashboard renders an aggregate.Report as text.
type Dashboard struct {
	Config    Config
	Days      int // Lookback window the report covers.
	FeedLimit int // Maximum feed entries; DefaultFeedLimit when zero.
	ChartDays int // Days shown in the chart; DefaultChartDays when zero.
	Now       func() time.Time
}

// NewDashboard creates a Dashboard with the default layout.
func NewDashboard(cfg Config, days int) *Dashboard {
	return &Dashboard{
		Config:    cfg,
		Days:      days,
		FeedLimit: DefaultFeedLimit,
		ChartDays: DefaultChartDays,
		Now:       time.Now,
	}
}

// Render writes the whole dashboard to w.
func (d *Dashboard) Render(w io.Writer, rep aggregate.Report) error {
	var buf bytes.Buffer

	cfg := d.Config
	width := ClampWidth(cfg.Width)

	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, cfg.Colorize(DrawBanner(title, width), StyleTitle))
	fmt.Fprintln(&buf)

	d.writeSummary(&buf, rep.Summary)
	fmt.Fprintln(&buf)
	d.writeBreakdown(&buf, rep)
	fmt.Fprintln(&buf)
	d.writeChart(&buf, rep.Histogram)
	fmt.Fprintln(&buf)
	d.writeFeed(&buf, rep.Feed)
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, cfg.Colorize(DrawSeparator(width), StyleAccent))

	_, err := w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("write dashboard: %w", err)
	}

	return nil
}

func (d *Dashboard) section(buf *bytes.Buffer, name string, rule int) {
	cfg := d.Config

	fmt.Fprintln(buf, cfg.Colorize(name, StyleSection))
	fmt.Fprintf(buf, "%s%s\n", indent, cfg.Colorize(DrawSeparator(rule), StyleDim))
}

func (d *Dashboard) stat(buf *bytes.Buffer, label string, value int, style Style) {
	cfg := d.Config

	fmt.Fprintf(buf, "%s%s %s\n", indent,
		cfg.Colorize(PadRight(label, statLabelWidth), StyleDim),
		cfg.Colorize(PadLeft(humanize.Comma(int64(value)), 8), style))
}

func (d *Dashboard) writeSummary(buf *bytes.Buffer, s aggregate.Summary) {
	d.section(buf, "SUMMARY", summaryRule)

	d.stat(buf, "Repositories scanned:", s.Repositories, StyleAccent)
	d.stat(buf, "Active repositories:", s.ActiveRepositories, StyleGood)
	d.stat(buf, fmt.Sprintf("Total commits (%d days):", d.Days), s.TotalCommits, StyleFair)
	d.stat(buf, "Files changed:", s.FilesChanged, StyleValue)
	d.stat(buf, "Insertions:", s.Insertions, StyleGood)
	d.stat(buf, "Deletions:", s.Deletions, StyleError)
}

func (d *Dashboard) writeBreakdown(buf *bytes.Buffer, rep aggregate.Report) {
	cfg := d.Config

	d.section(buf, "REPOSITORY BREAKDOWN", sectionRule)

	active := rep.Active()
	if len(active) == 0 {
		fmt.Fprintf(buf, "%s%s\n", indent, cfg.Colorize(msgNoCommits, StyleDim))

		return
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateHeader = true
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Box.PaddingLeft = ""
	tbl.Style().Box.PaddingRight = " "
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignRight},
	})

	tbl.AppendHeader(table.Row{"Repository", "Commits", "Files", "+/-"})

	for _, record := range active {
		style := StyleFair
		if record.TotalCommits > busyThreshold {
			style = StyleGood
		}

		name := cfg.Colorize(PadRight(TruncateWithEllipsis(record.Name, nameWidth), nameWidth), style)
		changes := cfg.Colorize(fmt.Sprintf("+%d/-%d", record.Insertions, record.Deletions), StyleAccent)

		tbl.AppendRow(table.Row{
			name,
			strconv.Itoa(record.TotalCommits),
			strconv.Itoa(record.FilesChanged),
			changes,
		})
	}

	for _, line := range strings.Split(tbl.Render(), "\n") {
		fmt.Fprintf(buf, "%s%s\n", indent, line)
	}
}

func (d *Dashboard) writeChart(buf *bytes.Buffer, hist aggregate.Histogram) {
	cfg := d.Config

	shown := d.ChartDays
	if shown <= 0 {
		shown = DefaultChartDays
	}

	shown = min(shown, d.Days)

	fmt.Fprintln(buf, cfg.Colorize(fmt.Sprintf("Daily Activity (Last %d Days)", shown), StyleTitle))
	fmt.Fprintf(buf, "%s%s\n", indent, cfg.Colorize(DrawSeparator(sectionRule), StyleDim))

	if len(hist) == 0 {
		fmt.Fprintf(buf, "%s%s\n", indent, msgNoData)

		return
	}

	for _, line := range cfg.BarChart(hist.Window(d.now(), shown)) {
		fmt.Fprintf(buf, "%s%s\n", indent, line)
	}
}

func (d *Dashboard) writeFeed(buf *bytes.Buffer, feed []aggregate.FeedEntry) {
	cfg := d.Config

	d.section(buf, "RECENT COMMITS", sectionRule)

	limit := d.FeedLimit
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	if len(feed) == 0 {
		fmt.Fprintf(buf, "%s%s\n", indent, cfg.Colorize(msgNoCommits, StyleDim))

		return
	}

	now := d.now()

	for _, entry := range feed[:min(limit, len(feed))] {
		fmt.Fprintf(buf, "%s%s %s %s %s\n", indent,
			cfg.Colorize(entry.When.Local().Format("01/02 15:04"), StyleDim),
			cfg.Colorize(PadRight(Truncate(entry.Repository, feedRepoWidth), feedRepoWidth), StyleAccent),
			PadRight(Truncate(entry.Subject(), feedMsgWidth), feedMsgWidth),
			cfg.Colorize("("+humanize.RelTime(entry.When, now, "ago", "from now")+")", StyleDim),
		)
	}
}

func (d *Dashboard) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}

	return time.Now()
}
