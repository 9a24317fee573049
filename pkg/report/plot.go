package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "100%"
	chartHeight = "480px"

	dailyColor = "#5470c6"
	repoColor  = "#91cc75"
)

// RenderPlot writes an HTML page with the daily commit histogram and the
// per-repository commit totals.
func RenderPlot(w io.Writer, doc Document) error {
	page := components.NewPage()
	page.PageTitle = "gitpulse"
	page.AddCharts(dailyChart(doc), repositoryChart(doc))

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

func newBar(title, subtitle, yLabel string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel}),
	)

	return bar
}

func dailyChart(doc Document) *charts.Bar {
	days := make([]string, 0, len(doc.DailyActivity))
	for day := range doc.DailyActivity {
		days = append(days, day)
	}

	slices.Sort(days)

	data := make([]opts.BarData, 0, len(days))
	for _, day := range days {
		data = append(data, opts.BarData{Value: doc.DailyActivity[day]})
	}

	bar := newBar("Daily commits", fmt.Sprintf("last %d days", doc.Metadata.Days), "commits")
	bar.SetXAxis(days).AddSeries("commits", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: dailyColor}))

	return bar
}

func repositoryChart(doc Document) *charts.Bar {
	names := make([]string, 0, len(doc.Repositories))
	data := make([]opts.BarData, 0, len(doc.Repositories))

	for _, repo := range doc.Repositories {
		if repo.TotalCommits == 0 {
			continue
		}

		names = append(names, repo.Name)
		data = append(data, opts.BarData{Value: repo.TotalCommits})
	}

	bar := newBar("Commits per repository", fmt.Sprintf("%d active", len(names)), "commits")
	bar.SetXAxis(names).AddSeries("commits", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: repoColor}))

	return bar
}
