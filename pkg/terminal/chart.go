package terminal

import (
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/gitpulse/pkg/aggregate"
)

// ChartHeight is the number of rows of the daily bar chart.
const ChartHeight = 10

const (
	msgNoData    = "No activity data available."
	msgNoCommits = "No commits in this period."
)

// BarChart draws one column per day, ChartHeight rows tall. Row i (counted
// from the bottom, 1-based) is labelled i*max/ChartHeight and holds a block
// for every day whose count reaches i/ChartHeight of the maximum.
func (c Config) BarChart(days []aggregate.Day) []string {
	peak := 0
	for _, d := range days {
		peak = max(peak, d.Commits)
	}

	if peak == 0 {
		return []string{msgNoCommits}
	}

	lines := make([]string, 0, ChartHeight+2)

	for row := ChartHeight; row > 0; row-- {
		threshold := float64(row) / ChartHeight * float64(peak)

		var bars strings.Builder

		for _, d := range days {
			if float64(d.Commits) >= threshold {
				bars.WriteString(BarBlock)
			} else {
				bars.WriteByte(' ')
			}
		}

		label := c.Colorize(fmt.Sprintf("%3d %s", row*peak/ChartHeight, AxisSide), StyleDim)
		lines = append(lines, label+c.Colorize(bars.String(), StyleGood))
	}

	lines = append(lines, c.Colorize("    "+AxisCorner+strings.Repeat(LineThin, len(days)), StyleDim))
	lines = append(lines, c.Colorize(fmt.Sprintf("     %s  →  %s", days[0].Key, days[len(days)-1].Key), StyleDim))

	return lines
}
