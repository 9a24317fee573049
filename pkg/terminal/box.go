package terminal

import "strings"

// Line drawing characters.
const (
	LineThin   = "─"
	LineDouble = "═"
	AxisCorner = "└"
	AxisSide   = "│"
	BarBlock   = "█"
)

// DrawSeparator draws a thin horizontal line.
func DrawSeparator(width int) string {
	if width <= 0 {
		return ""
	}

	return strings.Repeat(LineThin, width)
}

// DrawBanner draws a title centered between two double lines.
func DrawBanner(title string, width int) string {
	rule := strings.Repeat(LineDouble, max(width, 0))

	return rule + "\n" + Center(title, width) + "\n" + rule
}
