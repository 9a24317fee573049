// Package terminal renders the activity dashboard for a text terminal.
package terminal

import (
	"os"
	"strconv"

	"github.com/fatih/color"
)

// Width bounds.
const (
	DefaultWidth = 70
	MinWidth     = 60
	MaxWidth     = 120
)

// Config holds terminal rendering configuration.
type Config struct {
	Width   int
	NoColor bool
}

// NewConfig detects width from COLUMNS and color support from fatih/color,
// which honours NO_COLOR and non-terminal output.
func NewConfig() Config {
	return Config{
		Width:   DetectWidth(),
		NoColor: color.NoColor,
	}
}

// DetectWidth returns COLUMNS clamped to [MinWidth, MaxWidth], or
// DefaultWidth when COLUMNS is unset or invalid.
func DetectWidth() int {
	columns := os.Getenv("COLUMNS")
	if columns == "" {
		return DefaultWidth
	}

	width, err := strconv.Atoi(columns)
	if err != nil {
		return DefaultWidth
	}

	return ClampWidth(width)
}

// ClampWidth limits width to [MinWidth, MaxWidth].
func ClampWidth(width int) int {
	return max(MinWidth, min(width, MaxWidth))
}
