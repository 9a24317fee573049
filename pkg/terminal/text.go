package terminal

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to truncated strings.
const Ellipsis = "..."

// Truncate shortens s to at most maxRunes runes without an ellipsis.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	return string([]rune(s)[:maxRunes])
}

// TruncateWithEllipsis shortens s to maxRunes runes, ending in "..." when cut.
func TruncateWithEllipsis(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	if maxRunes <= len(Ellipsis) {
		return strings.Repeat(".", max(maxRunes, 0))
	}

	return Truncate(s, maxRunes-len(Ellipsis)) + Ellipsis
}

// PadRight pads s with spaces on the right to width runes.
func PadRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}

	return s + strings.Repeat(" ", width-n)
}

// PadLeft pads s with spaces on the left to width runes.
func PadLeft(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}

	return strings.Repeat(" ", width-n) + s
}

// Center places s in the middle of width runes.
func Center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}

	left := (width - n) / 2

	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
