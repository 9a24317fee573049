package terminal

import "github.com/fatih/color"

// Style names a text style used by the dashboard.
type Style int

// Dashboard styles.
const (
	StyleNone Style = iota
	StyleTitle
	StyleSection
	StyleDim
	StyleGood
	StyleFair
	StyleAccent
	StyleError
	StyleValue
)

var styleAttrs = map[Style][]color.Attribute{
	StyleTitle:   {color.FgCyan, color.Bold},
	StyleSection: {color.FgYellow, color.Bold},
	StyleDim:     {color.Faint},
	StyleGood:    {color.FgGreen},
	StyleFair:    {color.FgYellow},
	StyleAccent:  {color.FgCyan},
	StyleError:   {color.FgRed},
	StyleValue:   {color.Bold},
}

// Colorize applies style to text unless NoColor is set.
func (c Config) Colorize(text string, style Style) string {
	attrs, ok := styleAttrs[style]
	if !ok || c.NoColor {
		return text
	}

	painter := color.New(attrs...)
	painter.EnableColor()

	return painter.Sprint(text)
}
