// Package bar renders fixed-width, color-banded progress bars.
package bar

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DefaultGlyph fills a bar when no usable glyph is configured.
const DefaultGlyph = "|"

// Band is the severity class of a bar's value.
type Band int

const (
	BandOK Band = iota
	BandWarn
	BandCrit
)

func (b Band) String() string {
	switch b {
	case BandOK:
		return "ok"
	case BandWarn:
		return "warn"
	case BandCrit:
		return "crit"
	default:
		return "unknown"
	}
}

// Band colors
var (
	ColorOK   = lipgloss.Color("#39FF14")
	ColorWarn = lipgloss.Color("#FFAA00")
	ColorCrit = lipgloss.Color("#FF0055")

	bandStyles = map[Band]lipgloss.Style{
		BandOK:   lipgloss.NewStyle().Foreground(ColorOK),
		BandWarn: lipgloss.NewStyle().Foreground(ColorWarn),
		BandCrit: lipgloss.NewStyle().Foreground(ColorCrit),
	}
)

// BandFor classifies value after clamping it to [0, 1]:
// [0, 0.5) ok, [0.5, 0.75] warn, (0.75, 1] crit.
func BandFor(value float64) Band {
	v := Clamp(value)
	switch {
	case v < 0.5:
		return BandOK
	case v <= 0.75:
		return BandWarn
	default:
		return BandCrit
	}
}

// Clamp limits value to [0, 1]. NaN becomes 0.
func Clamp(value float64) float64 {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// Render lays out lead, a fill proportional to value, and trail in exactly
// width terminal columns. Widths are display widths as measured by
// lipgloss, so wide glyphs and emoji take two columns and a glyph that
// does not fit whole is left as space. When
// lead and trail alone do not fit, their concatenation is truncated and
// no fill is drawn.
func Render(width int, lead string, value float64, trail string, glyph string) string {
	if width <= 0 {
		return ""
	}

	fillWidth := width - ansi.StringWidth(lead) - ansi.StringWidth(trail)
	if fillWidth < 0 {
		return Fit(lead+trail, width)
	}

	glyphWidth := ansi.StringWidth(glyph)
	if glyphWidth == 0 {
		glyph, glyphWidth = DefaultGlyph, ansi.StringWidth(DefaultGlyph)
	}

	v := Clamp(value)
	count := int(math.Floor(float64(fillWidth) * v / float64(glyphWidth)))
	pad := fillWidth - count*glyphWidth

	var b strings.Builder
	b.WriteString(lead)
	if count > 0 {
		b.WriteString(bandStyles[BandFor(v)].Render(strings.Repeat(glyph, count)))
	}
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(trail)
	return b.String()
}

// Fit truncates or right-pads text to exactly width columns. A wide
// character that would straddle the edge is dropped and padded instead.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "")
	return s + strings.Repeat(" ", max(width-ansi.StringWidth(s), 0))
}
