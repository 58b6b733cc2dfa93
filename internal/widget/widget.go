// Package widget turns provider readings into fixed-size blocks of text rows.
//
// A Widget owns one tile of the dashboard. The controller calls Update to
// pull fresh metrics, Resize when the terminal changes size, and Render to
// obtain exactly tile.Height rows of exactly tile.Width columns each. Widgets
// never write to the terminal themselves.
package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/tsm/internal/bar"
	"github.com/Dicklesworthstone/tsm/internal/layout"
	"github.com/Dicklesworthstone/tsm/internal/model"
)

// Widget is one monitored resource drawn inside a tile.
type Widget interface {
	Kind() string
	Bounds() layout.Rect
	Update()
	Resize(tile layout.Tile)
	Render() []string
}

// CPUSource provides processor and memory readings. Each getter returns
// the last good value of its part, even after a Refresh that failed.
type CPUSource interface {
	Refresh() error
	CoreUsage() []float64
	Memory() (usedMB, totalMB uint64)
	Swap() (usedMB, totalMB uint64)
}

// GPUSource provides per-device GPU readings.
type GPUSource interface {
	Refresh() error
	Devices() []model.GPU
}

// padding is the border reserved on each side of a tile.
const padding = 1

var (
	border      = lipgloss.RoundedBorder()
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// frame is the part every widget shares: its own copy of the tile and the
// scratch rows sized to it.
type frame struct {
	kind string
	rect layout.Rect
	rows []string
}

func newFrame(tile layout.Tile) frame {
	f := frame{kind: tile.Kind}
	f.resize(tile)
	return f
}

func (f *frame) Kind() string { return f.kind }

// Bounds is the tile the widget currently occupies, in terminal cells.
func (f *frame) Bounds() layout.Rect { return f.rect }

// resize adopts the tile geometry and reallocates the row buffer so that
// len(rows) == Height on return.
func (f *frame) resize(tile layout.Tile) {
	f.rect = tile.Rect
	f.rows = make([]string, max(tile.Height, 0))
}

// contentSize is the area left inside the border. It is zero in both
// dimensions when either side of the tile is too small for a border.
func (f *frame) contentSize() (width, height int) {
	w, h := f.rect.Width-2*padding, f.rect.Height-2*padding
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return w, h
}

// draw fills the row buffer from content lines, each already exactly the
// content width. Lines past the content height are dropped from the tail.
// The returned slice is a copy.
func (f *frame) draw(content []string) []string {
	w, h := f.contentSize()
	if w == 0 {
		blank := strings.Repeat(" ", max(f.rect.Width, 0))
		for i := range f.rows {
			f.rows[i] = blank
		}
		return append([]string(nil), f.rows...)
	}

	hz := strings.Repeat(border.Top, w)
	f.rows[0] = borderStyle.Render(border.TopLeft + hz + border.TopRight)
	f.rows[len(f.rows)-1] = borderStyle.Render(border.BottomLeft + strings.Repeat(border.Bottom, w) + border.BottomRight)

	left, right := borderStyle.Render(border.Left), borderStyle.Render(border.Right)
	empty := strings.Repeat(" ", w)
	for i := 0; i < h; i++ {
		line := empty
		if i < len(content) {
			line = content[i]
		}
		f.rows[i+padding] = left + line + right
	}
	return append([]string(nil), f.rows...)
}

func header(title string, width int) string {
	return headerStyle.Render(bar.Fit(title, width))
}

func placeholder(reason string, width int) string {
	return subtleStyle.Render(bar.Fit("no data: "+reason, width))
}
