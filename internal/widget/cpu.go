package widget

import (
	"fmt"

	"github.com/Dicklesworthstone/tsm/internal/bar"
	"github.com/Dicklesworthstone/tsm/internal/layout"
	"github.com/Dicklesworthstone/tsm/internal/model"
)

// CPU shows one bar per logical core followed by RAM and swap bars.
type CPU struct {
	frame
	source CPUSource
	glyph  string

	cores   []float64
	ramUsed uint64
	ramTot  uint64
	swpUsed uint64
	swpTot  uint64
	ok      bool
	err     error
}

func NewCPU(tile layout.Tile, source CPUSource, glyph string) *CPU {
	return &CPU{
		frame:  newFrame(tile),
		source: source,
		glyph:  glyph,
	}
}

// Update pulls a reading. A failed refresh may still have updated some
// parts, and the getters hold the last good value of the others, so they
// are read unless the source has never produced anything.
func (c *CPU) Update() {
	c.err = c.source.Refresh()

	cores := c.source.CoreUsage()
	ramUsed, ramTot := c.source.Memory()
	swpUsed, swpTot := c.source.Swap()
	if c.err != nil && len(cores) == 0 && ramTot == 0 && swpTot == 0 {
		return
	}

	c.ok = true
	c.cores = append(c.cores[:0], cores...)
	c.ramUsed, c.ramTot = ramUsed, ramTot
	c.swpUsed, c.swpTot = swpUsed, swpTot
}

func (c *CPU) Resize(tile layout.Tile) { c.resize(tile) }

func (c *CPU) Render() []string {
	w, h := c.contentSize()
	if w == 0 {
		return c.draw(nil)
	}

	lines := make([]string, 0, h)
	title := "CPU"
	if c.ok && c.err != nil {
		title += " (stale: " + c.err.Error() + ")"
	}
	lines = append(lines, header(title, w))
	if !c.ok {
		reason := "waiting for first sample"
		if c.err != nil {
			reason = c.err.Error()
		}
		lines = append(lines, placeholder(reason, w))
		return c.draw(lines)
	}

	for i, usage := range c.cores {
		if len(lines) == h {
			break
		}
		lines = append(lines, bar.Render(w, fmt.Sprintf("%3d[", i), usage/100, fmt.Sprintf("%.2f%%]", usage), c.glyph))
	}
	lines = append(lines,
		bar.Render(w, "RAM[", model.Fraction(float64(c.ramUsed), float64(c.ramTot)), fmt.Sprintf("%d/%dMb]", c.ramUsed, c.ramTot), c.glyph),
		bar.Render(w, "SWP[", model.Fraction(float64(c.swpUsed), float64(c.swpTot)), fmt.Sprintf("%d/%dMb]", c.swpUsed, c.swpTot), c.glyph),
	)
	return c.draw(lines)
}
