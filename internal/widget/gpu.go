package widget

import (
	"fmt"

	"github.com/Dicklesworthstone/tsm/internal/bar"
	"github.com/Dicklesworthstone/tsm/internal/layout"
	"github.com/Dicklesworthstone/tsm/internal/model"
)

// GPU shows an identity line, a memory bar and a utilization bar per device.
type GPU struct {
	frame
	source GPUSource
	glyph  string

	devices []model.GPU
	ok      bool
	err     error
}

func NewGPU(tile layout.Tile, source GPUSource, glyph string) *GPU {
	return &GPU{
		frame:  newFrame(tile),
		source: source,
		glyph:  glyph,
	}
}

// Update pulls a reading. On failure the previous devices stay on screen.
func (g *GPU) Update() {
	if g.err = g.source.Refresh(); g.err != nil {
		return
	}
	g.ok = true
	g.devices = append(g.devices[:0], g.source.Devices()...)
}

func (g *GPU) Resize(tile layout.Tile) { g.resize(tile) }

func (g *GPU) Render() []string {
	w, h := g.contentSize()
	if w == 0 {
		return g.draw(nil)
	}

	lines := make([]string, 0, h)
	lines = append(lines, header("GPU", w))
	if !g.ok {
		reason := "waiting for first sample"
		if g.err != nil {
			reason = g.err.Error()
		}
		lines = append(lines, placeholder(reason, w))
		return g.draw(lines)
	}

	for _, d := range g.devices {
		if len(lines) >= h {
			break
		}
		lines = append(lines,
			bar.Fit(fmt.Sprintf("%d: %s, T: %3.0f°C", d.Index, d.Name, d.TempC), w),
			bar.Render(w, "Mem[", model.Fraction(d.MemUsedMB, d.MemTotalMB), fmt.Sprintf("%.0f/%.0fMb]", d.MemUsedMB, d.MemTotalMB), g.glyph),
			bar.Render(w, "GPU[", d.Util/100, fmt.Sprintf("%.0f%%]", d.Util), g.glyph),
		)
	}
	return g.draw(lines)
}
