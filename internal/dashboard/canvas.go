package dashboard

import (
	"sort"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// segment is one write of text at a column.
type segment struct {
	col  int
	text string
}

// Canvas collects (row, col, text) writes for one frame and joins them
// into the string handed to the terminal. Text width is measured with
// ansi.StringWidth, as in package bar. Writes are expected not to overlap;
// a write starting left of where the previous one on the same row ended
// is dropped.
type Canvas struct {
	width  int
	height int
	rows   [][]segment
}

func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 0), max(height, 0)
	return &Canvas{
		width:  width,
		height: height,
		rows:   make([][]segment, height),
	}
}

// Write places text at row, col. Writes outside the canvas are ignored.
func (c *Canvas) Write(row, col int, text string) {
	if row < 0 || row >= c.height || col < 0 || col >= c.width || text == "" {
		return
	}
	c.rows[row] = append(c.rows[row], segment{col: col, text: text})
}

func (c *Canvas) String() string {
	lines := make([]string, c.height)
	for i, segs := range c.rows {
		sort.SliceStable(segs, func(a, b int) bool { return segs[a].col < segs[b].col })

		var b strings.Builder
		cursor := 0
		for _, s := range segs {
			if s.col < cursor {
				continue
			}
			b.WriteString(strings.Repeat(" ", s.col-cursor))
			b.WriteString(s.text)
			cursor = s.col + ansi.StringWidth(s.text)
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}
