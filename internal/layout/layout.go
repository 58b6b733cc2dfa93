package layout

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle. Units depend on context: config-grid
// units for a Placement, terminal cells for a Tile.
type Rect struct {
	Top    int
	Left   int
	Width  int
	Height int
}

func (r Rect) Right() int  { return r.Left + r.Width }
func (r Rect) Bottom() int { return r.Top + r.Height }

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Overlaps reports whether r and o share any cell. Rectangles that only
// touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	separated := r.Right() <= o.Left ||
		o.Right() <= r.Left ||
		r.Bottom() <= o.Top ||
		o.Bottom() <= r.Top
	return !separated
}

// Placement is where a device belongs on the config grid.
type Placement struct {
	Kind string
	Rect
}

// Tile is a Placement scaled into terminal cells.
type Tile struct {
	Kind string
	Rect
}

// OverlapError names the first pair of placements found overlapping.
type OverlapError struct {
	A, B         int
	KindA, KindB string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("device %d (%s) overlaps device %d (%s)", e.A, e.KindA, e.B, e.KindB)
}

// Validate checks every unordered pair of placements and returns an
// *OverlapError for the first overlapping pair.
func Validate(placements []Placement) error {
	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			if placements[i].Overlaps(placements[j].Rect) {
				return &OverlapError{
					A:     i,
					B:     j,
					KindA: placements[i].Kind,
					KindB: placements[j].Kind,
				}
			}
		}
	}
	return nil
}

// Scale returns the column and row factors that stretch the config grid
// spanned by placements over a canvasWidth x canvasHeight area.
func Scale(placements []Placement, canvasWidth, canvasHeight int) (colScale, rowScale float64) {
	maxRight, maxBottom := 1, 1
	for _, p := range placements {
		if r := p.Right(); r > maxRight {
			maxRight = r
		}
		if b := p.Bottom(); b > maxBottom {
			maxBottom = b
		}
	}
	colScale = float64(max(canvasWidth, 0)) / float64(maxRight)
	rowScale = float64(max(canvasHeight, 0)) / float64(maxBottom)
	return colScale, rowScale
}

// ComputeTiles validates placements and scales them onto the canvas.
// Tile i always belongs to placement i. Coordinates are floored
// individually, so trailing cells lost to truncation stay unused.
func ComputeTiles(placements []Placement, canvasWidth, canvasHeight int) ([]Tile, error) {
	if err := Validate(placements); err != nil {
		return nil, err
	}

	colScale, rowScale := Scale(placements, canvasWidth, canvasHeight)
	tiles := make([]Tile, 0, len(placements))
	for _, p := range placements {
		tiles = append(tiles, Tile{
			Kind: p.Kind,
			Rect: Rect{
				Top:    floorScale(p.Top, rowScale),
				Left:   floorScale(p.Left, colScale),
				Width:  floorScale(p.Width, colScale),
				Height: floorScale(p.Height, rowScale),
			},
		})
	}
	return tiles, nil
}

func floorScale(v int, scale float64) int {
	return int(math.Floor(float64(v) * scale))
}
