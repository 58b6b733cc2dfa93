package widget

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/tsm/internal/layout"
)

// Built-in device kinds.
const (
	KindCPU = "cpu"
	KindGPU = "gpu"
)

// ErrUnknownKind is returned by Lookup for a kind nobody registered.
var ErrUnknownKind = errors.New("unknown device kind")

// Factory builds a widget for a tile.
type Factory func(tile layout.Tile) Widget

// Registry maps device kinds to widget factories. It is filled once at
// startup and only read afterwards. Kinds are case-insensitive.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Builtin returns a registry holding the cpu and gpu widgets, drawing bars
// with glyph.
func Builtin(cpu CPUSource, gpu GPUSource, glyph string) *Registry {
	r := NewRegistry()
	r.Register(KindCPU, func(tile layout.Tile) Widget { return NewCPU(tile, cpu, glyph) })
	r.Register(KindGPU, func(tile layout.Tile) Widget { return NewGPU(tile, gpu, glyph) })
	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind string, f Factory) {
	r.factories[normalize(kind)] = f
}

func (r *Registry) Lookup(kind string) (Factory, error) {
	f, ok := r.factories[normalize(kind)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	return f, nil
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func normalize(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
