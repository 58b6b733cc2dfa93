package dashboard

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/tsm/internal/bar"
	"github.com/Dicklesworthstone/tsm/internal/layout"
	"github.com/Dicklesworthstone/tsm/internal/logger"
	"github.com/Dicklesworthstone/tsm/internal/widget"
)

// State is the controller's lifecycle phase.
type State int

const (
	Initializing State = iota
	Running
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting down"
	default:
		return "unknown"
	}
}

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = 500 * time.Millisecond

// statusHeight is the number of bottom rows kept for the status line.
const statusHeight = 1

var (
	hintStyle  = lipgloss.NewStyle().Foreground(bar.ColorOK)
	errorStyle = lipgloss.NewStyle().Foreground(bar.ColorCrit)
)

// Options configures a Controller.
type Options struct {
	Placements []layout.Placement
	Registry   *widget.Registry
	Interval   time.Duration
	// Width and Height are the terminal size at startup.
	Width  int
	Height int
	Logger logger.Logger
}

// entry pairs a live widget with the placement it was built from.
type entry struct {
	index  int
	widget widget.Widget
}

// Controller owns the widgets and drives the update/render cycle. It is a
// Bubble Tea model: ticks, key presses and resizes all arrive through
// Update on a single goroutine, so a cycle is never interrupted.
type Controller struct {
	placements []layout.Placement
	registry   *widget.Registry
	interval   time.Duration
	log        logger.Logger

	state     State
	width     int
	height    int
	tiles     []layout.Tile
	widgets   []entry
	layoutErr error
	frame     string
}

// Messages
type tickMsg time.Time

// New lays out the placements for the initial terminal size and builds one
// widget per tile. Overlapping placements are returned as an error; tiles
// of unknown kind are skipped with a warning.
func New(opts Options) (*Controller, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Registry == nil {
		opts.Registry = widget.NewRegistry()
	}

	c := &Controller{
		placements: append([]layout.Placement(nil), opts.Placements...),
		registry:   opts.Registry,
		interval:   opts.Interval,
		log:        opts.Logger,
		state:      Initializing,
		width:      opts.Width,
		height:     opts.Height,
	}

	tiles, err := Layout(c.placements, c.width, c.height)
	if err != nil {
		return nil, err
	}
	c.tiles = tiles

	for i, tile := range tiles {
		factory, err := c.registry.Lookup(tile.Kind)
		if err != nil {
			c.log.Warn("skipping device %d: %v", i, err)
			continue
		}
		c.widgets = append(c.widgets, entry{index: i, widget: factory(tile)})
	}
	c.log.Debug("built %d widgets for %d devices on %dx%d", len(c.widgets), len(tiles), c.width, c.height)
	c.draw()
	return c, nil
}

// Layout computes the tiles a Controller uses on a width x height
// terminal. The bottom row is left to the status line.
func Layout(placements []layout.Placement, width, height int) ([]layout.Tile, error) {
	return layout.ComputeTiles(placements, max(width, 0), max(height-statusHeight, 0))
}

func (c *Controller) canvasWidth() int { return max(c.width, 0) }

func (c *Controller) State() State { return c.state }

// Widgets returns the live widgets in placement order.
func (c *Controller) Widgets() []widget.Widget {
	out := make([]widget.Widget, len(c.widgets))
	for i, e := range c.widgets {
		out[i] = e.widget
	}
	return out
}

// Tiles returns the current layout.
func (c *Controller) Tiles() []layout.Tile { return c.tiles }

// LayoutErr is the error from the last failed relayout, or nil.
func (c *Controller) LayoutErr() error { return c.layoutErr }

// Init starts the first cycle immediately.
func (c *Controller) Init() tea.Cmd {
	c.state = Running
	return func() tea.Msg { return tickMsg(time.Now()) }
}

func (c *Controller) tickCmd() tea.Cmd {
	return tea.Tick(c.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (c *Controller) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if err := c.Resize(msg.Width, msg.Height); err != nil {
			// previous tiles stay; draw puts err on the status line
			c.log.Debug("resize to %dx%d failed: %v", msg.Width, msg.Height, err)
		}
		c.draw()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			c.state = ShuttingDown
			return c, tea.Quit
		}
	case tickMsg:
		if c.state != Running {
			return c, nil
		}
		c.Cycle()
		return c, c.tickCmd()
	}
	return c, nil
}

func (c *Controller) View() string {
	if c.state == ShuttingDown {
		return ""
	}
	return c.frame
}

// Cycle pulls fresh metrics into every widget and redraws the frame.
func (c *Controller) Cycle() {
	for _, e := range c.widgets {
		e.widget.Update()
	}
	c.draw()
}

// Resize lays the original placements out again for a width x height
// terminal and moves every existing widget to its new tile. Widgets are
// never rebuilt. If the layout fails the previous tiles stay in place and
// the error is kept for the status line.
func (c *Controller) Resize(width, height int) error {
	c.width, c.height = width, height

	tiles, err := Layout(c.placements, width, height)
	if err != nil {
		c.layoutErr = err
		c.log.Error("keeping previous layout: %v", err)
		return err
	}

	c.layoutErr = nil
	c.tiles = tiles
	for _, e := range c.widgets {
		e.widget.Resize(tiles[e.index])
	}
	c.log.Debug("relayout for %dx%d", width, height)
	return nil
}

// draw renders every widget at its own offset plus the status line.
func (c *Controller) draw() {
	canvas := NewCanvas(c.width, c.height)
	for _, e := range c.widgets {
		at := e.widget.Bounds()
		for i, row := range e.widget.Render() {
			canvas.Write(at.Top+i, at.Left, row)
		}
	}
	if line := c.statusLine(); line != "" {
		canvas.Write(c.height-statusHeight, 0, line)
	}
	c.frame = canvas.String()
}

func (c *Controller) statusLine() string {
	width := c.canvasWidth()
	hint := "Press q to exit"
	if c.layoutErr == nil {
		return hintStyle.Render(bar.Fit(hint, width))
	}

	hint += " | "
	msg := fmt.Sprintf("layout: %v", c.layoutErr)
	if len(hint) >= width {
		return hintStyle.Render(bar.Fit(hint, width))
	}
	return hintStyle.Render(hint) + errorStyle.Render(bar.Fit(msg, width-len(hint)))
}

// Run shows the dashboard on the alternate screen until the user quits.
func Run(c *Controller, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(c, opts...).Run()
	return err
}
