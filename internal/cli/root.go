package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/tsm/internal/config"
	"github.com/Dicklesworthstone/tsm/internal/dashboard"
	"github.com/Dicklesworthstone/tsm/internal/errors"
	"github.com/Dicklesworthstone/tsm/internal/layout"
	"github.com/Dicklesworthstone/tsm/internal/logger"
	"github.com/Dicklesworthstone/tsm/internal/sampler"
	"github.com/Dicklesworthstone/tsm/internal/widget"
)

// debugLogFile receives log output while the dashboard runs with TSM_DEBUG set.
const debugLogFile = "tsm-debug.log"

// Terminal size assumed when the real one cannot be read.
const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

// rootFlags are the overrides accepted by the root command.
type rootFlags struct {
	interval time.Duration
	symbol   string
	noGPU    bool
}

// NewRootCmd builds the tsm command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "tsm [config]",
		Short: "Terminal system monitor",
		Long: `Show live CPU, memory and GPU usage in tiles laid out by a config file.

The config is a path to a file, or a name looked up as
~/.config/tsm/<name>.{json,yaml,yml,toml}. Without one, a built-in layout
with the CPU on the left and the GPU on the right is used.

Press q or ctrl+c to exit.

Examples:
  tsm
  tsm work
  tsm ./layouts/wide.yaml --interval 1s
  tsm --no-gpu --symbol '#'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args, flags)
			if err != nil {
				return err
			}
			return runDashboard(cfg)
		},
	}

	bindRootFlags(cmd, flags)

	cmd.AddCommand(newLayoutCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func bindRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.Flags().DurationVar(&flags.interval, "interval", 0, "refresh interval (e.g. 500ms, 2s)")
	cmd.Flags().StringVar(&flags.symbol, "symbol", "", "glyph used to fill bars")
	cmd.Flags().BoolVar(&flags.noGPU, "no-gpu", false, "disable GPU sampling")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, err.Error())
		if !stderrors.As(err, new(*errors.Error)) {
			fmt.Fprintln(os.Stderr)
		}
		os.Exit(1)
	}
}

// loadConfig reads the layout named by args and applies the flags the user
// set explicitly.
func loadConfig(cmd *cobra.Command, args []string, flags *rootFlags) (*config.Config, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	cfg, err := config.Load(name)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("interval") {
		if flags.interval < config.MinInterval {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Interval %s is shorter than %s", flags.interval, config.MinInterval),
				"Try something like 500ms or 2s.")
		}
		cfg.Interval = flags.interval
	}
	if cmd.Flags().Changed("symbol") {
		cfg.Symbol = flags.symbol
	}
	if flags.noGPU {
		cfg.GPU = false
	}
	return cfg, nil
}

func runDashboard(cfg *config.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrTerminal,
			"tsm needs an interactive terminal",
			"Run tsm directly in a terminal instead of piping its output.")
	}
	width, height := terminalSize()

	closeLog, err := setupLogging()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal,
			"Cannot open "+debugLogFile,
			"Unset TSM_DEBUG or run tsm from a writable directory.")
	}
	defer closeLog()

	lg := logger.NewEnvLogger("[tsm]")
	ctrl, err := newController(cfg, sampler.NewCPU(), gpuSource(cfg), width, height, lg)
	if err != nil {
		return err
	}
	lg.Info("starting %q with %d devices, interval %s", cfg.Name, len(cfg.Devices), cfg.Interval)
	return dashboard.Run(ctrl)
}

// newController builds the widget registry and lays the config out for a
// width x height terminal.
func newController(cfg *config.Config, cpu widget.CPUSource, gpu widget.GPUSource, width, height int, log logger.Logger) (*dashboard.Controller, error) {
	ctrl, err := dashboard.New(dashboard.Options{
		Placements: cfg.Placements(),
		Registry:   widget.Builtin(cpu, gpu, cfg.Symbol),
		Interval:   cfg.Interval,
		Width:      width,
		Height:     height,
		Logger:     log,
	})
	if err != nil {
		return nil, layoutError(cfg, err)
	}
	return ctrl, nil
}

func gpuSource(cfg *config.Config) widget.GPUSource {
	if !cfg.GPU {
		return sampler.NoGPU{}
	}
	return sampler.NewGPU()
}

// layoutError turns an overlap into a user-facing error naming the config.
func layoutError(cfg *config.Config, err error) error {
	var overlap *layout.OverlapError
	if !stderrors.As(err, &overlap) {
		return err
	}
	return errors.WrapWithCode(err, errors.ErrLayout,
		fmt.Sprintf("Devices in %q overlap", cfg.Name),
		fmt.Sprintf("Move or resize device %d or %d so their rectangles do not intersect.", overlap.A, overlap.B))
}

func terminalSize() (width, height int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return fallbackWidth, fallbackHeight
	}
	return w, h
}

// setupLogging keeps log output off the screen while the dashboard runs.
func setupLogging() (func(), error) {
	if !logger.DebugEnabled() {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(debugLogFile, "")
	if err != nil {
		return nil, err
	}
	return func() { _ = f.Close() }, nil
}
