package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/tsm/internal/config"
	"github.com/Dicklesworthstone/tsm/internal/dashboard"
	"github.com/Dicklesworthstone/tsm/internal/layout"
)

func newLayoutCmd() *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "layout [config]",
		Short: "Print the tiles a layout produces",
		Long: `Load a layout and print the tile each device gets on a terminal of the
given size, without starting the dashboard. The last row is kept for the
status line, as on screen.

Examples:
  tsm layout
  tsm layout work --width 200 --height 50`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			cfg, err := config.Load(name)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("width") || !cmd.Flags().Changed("height") {
				w, h := terminalSize()
				if !cmd.Flags().Changed("width") {
					width = w
				}
				if !cmd.Flags().Changed("height") {
					height = h
				}
			}

			tiles, err := dashboard.Layout(cfg.Placements(), width, height)
			if err != nil {
				return layoutError(cfg, err)
			}
			printTiles(cmd.OutOrStdout(), cfg, tiles, width, height)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", fallbackWidth, "terminal width in columns")
	cmd.Flags().IntVar(&height, "height", fallbackHeight, "terminal height in rows")
	return cmd
}

func printTiles(w io.Writer, cfg *config.Config, tiles []layout.Tile, width, height int) {
	fmt.Fprintf(w, "%s on %dx%d\n", cfg.Name, width, height)
	fmt.Fprintf(w, "%-3s %-8s %5s %5s %6s %6s\n", "#", "type", "top", "left", "width", "height")
	for i, t := range tiles {
		fmt.Fprintf(w, "%-3d %-8s %5d %5d %6d %6d\n", i, t.Kind, t.Top, t.Left, t.Width, t.Height)
	}
}
