// Package cli implements the tsm command-line interface.
//
// # Command Structure
//
// The root command runs the dashboard; subcommands help prepare layouts:
//
//	tsm [config]                  - Show the dashboard for a named layout or file
//	tsm layout [config]           - Print the tiles a layout produces for a terminal size
//	tsm init [name]               - Write the default layout to ~/.config/tsm/<name>.yaml
//	tsm version                   - Print version information
//
// # Configuration
//
// Layouts are resolved by internal/config. Flags on the root command
// (--interval, --symbol, --no-gpu) override values read from the file and
// from TSM_* environment variables.
//
// # Logging
//
// While the dashboard owns the terminal, the standard log output is
// discarded, or written to tsm-debug.log when TSM_DEBUG is set.
package cli
