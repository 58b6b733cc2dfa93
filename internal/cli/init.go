package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/tsm/internal/config"
	"github.com/Dicklesworthstone/tsm/internal/errors"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Write the default layout to the config directory",
		Long: `Create ~/.config/tsm/<name>.yaml holding the built-in layout, ready to
edit. The name defaults to "default".

Examples:
  tsm init
  tsm init work
  tsm init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := config.DefaultName
			if len(args) > 0 {
				name = args[0]
			}
			path, err := initCommand(name, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nRun 'tsm %s' to use it.\n", path, name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

// initCommand writes the default config as <name>.yaml and returns its path.
func initCommand(name string, force bool) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("%q is not a valid config name", name),
			"Use a plain name such as 'work'; it becomes ~/.config/tsm/work.yaml.")
	}

	dir, err := config.Home()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine home directory",
			"Set HOME and try again.")
	}

	if !force {
		for _, ext := range config.Extensions {
			existing := filepath.Join(dir, name+ext)
			if _, err := os.Stat(existing); err == nil {
				return "", errors.New(errors.ErrConfig,
					"Config already exists: "+existing,
					"Use --force to overwrite it, or pick another name.")
			}
		}
	}

	cfg := config.Default()
	cfg.Name = name
	data, err := cfg.YAML()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig, "Cannot encode config", "")
	}

	path := filepath.Join(dir, name+".yaml")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create "+dir,
			"Check the permissions of your home directory.")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot write "+path,
			"Check the permissions of "+dir+".")
	}
	return path, nil
}
