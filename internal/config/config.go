package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/tsm/internal/errors"
	"github.com/Dicklesworthstone/tsm/internal/layout"
)

const (
	// Dir is the config directory, relative to the home directory.
	Dir = ".config/tsm"
	// EnvPrefix prefixes environment overrides (TSM_INTERVAL, TSM_SYMBOL, TSM_GPU).
	EnvPrefix = "TSM"
	// DefaultName names the built-in layout.
	DefaultName = "default"
	// MinInterval is the shortest refresh interval accepted.
	MinInterval = 10 * time.Millisecond
)

// Extensions tried, in order, when a config is looked up by name.
var Extensions = []string{".json", ".yaml", ".yml", ".toml"}

// Device places one widget on the config grid. TopLeft is [row, col].
type Device struct {
	Type    string `mapstructure:"type" yaml:"type"`
	TopLeft []int  `mapstructure:"topLeft" yaml:"topLeft,flow"`
	Width   int    `mapstructure:"width" yaml:"width"`
	Height  int    `mapstructure:"height" yaml:"height"`
}

// Config carries runtime options for tsm.
type Config struct {
	Name     string        `mapstructure:"name"`
	Symbol   string        `mapstructure:"symbol"`
	Interval time.Duration `mapstructure:"interval"`
	GPU      bool          `mapstructure:"gpu"`
	Devices  []Device      `mapstructure:"devices"`
}

// DefaultDevices is the cpu column on the left with a gpu block beside it.
func DefaultDevices() []Device {
	return []Device{
		{Type: "cpu", TopLeft: []int{0, 0}, Width: 1, Height: 2},
		{Type: "gpu", TopLeft: []int{0, 1}, Width: 2, Height: 1},
	}
}

func Default() *Config {
	return &Config{
		Name:     DefaultName,
		Symbol:   "|",
		Interval: 500 * time.Millisecond,
		GPU:      true,
		Devices:  DefaultDevices(),
	}
}

// Home returns the directory configs are looked up in.
func Home() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, Dir), nil
}

// Find resolves a config reference. A path to an existing file is used
// as is; otherwise name is looked up as <name>.{json,yaml,yml,toml} in the
// config directory. An empty name resolves to "" (the built-in default).
func Find(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name, nil
	}

	dir, err := Home()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine home directory",
			"Pass the config file path explicitly")
	}
	for _, ext := range Extensions {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.New(errors.ErrConfig,
		fmt.Sprintf("Config %q not found", name),
		fmt.Sprintf("Create %s with 'tsm init %s', or pass a file path", filepath.Join(dir, name+".json"), name))
}

// Load resolves name with Find and reads it. Values missing from the file
// fall back to the defaults, and TSM_* environment variables override both.
// An empty name loads the built-in layout.
func Load(name string) (*Config, error) {
	path, err := Find(name)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file "+path,
				"Check the file is valid JSON, YAML or TOML")
		}
		if !v.InConfig("name") {
			v.Set("name", strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the field types in "+displayPath(path))
	}
	if path == "" {
		cfg.Devices = DefaultDevices()
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config "+displayPath(path),
			"Every device needs a type, a [row, col] topLeft and a positive width and height")
	}
	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// decodeHook extends viper's default hooks so that a bare number for a
// duration, as in {"interval": 500}, is read as milliseconds.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		millisecondsHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func millisecondsHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != durationType || from == durationType {
		return data, nil
	}

	var ms float64
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		ms = float64(reflect.ValueOf(data).Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		ms = float64(reflect.ValueOf(data).Uint())
	case reflect.Float32, reflect.Float64:
		ms = reflect.ValueOf(data).Float()
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(data.(string)), 64)
		if err != nil {
			return data, nil
		}
		ms = f
	default:
		return data, nil
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("name", def.Name)
	v.SetDefault("symbol", def.Symbol)
	v.SetDefault("interval", def.Interval)
	v.SetDefault("gpu", def.GPU)
}

func displayPath(path string) string {
	if path == "" {
		return "(built-in default)"
	}
	return path
}

// Validate checks the fields the layout engine relies on. Overlap is
// checked later by the layout engine itself.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.Interval < MinInterval {
		return fmt.Errorf("interval %s is below the %s minimum", c.Interval, MinInterval)
	}
	if len(c.Devices) == 0 {
		return fmt.Errorf("no devices configured")
	}
	for i, d := range c.Devices {
		switch {
		case strings.TrimSpace(d.Type) == "":
			return fmt.Errorf("device %d: missing type", i)
		case len(d.TopLeft) != 2:
			return fmt.Errorf("device %d (%s): topLeft must be [row, col], got %v", i, d.Type, d.TopLeft)
		case d.TopLeft[0] < 0 || d.TopLeft[1] < 0:
			return fmt.Errorf("device %d (%s): topLeft %v is negative", i, d.Type, d.TopLeft)
		case d.Width <= 0 || d.Height <= 0:
			return fmt.Errorf("device %d (%s): size %dx%d must be positive", i, d.Type, d.Width, d.Height)
		}
	}
	return nil
}

// Placements converts the device list for the layout engine, keeping order.
func (c *Config) Placements() []layout.Placement {
	placements := make([]layout.Placement, 0, len(c.Devices))
	for _, d := range c.Devices {
		placements = append(placements, layout.Placement{
			Kind: strings.ToLower(strings.TrimSpace(d.Type)),
			Rect: layout.Rect{
				Top:    d.TopLeft[0],
				Left:   d.TopLeft[1],
				Width:  d.Width,
				Height: d.Height,
			},
		})
	}
	return placements
}

// fileConfig is the on-disk shape written by YAML.
type fileConfig struct {
	Name     string   `yaml:"name"`
	Symbol   string   `yaml:"symbol"`
	Interval string   `yaml:"interval"`
	GPU      bool     `yaml:"gpu"`
	Devices  []Device `yaml:"devices"`
}

// YAML renders the config in the form Load reads back.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(fileConfig{
		Name:     c.Name,
		Symbol:   c.Symbol,
		Interval: c.Interval.String(),
		GPU:      c.GPU,
		Devices:  c.Devices,
	})
}
