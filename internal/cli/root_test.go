package cli

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/tsm/internal/config"
	"github.com/Dicklesworthstone/tsm/internal/errors"
	"github.com/Dicklesworthstone/tsm/internal/layout"
	"github.com/Dicklesworthstone/tsm/internal/logger"
	"github.com/Dicklesworthstone/tsm/internal/sampler"
	wtesting "github.com/Dicklesworthstone/tsm/internal/widget/testing"
)

// withHome points the config directory at a fresh temp dir.
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return filepath.Join(home, config.Dir)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const overlappingJSON = `{
  "devices": [
    {"type": "cpu", "topLeft": [0, 0], "width": 2, "height": 2},
    {"type": "gpu", "topLeft": [1, 1], "width": 1, "height": 1}
  ]
}`

func TestLoadConfig_Flags(t *testing.T) {
	withHome(t)

	tests := []struct {
		name     string
		args     []string
		interval time.Duration
		symbol   string
		gpu      bool
	}{
		{
			name:     "no flags keeps defaults",
			interval: 500 * time.Millisecond,
			symbol:   "|",
			gpu:      true,
		},
		{
			name:     "all overrides",
			args:     []string{"--interval", "2s", "--symbol", "#", "--no-gpu"},
			interval: 2 * time.Second,
			symbol:   "#",
			gpu:      false,
		},
		{
			name:     "symbol only",
			args:     []string{"--symbol", "█"},
			interval: 500 * time.Millisecond,
			symbol:   "█",
			gpu:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := &rootFlags{}
			cmd := &cobra.Command{Use: "tsm"}
			bindRootFlags(cmd, flags)
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg, err := loadConfig(cmd, nil, flags)
			require.NoError(t, err)
			assert.Equal(t, tt.interval, cfg.Interval)
			assert.Equal(t, tt.symbol, cfg.Symbol)
			assert.Equal(t, tt.gpu, cfg.GPU)
		})
	}
}

func TestLoadConfig_RejectsShortInterval(t *testing.T) {
	withHome(t)

	for _, interval := range []string{"0s", "-1s", "500ns", "9ms"} {
		flags := &rootFlags{}
		cmd := &cobra.Command{Use: "tsm"}
		bindRootFlags(cmd, flags)
		require.NoError(t, cmd.ParseFlags([]string{"--interval", interval}))

		_, err := loadConfig(cmd, nil, flags)
		assert.True(t, errors.IsCode(err, errors.ErrConfig), "interval %s", interval)
	}
}

func TestLoadConfig_NamedConfigMissing(t *testing.T) {
	withHome(t)

	_, err := execute(t, "does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "tsm init does-not-exist")
}

func TestNewController(t *testing.T) {
	cfg := config.Default()

	ctrl, err := newController(cfg, wtesting.NewFakeCPU(), wtesting.NewFakeGPU(), 80, 25, logger.Noop())
	require.NoError(t, err)
	require.Len(t, ctrl.Widgets(), 2)
	assert.Equal(t, "cpu", ctrl.Widgets()[0].Kind())
	assert.Equal(t, "gpu", ctrl.Widgets()[1].Kind())
}

func TestNewController_Overlap(t *testing.T) {
	cfg := config.Default()
	cfg.Name = "bad"
	cfg.Devices = []config.Device{
		{Type: "cpu", TopLeft: []int{0, 0}, Width: 2, Height: 2},
		{Type: "gpu", TopLeft: []int{1, 1}, Width: 1, Height: 1},
	}

	_, err := newController(cfg, wtesting.NewFakeCPU(), wtesting.NewFakeGPU(), 80, 25, logger.Noop())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLayout))

	var overlap *layout.OverlapError
	require.True(t, stderrors.As(err, &overlap))
	assert.Equal(t, 1, overlap.B)
	assert.Contains(t, err.Error(), `Devices in "bad" overlap`)
}

func TestGPUSource(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, &sampler.GPU{}, gpuSource(cfg))

	cfg.GPU = false
	assert.IsType(t, sampler.NoGPU{}, gpuSource(cfg))
}

func TestLayoutCommand(t *testing.T) {
	withHome(t)

	out, err := execute(t, "layout", "--width", "80", "--height", "25")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "default on 80x25", lines[0])
	assert.Equal(t, []string{"#", "type", "top", "left", "width", "height"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"0", "cpu", "0", "0", "26", "24"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"1", "gpu", "0", "26", "53", "12"}, strings.Fields(lines[3]))
}

func TestLayoutCommand_NamedConfig(t *testing.T) {
	dir := withHome(t)
	writeFile(t, dir, "wide.yaml", `devices:
  - type: gpu
    topLeft: [0, 0]
    width: 1
    height: 1
  - type: cpu
    topLeft: [0, 1]
    width: 3
    height: 1
`)

	out, err := execute(t, "layout", "wide", "--width", "100", "--height", "11")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "wide on 100x11", lines[0])
	assert.Equal(t, []string{"0", "gpu", "0", "0", "25", "10"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"1", "cpu", "0", "25", "75", "10"}, strings.Fields(lines[3]))
}

func TestLayoutCommand_Overlap(t *testing.T) {
	withHome(t)
	path := writeFile(t, t.TempDir(), "bad.json", overlappingJSON)

	_, err := execute(t, "layout", path, "--width", "80", "--height", "24")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLayout))
	assert.Contains(t, err.Error(), "device 0 (cpu) overlaps device 1 (gpu)")
}
