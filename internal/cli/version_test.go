package cli

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionOutput(t *testing.T) {
	originalVersion, originalCommit, originalDate := version, commit, date
	defer SetVersionInfo(originalVersion, originalCommit, originalDate)

	SetVersionInfo("1.2.3", "abc1234", "2025-01-08T12:00:00Z")

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tsm v1.2.3")
	assert.Contains(t, out, "commit: abc1234")
	assert.Contains(t, out, "built: 2025-01-08T12:00:00Z")
	assert.Contains(t, out, "go: "+runtime.Version())
	assert.Contains(t, out, "os/arch: "+runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionOutputShort(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()

	version = "1.2.3"

	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", strings.TrimSpace(out))
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"dev", "dev"},
		{"1.0.0", "v1.0.0"},
		{"v2.1.0", "v2.1.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatVersion(tt.in), "input %q", tt.in)
	}
}
