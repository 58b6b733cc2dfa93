package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, flags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prev)
		log.SetFlags(flags)
	})
	return &buf
}

func TestEnvLogger(t *testing.T) {
	buf := captureLog(t)
	l := NewEnvLogger("[layout]")

	l.Info("tiles=%d", 2)
	l.Warn("skipping %q", "net")
	l.Error("overlap")

	assert.Equal(t, "[layout] tiles=2\n[layout] WARN: skipping \"net\"\n[layout] ERROR: overlap\n", buf.String())
}

func TestEnvLogger_DebugNeedsEnv(t *testing.T) {
	buf := captureLog(t)
	l := NewEnvLogger("[tsm]")

	t.Setenv(DebugEnv, "")
	l.Debug("hidden")
	assert.Empty(t, buf.String())

	t.Setenv(DebugEnv, "1")
	l.Debug("shown %d", 1)
	assert.Equal(t, "[tsm] DEBUG: shown 1\n", buf.String())
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()
	l.Warn("unknown device kind %q", "net")
	l.Debug("cycle")

	assert.True(t, l.HasLevel("warn"))
	assert.True(t, l.HasLevel("debug"))
	assert.False(t, l.HasLevel("error"))
	assert.Equal(t, `unknown device kind "net"`, l.Messages[0].Message)

	l.Clear()
	assert.Empty(t, l.Messages)
}

func TestNoop(t *testing.T) {
	buf := captureLog(t)
	l := Noop()
	l.Info("nothing")
	l.Error("nothing")
	assert.Empty(t, buf.String())
}
