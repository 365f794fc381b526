package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/bingo-hall/internal/config"
)

func TestNew_LevelAndFormat(t *testing.T) {
	t.Parallel()

	l, closer, err := New(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, log.WarnLevel, l.GetLevel())
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()

	_, _, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)

	_, _, err = New(config.LogConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "server.log")
	l, closer, err := New(config.LogConfig{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	l.Info("room started", "room", "R1")
	LogPanic(l, "boom")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"room":"R1"`)
	assert.Contains(t, string(data), "panic recovered")
}
