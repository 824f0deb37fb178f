package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "input %q", tt.in)
	}
}

func TestConfigure_FileSink(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "lineserve.log")

	cleanup, err := configure(Options{Level: "info", File: logFile})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	Info("sink check", "key", "value")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sink check")
	assert.Contains(t, string(data), "key=value")
}

func TestSetup_ReplacesLazyDefault(t *testing.T) {
	// A stray log call before startup configuration installs the lazy
	// stderr default; Setup must still take effect afterwards.
	Info("before configuration")

	logFile := filepath.Join(t.TempDir(), "lineserve.log")
	cleanup, err := Setup(Options{Level: "info", File: logFile})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	Info("after configuration")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "before configuration")
	assert.Contains(t, string(data), "after configuration")
}

func TestConfigure_LevelFiltersDebug(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "lineserve.log")

	cleanup, err := configure(Options{Level: "warn", File: logFile})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	Debug("should be dropped")
	Info("should be dropped too")
	Warn("should appear")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "should appear")
}
