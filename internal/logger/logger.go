package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	defaultLogger *slog.Logger
	once          sync.Once
)

// Options configures the global logger sink.
type Options struct {
	Level      string // debug, info, warn, error
	File       string // path to log file (empty = stderr only)
	MaxSizeMB  int    // max size in MB before rotation
	MaxBackups int    // old log files to retain
	MaxAgeDays int    // max age of old log files
	Compress   bool   // compress rotated files
}

// Init initializes the global logger with defaults (stderr, info level).
// DEBUG=true enables debug level logging.
func Init() {
	once.Do(func() {
		level := "info"
		if os.Getenv("DEBUG") == "true" {
			level = "debug"
		}
		_, _ = configure(Options{Level: level})
	})
}

// Setup configures the global logger from the given options, replacing any
// lazy default installed by Init, and returns a cleanup function for the
// rotating file sink, if one was opened.
func Setup(opts Options) (func() error, error) {
	cleanup, err := configure(opts)
	if cleanup == nil {
		cleanup = func() error { return nil }
	}
	return cleanup, err
}

func configure(opts Options) (func() error, error) {
	level := parseLevel(opts.Level)

	handlerOpts := &slog.HandlerOptions{
		Level: level,
		// Add source file information if in debug mode
		AddSource: level == slog.LevelDebug,
	}

	var writer io.Writer = os.Stderr
	cleanup := func() error { return nil }

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
			LocalTime:  true,
		}
		writer = lj
		cleanup = lj.Close
	}

	defaultLogger = slog.New(slog.NewTextHandler(writer, handlerOpts))
	slog.SetDefault(defaultLogger)
	return cleanup, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs at Debug level.
func Debug(msg string, args ...any) {
	if defaultLogger == nil {
		Init()
	}
	defaultLogger.Debug(msg, args...)
}

// Info logs at Info level.
func Info(msg string, args ...any) {
	if defaultLogger == nil {
		Init()
	}
	defaultLogger.Info(msg, args...)
}

// Warn logs at Warn level.
func Warn(msg string, args ...any) {
	if defaultLogger == nil {
		Init()
	}
	defaultLogger.Warn(msg, args...)
}

// Error logs at Error level.
func Error(msg string, args ...any) {
	if defaultLogger == nil {
		Init()
	}
	defaultLogger.Error(msg, args...)
}

// Fatal logs at Error level and then exits.
func Fatal(msg string, args ...any) {
	if defaultLogger == nil {
		Init()
	}
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}

// With returns a new logger with the given attributes.
func With(args ...any) *slog.Logger {
	if defaultLogger == nil {
		Init()
	}
	return defaultLogger.With(args...)
}
