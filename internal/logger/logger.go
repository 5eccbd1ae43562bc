// Package logger owns the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
)

// Setup builds the default logger from LOG_LEVEL and LOG_FORMAT and returns it.
// Output always goes to stderr so stdout stays clean for CLI output.
func Setup() *slog.Logger {
	return SetupWriter(os.Stderr)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer) *slog.Logger {
	return setup(w, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// SetupLevel is Setup with an explicit level, ignoring LOG_LEVEL.
func SetupLevel(level string) *slog.Logger {
	return setup(os.Stderr, ParseLevel(level))
}

func setup(w io.Writer, lvl slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	return l
}

// ParseLevel maps a textual level to slog; unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// L returns the default logger, initialising it on first use.
func L() *slog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		return Setup()
	}
	return l
}
