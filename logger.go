package boltgo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with boltgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPath adds the database path to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogOpen logs a database open.
func (l *Logger) LogOpen(ctx context.Context, path string, pageSize int, mmapSize uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "database opened",
			"path", path,
			"page_size", pageSize,
			"mmap_size", mmapSize,
		)
	}
}

// LogGrow logs a mapping growth.
func (l *Logger) LogGrow(ctx context.Context, from, to uint64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "mmap grow failed",
			"from", from,
			"to", to,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "mmap grown",
			"from", from,
			"to", to,
			"duration", duration,
		)
	}
}

// LogClose logs a database close.
func (l *Logger) LogClose(ctx context.Context, path string, drained int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "database closed",
			"path", path,
			"pages_drained", drained,
		)
	}
}
