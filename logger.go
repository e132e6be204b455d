package mdarena

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with mdarena-specific helpers.
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

// WithDims returns a logger that adds a dims field to every record.
// Blocks log through it, so LogFree and LogRestore omit the field.
func (l *Logger) WithDims(dims []int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dims", dims),
	}
}

// LogAlloc logs a block allocation.
func (l *Logger) LogAlloc(dims []int, elemSize, elemAlign, bytes int, err error) {
	if err != nil {
		l.Error("alloc failed",
			"dims", dims,
			"elem_size", elemSize,
			"elem_align", elemAlign,
			"error", err,
		)
	} else {
		l.Debug("alloc completed",
			"dims", dims,
			"elem_size", elemSize,
			"elem_align", elemAlign,
			"bytes", bytes,
		)
	}
}

// LogFree logs a block release.
func (l *Logger) LogFree(bytes int, err error) {
	if err != nil {
		l.Error("free failed",
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.Debug("free completed",
			"bytes", bytes,
		)
	}
}

// LogRestore logs a block restored from raw bytes.
func (l *Logger) LogRestore(bytes int, err error) {
	if err != nil {
		l.Error("restore failed",
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.Info("restore completed",
			"bytes", bytes,
		)
	}
}
