package idmap

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with idmap-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithTypeID adds a type_id field to the logger.
func (l *Logger) WithTypeID(typeID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("type_id", typeID),
	}
}

// WithConcurrency adds a concurrency field to the logger.
func (l *Logger) WithConcurrency(concurrency int) *Logger {
	return &Logger{
		Logger: l.Logger.With("concurrency", concurrency),
	}
}

// LogBuild logs the result of finalizing an id map.
func (l *Logger) LogBuild(ctx context.Context, nodeCount, highestOriginalID int64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "id map build failed",
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "id map built",
			"node_count", nodeCount,
			"highest_original_id", highestOriginalID,
			"duration", duration,
		)
	}
}

// LogImport logs the result of an import.
func (l *Logger) LogImport(ctx context.Context, nodes int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "import failed",
			"nodes", nodes,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "import completed",
			"nodes", nodes,
			"duration", duration,
		)
	}
}

// LogProgress logs import progress.
func (l *Logger) LogProgress(ctx context.Context, inserted int64, total int) {
	l.DebugContext(ctx, "import progress",
		"inserted", inserted,
		"total", total,
	)
}
