package finvec

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with store-specific context.
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

// WithNamespace adds a namespace field to the logger.
func (l *Logger) WithNamespace(ns string) *Logger {
	return &Logger{
		Logger: l.Logger.With("namespace", ns),
	}
}

// WithPath adds an artifact path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogUpsert logs an upsert operation.
func (l *Logger) LogUpsert(ctx context.Context, namespace string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "upsert failed",
			"namespace", namespace,
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "upsert completed",
			"namespace", namespace,
			"count", count,
		)
	}
}

// LogQuery logs a query operation.
func (l *Logger) LogQuery(ctx context.Context, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, namespace string, requested, removed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"namespace", namespace,
			"requested", requested,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"namespace", namespace,
			"requested", requested,
			"removed", removed,
		)
	}
}

// LogRebuild logs an index rebuild.
func (l *Logger) LogRebuild(ctx context.Context, before, after int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rebuild failed",
			"vectors_before", before,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "rebuild completed",
			"vectors_before", before,
			"vectors_after", after,
		)
	}
}

// LogPersist logs an artifact save.
func (l *Logger) LogPersist(ctx context.Context, path string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "persist failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "persist completed",
			"path", path,
			"count", count,
		)
	}
}

// LogLoad logs an artifact load.
func (l *Logger) LogLoad(ctx context.Context, path string, count, tombstones int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"path", path,
			"count", count,
			"tombstones", tombstones,
		)
	}
}
