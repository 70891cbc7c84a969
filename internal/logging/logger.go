// Package logging wraps log/slog with the field names used across semsearch.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with store and pipeline specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to stderr. format is "text" or "json".
func New(level, format string) (*Logger, error) {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a Logger writing to w.
func NewWithWriter(w io.Writer, level, format string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
	return &Logger{Logger: slog.New(handler)}, nil
}

// Noop returns a Logger that discards all output.
func Noop() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	})
	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel maps a config level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

// LogInsert logs a document insert.
func (l *Logger) LogInsert(ctx context.Context, id, filename string, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"filename", filename,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "insert completed",
		"id", id,
		"filename", filename,
		"dimension", dimension,
	)
}

// LogSearch logs a nearest-neighbour query.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "search completed",
		"k", k,
		"results", resultsFound,
	)
}

// LogBatch logs the outcome of a batch ingestion.
func (l *Logger) LogBatch(ctx context.Context, total, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch ingest completed with failures",
			"total", total,
			"failed", failed,
			"success", total-failed,
		)
		return
	}
	l.InfoContext(ctx, "batch ingest completed",
		"count", total,
	)
}

// LogCompletion logs a call to the text-completion service.
func (l *Logger) LogCompletion(ctx context.Context, model string, promptLen int, err error) {
	if err != nil {
		l.WarnContext(ctx, "completion failed",
			"model", model,
			"prompt_len", promptLen,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "completion received",
		"model", model,
		"prompt_len", promptLen,
	)
}
