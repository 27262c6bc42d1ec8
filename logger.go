package crossfilter

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with crossfilter-specific context.
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
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NewLoggerFor creates a Logger writing to w in format ("json" or "text")
// at the named level ("debug", "info", "warn", "error"). Unknown levels log
// at info.
func NewLoggerFor(w io.Writer, format, level string) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return NewLogger(slog.NewJSONHandler(w, opts))
	}
	return NewLogger(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithGeneration adds the dataset generation to the logger.
func (l *Logger) WithGeneration(gen uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("generation", gen),
	}
}

// WithMode adds the cross-filter mode to the logger.
func (l *Logger) WithMode(mode Mode) *Logger {
	return &Logger{
		Logger: l.Logger.With("mode", string(mode)),
	}
}

// LogResolve logs an identity resolution.
func (l *Logger) LogResolve(ctx context.Context, strategy string, data, resolved int) {
	if strategy == "" {
		l.DebugContext(ctx, "no identities resolved",
			"datums", data,
		)
		return
	}
	l.DebugContext(ctx, "identities resolved",
		"strategy", strategy,
		"datums", data,
		"identities", resolved,
	)
}

// LogEvaluate logs a headless cross-filter evaluation.
func (l *Logger) LogEvaluate(ctx context.Context, expr string, kept int, err error) {
	if err != nil {
		l.WarnContext(ctx, "cross-filter evaluation failed",
			"expr", expr,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "cross-filter evaluated",
			"expr", expr,
			"identities", kept,
		)
	}
}

// LogAbort logs an admission rejection.
func (l *Logger) LogAbort(ctx context.Context, candidates, existing, limit int) {
	l.InfoContext(ctx, "selection limit exceeded",
		"candidates", candidates,
		"existing", existing,
		"limit", limit,
	)
}

// LogCommit logs a finished host commit.
func (l *Logger) LogCommit(ctx context.Context, size int, cleared bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "selection commit failed",
			"identities", size,
			"cleared", cleared,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "selection committed",
			"identities", size,
			"cleared", cleared,
		)
	}
}
