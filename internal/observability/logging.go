// Package observability carries build-scoped logging context.
package observability

import (
	"context"
	"log/slog"
)

// LogContext holds the fields attached to every build-scoped log line.
type LogContext struct {
	BuildID string
	Stage   string
	Watch   bool
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := GetContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := GetContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// WithWatch marks the context as belonging to a watch-mode rebuild.
func WithWatch(ctx context.Context) context.Context {
	lc := GetContext(ctx)
	lc.Watch = true
	return context.WithValue(ctx, logContextKey, lc)
}

// GetContext returns the structured log context from ctx.
func GetContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func contextAttrs(ctx context.Context, extra []slog.Attr) []slog.Attr {
	lc := GetContext(ctx)
	attrs := make([]slog.Attr, 0, len(extra)+3)
	if lc.BuildID != "" {
		attrs = append(attrs, slog.String("build.id", lc.BuildID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, slog.String("stage", lc.Stage))
	}
	if lc.Watch {
		attrs = append(attrs, slog.Bool("watch", true))
	}
	return append(attrs, extra...)
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelInfo, msg, contextAttrs(ctx, attrs)...)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelWarn, msg, contextAttrs(ctx, attrs)...)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelError, msg, contextAttrs(ctx, attrs)...)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelDebug, msg, contextAttrs(ctx, attrs)...)
}
