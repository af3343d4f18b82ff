// Package analytics defines the fire-and-forget event sink the request
// pipeline reports into. Shipping events to an external system is out of
// scope; the default sink emits structured log lines that a log pipeline
// can pick up.
package analytics

import (
	"context"
	"log/slog"
)

// Sink accepts analytics events. Implementations must not block the
// request path and must never return an error to the caller; delivery
// problems are an implementation's own concern.
type Sink interface {
	Track(ctx context.Context, event string, props map[string]any)
}

// LogSink writes events as structured log entries.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{log: logger.With("component", "analytics")}
}

func (s *LogSink) Track(ctx context.Context, event string, props map[string]any) {
	attrs := make([]slog.Attr, 0, len(props)+1)
	attrs = append(attrs, slog.String("event", event))
	for k, v := range props {
		attrs = append(attrs, slog.Any(k, v))
	}
	s.log.LogAttrs(ctx, slog.LevelInfo, "analytics.event", attrs...)
}

// NopSink discards all events. Used in tests.
type NopSink struct{}

func (NopSink) Track(context.Context, string, map[string]any) {}
