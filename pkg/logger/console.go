package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ConsoleSink writes envelopes as JSON lines through a slog handler.
type ConsoleSink struct {
	slog *slog.Logger
}

// NewConsoleSink creates a console sink writing to w (os.Stdout when nil).
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &ConsoleSink{slog: slog.New(handler)}
}

// Name implements Sink.
func (s *ConsoleSink) Name() string { return "console" }

// Emit writes the envelope as one JSON line.
func (s *ConsoleSink) Emit(ctx context.Context, e *Entry) error {
	attrs := []slog.Attr{
		slog.String("_id", e.ID),
		slog.String("_type", e.Type),
		slog.String("_service", e.Service),
		slog.Any("context", e.Context),
		slog.Any("event", e.Event),
	}
	if e.ExcludeFromSlackNotification != nil {
		attrs = append(attrs,
			slog.Bool("_excludeFromSlackNotification", *e.ExcludeFromSlackNotification))
	}
	s.slog.LogAttrs(ctx, slogLevel(e.Level), e.Message, attrs...)
	return nil
}

// Flush implements Sink; console writes are unbuffered.
func (s *ConsoleSink) Flush(ctx context.Context) error { return nil }

// Close implements Sink.
func (s *ConsoleSink) Close() error { return nil }

// slogLevel maps envelope levels onto slog levels.
func slogLevel(level string) slog.Level {
	switch level {
	case LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
