package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

// Handler is a slog.Handler that stamps every record with the service name
// and delegates formatting to a JSON handler.
type Handler struct {
	inner slog.Handler
}

// NewHandler creates a new Handler. Passing nil uses a JSON handler on
// stdout with the level taken from config.
func NewHandler(inner slog.Handler) *Handler {
	if inner == nil {
		level := slog.LevelInfo
		if viper.GetString("log.level") == "debug" {
			level = slog.LevelDebug
		}
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return &Handler{inner: inner}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if service := viper.GetString("service.name"); service != "" {
		record.AddAttrs(slog.String("service", service))
	}

	return h.inner.Handle(ctx, record)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name)}
}
