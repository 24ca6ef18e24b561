// Package logging provides structured logging stamped with service metadata
// and the HTTP request ID.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// requestHandler wraps a slog.Handler to add service metadata and request IDs.
type requestHandler struct {
	handler slog.Handler
	service string
	version string
}

// Handle adds service, version and request_id to the log record.
func (h *requestHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	if id := chimw.GetReqID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}

	return h.handler.Handle(ctx, r)
}

// Enabled returns true if the level is enabled.
func (h *requestHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes.
func (h *requestHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &requestHandler{
		handler: h.handler.WithAttrs(attrs),
		service: h.service,
		version: h.version,
	}
}

// WithGroup returns a new handler with the given group.
func (h *requestHandler) WithGroup(name string) slog.Handler {
	return &requestHandler{
		handler: h.handler.WithGroup(name),
		service: h.service,
		version: h.version,
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "json" if empty)
// If w is nil, writes to os.Stderr.
func Setup(service, version, format, level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var baseHandler slog.Handler
	if format == "text" {
		baseHandler = slog.NewTextHandler(w, opts)
	} else {
		baseHandler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(&requestHandler{
		handler: baseHandler,
		service: service,
		version: version,
	})
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
