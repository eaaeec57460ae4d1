// Package telemetry provides observability for the agentkit HTTP
// runtime: structured logging and Prometheus-format metrics.
package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger creates a structured JSON logger.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// RunLogger returns a logger scoped to one entrypoint run.
func RunLogger(logger *slog.Logger, key, kind, runID string) *slog.Logger {
	return logger.With(
		slog.String("entrypoint", key),
		slog.String("kind", kind),
		slog.String("run_id", runID),
	)
}
