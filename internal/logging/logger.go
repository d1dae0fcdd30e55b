// Package logging builds the structured logger used by the simulation
// driver and the command line, and records rupture events alongside stored
// runs.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/danielpatrickdp/rupture-state/internal/state"
)

// #region logger
// New returns a slog logger writing to w at level in the given format.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat maps "text" and "json" to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

// #endregion logger

// #region step-attrs
// Step returns the attributes describing one step record.
func Step(rec state.StepRecord) []slog.Attr {
	attrs := []slog.Attr{
		slog.Int("t", rec.T),
		slog.String("agent", rec.Agent),
		slog.Float64("r", rec.R),
		slog.Float64("delta", rec.Delta),
		slog.Float64("theta", rec.Theta),
		slog.Bool("ruptured", rec.Ruptured),
		slog.Float64("v", rec.V),
		slog.Float64("e", rec.E),
	}
	if rec.Ruptured {
		attrs = append(attrs, slog.String("collapse", rec.CollapseLabel))
	}
	if rec.Stochastic {
		attrs = append(attrs, slog.Float64("p", rec.Probability))
	}
	if rec.Reason != "" {
		attrs = append(attrs, slog.String("reason", rec.Reason))
	}
	return attrs
}

// #endregion step-attrs
