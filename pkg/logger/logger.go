// Package logger wires slog for the application: a single place to pick the
// handler, level and shared attribute names so every component logs the same
// shape.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Options configures the logger.
type Options struct {
	// Output defaults to stdout.
	Output io.Writer

	// Level is one of debug, info, warn, error. Unknown values fall back
	// to info.
	Level string

	// Format is "json" or "text". Production runs json.
	Format string

	// AddSource annotates records with file:line.
	AddSource bool
}

// New creates a configured *slog.Logger.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	}

	return slog.New(handler)
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Shared attribute constructors. Using these instead of ad-hoc keys keeps
// log queries working across components.

func UserID(id string) slog.Attr           { return slog.String("user_id", id) }
func SpecializationID(id string) slog.Attr { return slog.String("specialization_id", id) }
func ModuleID(id string) slog.Attr         { return slog.String("module_id", id) }
func ProcedureCode(code string) slog.Attr  { return slog.String("procedure_code", code) }
func Component(name string) slog.Attr      { return slog.String("component", name) }
func Operation(name string) slog.Attr      { return slog.String("operation", name) }
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Any("error", nil)
	}
	return slog.String("error", err.Error())
}
func Latency(d time.Duration) slog.Attr { return slog.String("latency", d.String()) }
