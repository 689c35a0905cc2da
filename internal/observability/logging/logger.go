// Package logging builds the structured loggers used by the API and worker
// binaries and the slog-backed extraction progress sink.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger returns a JSON logger tagged with the service name ("api"
// or "worker"). At debug level, source locations are included so extraction
// and streaming issues can be traced to the call site.
func NewJSONLogger(service, level string) *slog.Logger {
	lvl := ParseLevel(level)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	return slog.New(handler).With("service", service)
}

// ParseLevel maps a config string to a slog level, defaulting to info on
// anything unrecognized.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
