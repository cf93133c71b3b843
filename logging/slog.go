package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

//ParseLevel returns the slog.Level for a level name, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

//New returns a JSON logger writing to stdout at the given level
func New(level string) *slog.Logger {
	return NewWriter(os.Stdout, level)
}

//NewWriter returns a JSON logger writing to w at the given level
func NewWriter(w io.Writer, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(h).With("service", "library-desk")
}
