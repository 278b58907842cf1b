package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MatusOllah/slogcolor"
	"github.com/fatih/color"
)

// ParseLevel converts a config log level name into a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// NewLogger builds the coloured slog logger used by the server and CLI.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := *slogcolor.DefaultOptions
	opts.Level = level
	opts.MsgColor = color.New(color.FgMagenta)
	opts.SrcFileMode = slogcolor.Nop
	return slog.New(slogcolor.NewHandler(w, &opts))
}

// Discard returns a logger that drops every record. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
