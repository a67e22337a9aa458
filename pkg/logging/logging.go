// Package logging configures structured logging for kith binaries. Output
// goes to stderr so TSV results on stdout and shell pipelines stay clean.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the log level and encoding.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// JSON switches from human-readable text to JSON lines.
	JSON bool
}

// New builds a logger for the given config. An unknown level is an error so
// typos fail fast instead of silently logging at the wrong level.
func New(cfg Config) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return newWithWriter(os.Stderr, level, cfg.JSON), nil
}

// Default returns a text logger at info level.
func Default() *slog.Logger {
	return newWithWriter(os.Stderr, slog.LevelInfo, false)
}

func newWithWriter(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", s)
	}
}
