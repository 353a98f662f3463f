// Package logging builds the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON logger at the given level writing to stderr, teed to
// logFile when one is configured. The logger is installed as the slog
// default. Callers must defer the returned cleanup func; it closes the log
// file if one was opened.
func New(level, logFile string) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stderr
	cleanup := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		out = io.MultiWriter(os.Stderr, f)
		cleanup = func() { _ = f.Close() }
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: Level(level),
	}))
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

// Level maps a config string to a slog.Level. Unrecognized values fall back
// to info rather than failing startup.
func Level(s string) slog.Level {
	switch strings.ToLower(s) {
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
