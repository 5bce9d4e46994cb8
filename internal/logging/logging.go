// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel names the environment variable read by Configure.
const EnvLevel = "PERCEPTRON_LOG_LEVEL"

var level = new(slog.LevelVar)

// ParseLevel maps DEBUG, INFO, WARN and ERROR (any case) to a level.
// Anything else is Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Configure installs a text handler writing to w as the default logger, with
// the level taken from PERCEPTRON_LOG_LEVEL. A nil w means stderr.
func Configure(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level.Set(ParseLevel(os.Getenv(EnvLevel)))

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// SetLevel changes the level of the logger installed by Configure.
func SetLevel(l slog.Level) {
	level.Set(l)
}
