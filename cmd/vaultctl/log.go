package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	envLogLevel     = "VAULTKIT_LOG_LEVEL"
	defaultLogLevel = zerolog.WarnLevel
)

// newLogger returns a console logger at level. An empty level falls back to
// VAULTKIT_LOG_LEVEL, then to warn.
func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Str("module", "vaultctl").
		Logger(), nil
}

func parseLogLevel(level string) (zerolog.Level, error) {
	if level == "" {
		level = os.Getenv(envLogLevel)
	}
	if level == "" {
		return defaultLogLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
