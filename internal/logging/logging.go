// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

// Package logging sets up the application logger. The TUI owns the
// terminal, so logs go to a file under the config directory instead of
// stderr.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Setup opens the log file in dir and returns a logger configured for the
// given level ("debug", "info", "warn", "error" or "off") together with a
// close function. On failure a disabled logger is returned so callers never
// get a nil logger.
func Setup(dir, level string) (zerolog.Logger, func(), error) {
	lvl := parseLevel(level)
	if lvl == zerolog.Disabled {
		return zerolog.Nop(), func() {}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), func() {}, err
	}
	path := filepath.Join(dir, "gpterm.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}

	logger := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return logger, func() { f.Close() }, nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
