// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger for CLI command
// operations at the given level. When stderr is a terminal, uses
// slog.TextHandler for human-readable output. When stderr is piped or
// redirected (CI, scripts, integration tests), uses slog.JSONHandler
// for machine-parseable output.
//
// Loader warnings surface through this logger, so commands that load
// containers pass it into the store they construct.
func NewCommandLogger(level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// ParseLevel converts a --log-level flag value into a slog.Level.
// Accepts debug, info, warn, and error in any case, plus slog's offset
// syntax (e.g. "warn+2").
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q (want debug, info, warn, or error)", s)
	}
	return level, nil
}
