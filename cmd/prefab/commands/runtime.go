// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/dgtforge/prefab/cmd/prefab/cli"
	"github.com/dgtforge/prefab/lib/clock"
	"github.com/dgtforge/prefab/lib/config"
	"github.com/dgtforge/prefab/lib/di"
	"github.com/dgtforge/prefab/lib/prefab"
)

// RuntimeFlags carries the flags shared by commands that build the
// full asset runtime: the config file path and the log level.
// Implements [cli.FlagBinder] so the --config default can come from
// the PREFAB_CONFIG environment variable at bind time.
//
// Exported so that embedded struct fields are visible to reflection in
// [cli.FlagsFromParams] — unexported embedded types cause
// field.IsExported() to return false, silently skipping FlagBinder
// detection.
type RuntimeFlags struct {
	ConfigPath string
	LogLevel   string
}

// AddFlags registers --config and --log-level. The config default
// comes from PREFAB_CONFIG; empty means the built-in defaults, so no
// config file is ever required.
func (r *RuntimeFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&r.ConfigPath, "config", os.Getenv("PREFAB_CONFIG"), "YAML config file path")
	flagSet.StringVar(&r.LogLevel, "log-level", "info", "log level: debug, info, warn, or error")
}

// loadConfig resolves the runtime configuration: the --config file
// when one is named, the built-in defaults otherwise.
func (r *RuntimeFlags) loadConfig() (*config.Config, error) {
	if r.ConfigPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFile(r.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", r.ConfigPath, err)
	}
	return cfg, nil
}

// newContainer assembles the dependency container for runtime
// commands: the validated config and the command logger as instances,
// the wall clock as a singleton, and the asset store as a scoped
// registration. Each command scope gets its own store, and closing the
// scope releases the container the store loaded.
func (r *RuntimeFlags) newContainer() (*di.Container, error) {
	cfg, err := r.loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := cli.ParseLevel(r.LogLevel)
	if err != nil {
		return nil, err
	}

	c := di.New()
	di.RegisterInstance(c, cfg)
	di.RegisterInstance(c, cli.NewCommandLogger(level))
	di.RegisterSingleton(c, clock.Real)
	di.RegisterScoped(c, func() *prefab.Store {
		store, err := prefab.New(di.MustResolve[*config.Config](c), prefab.Options{
			Logger: di.MustResolve[*slog.Logger](c),
			Clock:  di.MustResolve[clock.Clock](c),
		})
		if err != nil {
			// The config was validated in loadConfig, so a failure
			// here is a programming error, not bad input.
			panic(fmt.Sprintf("commands: building store: %v", err))
		}
		return store
	})
	return c, nil
}

// formatSize returns a human-readable byte size.
func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
