// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the asset store.
type Config struct {
	// Integrity selects how payload checksums are enforced when a
	// container is opened: "strict" rejects any mismatch, "legacy"
	// additionally accepts containers whose stored checksum is all
	// zeros (produced by old baking toolchains that never filled the
	// field in). A non-zero mismatch is rejected in both modes.
	Integrity string `yaml:"integrity"`

	// Validation runs registry cross-reference checks after a
	// container is decoded. Problems are logged, never fatal: a
	// dangling palette reference should not keep the rest of the
	// container from loading.
	Validation bool `yaml:"validation"`

	// Compression names the codec used when writing containers:
	// "zstd", "gzip", or "lz4". Readers detect the codec from the
	// frame itself, so this setting affects writes only.
	Compression string `yaml:"compression"`

	// Caches holds the per-category instance cache policies.
	Caches CachesConfig `yaml:"caches"`
}

// CachesConfig bounds the three instance caches.
type CachesConfig struct {
	Characters   CachePolicy `yaml:"characters"`
	Objects      CachePolicy `yaml:"objects"`
	Environments CachePolicy `yaml:"environments"`
}

// CachePolicy is the eviction policy for one instance cache.
type CachePolicy struct {
	// MaxEntries caps the number of cached instances. Must be positive.
	MaxEntries int `yaml:"max_entries"`

	// TTL is the entry time-to-live in Go time.ParseDuration format
	// ("15m", "90s"). Empty means entries never expire.
	TTL string `yaml:"ttl"`
}

// TTLDuration returns the parsed TTL. Empty, malformed, and negative
// TTLs all come back as zero (no expiry); Validate is where malformed
// TTLs are reported.
func (p CachePolicy) TTLDuration() time.Duration {
	if p.TTL == "" {
		return 0
	}
	d, err := time.ParseDuration(p.TTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Default returns the default configuration: strict integrity,
// validation on, zstd compression, and cache policies sized for a
// typical scene (many small characters, fewer objects, a handful of
// large long-lived environments).
func Default() *Config {
	return &Config{
		Integrity:   "strict",
		Validation:  true,
		Compression: "zstd",
		Caches: CachesConfig{
			Characters:   CachePolicy{MaxEntries: 256, TTL: "15m"},
			Objects:      CachePolicy{MaxEntries: 128, TTL: "5m"},
			Environments: CachePolicy{MaxEntries: 16, TTL: "30m"},
		},
	}
}

// Load loads configuration from the path in the PREFAB_CONFIG
// environment variable. When the variable is unset the defaults are
// returned: every field has a working default, so no config file is
// required. An explicitly named file that cannot be read or parsed
// is an error, never a silent fallback.
func Load() (*Config, error) {
	configPath := os.Getenv("PREFAB_CONFIG")
	if configPath == "" {
		return Default(), nil
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// File values are merged over the defaults, so a partial file that
// sets only the fields it cares about is fine. Environment variables
// do not override config values. Callers should run [Config.Validate]
// on the result before using it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	integrityValues := []string{"strict", "legacy"}
	if !contains(integrityValues, c.Integrity) {
		errs = append(errs, fmt.Errorf("integrity must be one of: %v", integrityValues))
	}

	compressionValues := []string{"zstd", "gzip", "lz4"}
	if !contains(compressionValues, c.Compression) {
		errs = append(errs, fmt.Errorf("compression must be one of: %v", compressionValues))
	}

	errs = append(errs, c.Caches.Characters.validate("caches.characters")...)
	errs = append(errs, c.Caches.Objects.validate("caches.objects")...)
	errs = append(errs, c.Caches.Environments.validate("caches.environments")...)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (p CachePolicy) validate(name string) []error {
	var errs []error

	if p.MaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("%s.max_entries must be positive, got %d", name, p.MaxEntries))
	}
	if p.TTL != "" {
		d, err := time.ParseDuration(p.TTL)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.ttl: invalid duration %q: %w", name, p.TTL, err))
		} else if d < 0 {
			errs = append(errs, fmt.Errorf("%s.ttl must not be negative, got %q", name, p.TTL))
		}
	}

	return errs
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
