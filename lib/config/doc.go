// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration for the asset store.
//
// Configuration is loaded from a single file specified by either the
// PREFAB_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search. Every field has a documented default, so an unset
// PREFAB_CONFIG means [Default]; an explicitly named file that cannot
// be read or parsed is an error, never a silent fallback.
//
// Configurable: integrity mode (strict or legacy checksum handling),
// the post-load validation toggle, the writer's compression codec,
// and the three per-category instance cache policies. Durations use
// Go time.ParseDuration format ("15m", "90s").
//
// Key exports:
//
//   - [Config] -- integrity, validation, compression, cache policies
//   - [Default] -- the documented defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other prefab packages.
package config
