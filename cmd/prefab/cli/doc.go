// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the prefab CLI.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function. Commands are assembled into a tree in
// cmd/prefab/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples.
//
// Most commands declare their flags as a tagged params struct and bind
// it with [FlagsFromParams]; types with dynamic defaults implement
// [FlagBinder] instead. Embedding [JSONOutput] in a params struct adds
// the conventional --json flag and the EmitJSON helper.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3). This is
// implemented in suggest.go.
//
// Commands for which a non-zero exit is an expected outcome (verify on
// a bad container) return [ExitError] after printing their own output;
// main exits with the carried code without an extra error line.
package cli
