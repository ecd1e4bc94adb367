// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"
	"testing"

	"github.com/dgtforge/prefab/cmd/prefab/cli"
	"github.com/dgtforge/prefab/cmd/prefab/commands"
)

// TestCommandTreeWellFormed walks the full production command tree and
// checks the contracts help output relies on: every command is named
// and summarized, every node is either runnable or a group, usage
// strings agree with the command's position in the tree, and sibling
// names stay unique so dispatch is unambiguous.
func TestCommandTreeWellFormed(t *testing.T) {
	root := commands.Root()
	walkCommands(root, nil, func(command *cli.Command, path []string) {
		name := strings.Join(path, " ")
		if command.Name == "" {
			t.Errorf("%s: command with empty name", name)
		}
		if command != root && command.Summary == "" {
			t.Errorf("%s: missing summary", name)
		}
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: neither runnable nor a group", name)
		}
		if command.Usage != "" && !strings.HasPrefix(command.Usage, name) {
			t.Errorf("%s: usage %q does not start with the command path", name, command.Usage)
		}

		seen := make(map[string]bool)
		for _, sub := range command.Subcommands {
			if seen[sub.Name] {
				t.Errorf("%s: duplicate subcommand %q", name, sub.Name)
			}
			seen[sub.Name] = true
		}

		for _, example := range command.Examples {
			if !strings.HasPrefix(example.Command, "prefab") {
				t.Errorf("%s: example %q does not invoke prefab", name, example.Command)
			}
		}
	})
}

// TestCommandTreeFlagsBind forces every command's flag constructor to
// run. FlagsFromParams panics on a malformed params struct (bad tag,
// unsupported field type, undecodable default), so a regression in any
// params struct fails here instead of at first use.
func TestCommandTreeFlagsBind(t *testing.T) {
	walkCommands(commands.Root(), nil, func(command *cli.Command, path []string) {
		if command.Flags == nil {
			return
		}
		if command.Flags() == nil {
			t.Errorf("%s: Flags() returned nil", strings.Join(path, " "))
		}
	})
}

// walkCommands recursively visits every command in the tree, calling
// visit for each node with the accumulated command path.
func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = command.Name
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}
