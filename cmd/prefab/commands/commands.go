// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete prefab CLI command tree. The
// pack command bakes JSONC manifests into containers; inspect, verify,
// and stats look at the result from three depths: header only, full
// integrity and consistency, and the loaded runtime view.
package commands

import (
	"fmt"

	"github.com/dgtforge/prefab/cmd/prefab/cli"
	"github.com/dgtforge/prefab/lib/version"
)

// Root builds and returns the complete prefab CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "prefab",
		Description: `Prefab: binary asset container toolchain.

Bake JSONC asset manifests into compressed, checksummed containers,
and inspect, verify, and load the result the way the runtime does.`,
		Subcommands: []*cli.Command{
			packCommand(),
			inspectCommand(),
			verifyCommand(),
			statsCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("prefab %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Bake a manifest into a container",
				Command:     "prefab pack dungeon.jsonc",
			},
			{
				Description: "Print a container's header without touching the payload",
				Command:     "prefab inspect dungeon.dgt",
			},
			{
				Description: "Check integrity and registry consistency of several containers",
				Command:     "prefab verify dungeon.dgt overworld.dgt",
			},
			{
				Description: "Load a container and report asset and cache statistics",
				Command:     "prefab stats dungeon.dgt --log-level debug",
			},
		},
	}
}
