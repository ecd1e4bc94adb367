// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dgtforge/prefab/cmd/prefab/cli"
	"github.com/dgtforge/prefab/lib/assetfile"
	"github.com/dgtforge/prefab/lib/registry"
)

// --- verify ---

type verifyParams struct {
	cli.JSONOutput
	Integrity string `flag:"integrity" default:"strict" desc:"checksum enforcement: strict or legacy"`
}

// verifyResult is the outcome for one container. Exactly one of OK,
// Error, or Problems is meaningful: Error carries load failures
// (corruption, integrity, deserialization), Problems carries registry
// cross-reference findings on a container that loaded fine.
type verifyResult struct {
	Path       string          `json:"path"`
	OK         bool            `json:"ok"`
	Version    uint32          `json:"version,omitempty"`
	Assets     int             `json:"assets,omitempty"`
	Registries *registryCounts `json:"registries,omitempty"`
	Error      string          `json:"error,omitempty"`
	Problems   []string        `json:"problems,omitempty"`
}

// registryCounts breaks the asset total down by registry.
type registryCounts struct {
	Sprites      int `json:"sprites"`
	Tiles        int `json:"tiles"`
	Objects      int `json:"objects"`
	Environments int `json:"environments"`
	Interactions int `json:"interactions"`
}

func countRegistries(payload *registry.Payload) *registryCounts {
	return &registryCounts{
		Sprites:      len(payload.SpriteBank.Sprites),
		Tiles:        len(payload.Tiles.Tiles),
		Objects:      len(payload.Objects.Objects),
		Environments: len(payload.Environments.Maps),
		Interactions: len(payload.Interactions.Interactions),
	}
}

func (c *registryCounts) String() string {
	return fmt.Sprintf("sprites %d, tiles %d, objects %d, environments %d, interactions %d",
		c.Sprites, c.Tiles, c.Objects, c.Environments, c.Interactions)
}

func verifyCommand() *cli.Command {
	var params verifyParams

	return &cli.Command{
		Name:    "verify",
		Summary: "Check container integrity and consistency",
		Usage:   "prefab verify <file>... [flags]",
		Description: `Open each container with full checksum verification, decode its
registries, and cross-check them against each other. The runtime
loader logs cross-reference problems and carries on; verify treats
them as failures, so a container that passes here loads warning-free.

Exits 1 if any container fails.`,
		Examples: []cli.Example{
			{
				Description: "Verify a single container",
				Command:     "prefab verify dungeon.dgt",
			},
			{
				Description: "Verify a batch, accepting legacy zero checksums",
				Command:     "prefab verify --integrity legacy baked/*.dgt",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("verify", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("file argument required\n\nUsage: prefab verify <file>... [flags]")
			}

			integrity, err := parseIntegrity(params.Integrity)
			if err != nil {
				return err
			}

			logger := cli.NewCommandLogger(slog.LevelWarn)
			results := make([]verifyResult, 0, len(args))
			failed := 0
			for _, path := range args {
				result := verifyContainer(path, integrity, logger)
				if !result.OK {
					failed++
				}
				results = append(results, result)
			}

			if done, err := params.EmitJSON(results); done {
				if err != nil {
					return err
				}
				if failed > 0 {
					return &cli.ExitError{Code: 1}
				}
				return nil
			}

			for _, result := range results {
				switch {
				case result.OK:
					fmt.Printf("ok   %s (version %d, %d assets: %s)\n",
						result.Path, result.Version, result.Assets, result.Registries)
				case result.Error != "":
					fmt.Printf("FAIL %s: %s\n", result.Path, result.Error)
				default:
					fmt.Printf("FAIL %s: %d consistency problems\n", result.Path, len(result.Problems))
					for _, problem := range result.Problems {
						fmt.Printf("     %s\n", problem)
					}
				}
			}

			if failed > 0 {
				fmt.Fprintf(os.Stderr, "%d of %d containers failed\n", failed, len(results))
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// verifyContainer opens one container with checksums enforced and runs
// the registry cross-checks the loader only warns about.
func verifyContainer(path string, integrity assetfile.IntegrityMode, logger *slog.Logger) verifyResult {
	result := verifyResult{Path: path}

	archive, err := assetfile.Open(path, assetfile.OpenOptions{
		Integrity: integrity,
		Logger:    logger,
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer archive.Close()

	header := archive.Header()
	result.Version = header.Version
	result.Assets = archive.Payload().EntryCount()
	result.Registries = countRegistries(archive.Payload())

	if uint32(result.Assets) != header.AssetCount {
		result.Problems = append(result.Problems,
			fmt.Sprintf("header says %d assets, registries decode to %d", header.AssetCount, result.Assets))
	}
	if err := archive.Payload().Validate(); err != nil {
		result.Problems = append(result.Problems, strings.Split(err.Error(), "\n")...)
	}
	if len(result.Problems) > 0 {
		return result
	}

	result.OK = true
	return result
}

func parseIntegrity(name string) (assetfile.IntegrityMode, error) {
	switch name {
	case "strict":
		return assetfile.IntegrityStrict, nil
	case "legacy":
		return assetfile.IntegrityLegacy, nil
	default:
		return 0, fmt.Errorf("unknown integrity mode %q (want strict or legacy)", name)
	}
}
