// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/dgtforge/prefab/cmd/prefab/cli"
	"github.com/dgtforge/prefab/lib/assetfile"
	"github.com/dgtforge/prefab/lib/compress"
	"github.com/dgtforge/prefab/lib/packdef"
)

// --- pack ---

type packParams struct {
	cli.JSONOutput
	Output    string `flag:"output,o" desc:"output container path (default: manifest name with .dgt)"`
	Codec     string `flag:"codec" default:"zstd" desc:"payload compression: zstd, gzip, or lz4"`
	BuildTime string `flag:"build-time" desc:"header build time, RFC 3339 (default: now)"`
	Version   int    `flag:"version" desc:"container format version (default: current)"`
}

// packReport describes the container pack wrote.
type packReport struct {
	Path        string    `json:"path"`
	Version     uint32    `json:"version"`
	BuildTime   time.Time `json:"build_time"`
	Assets      uint32    `json:"assets"`
	Size        int64     `json:"size"`
	PayloadSize int64     `json:"payload_size"`
	Codec       string    `json:"codec"`
}

func packCommand() *cli.Command {
	var params packParams

	return &cli.Command{
		Name:    "pack",
		Summary: "Bake a JSONC manifest into a container",
		Usage:   "prefab pack <manifest> [flags]",
		Description: `Parse an asset manifest, build its registries, and write them as a
compressed, checksummed container.

Manifest problems are reported all at once with their positions, and
nothing is written. A built payload that fails the registry
cross-checks (a dangling palette or interaction reference) is likewise
refused: the runtime loader would only warn, but the bake is the place
to stop it.

Pass --build-time for byte-reproducible containers.`,
		Examples: []cli.Example{
			{
				Description: "Bake dungeon.jsonc into dungeon.dgt",
				Command:     "prefab pack dungeon.jsonc",
			},
			{
				Description: "Pick the output path and codec",
				Command:     "prefab pack dungeon.jsonc -o baked/dungeon.dgt --codec lz4",
			},
			{
				Description: "Reproducible bake for a release",
				Command:     "prefab pack dungeon.jsonc --build-time 2026-03-01T00:00:00Z",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("pack", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("manifest argument required\n\nUsage: prefab pack <manifest> [flags]")
			}
			manifestPath := args[0]

			manifest, err := packdef.ReadFile(manifestPath)
			if err != nil {
				return err
			}

			if issues := packdef.Validate(manifest); len(issues) > 0 {
				for _, issue := range issues {
					fmt.Fprintf(os.Stderr, "%s: %s\n", manifestPath, issue)
				}
				fmt.Fprintf(os.Stderr, "%d manifest problems\n", len(issues))
				return &cli.ExitError{Code: 1}
			}

			codec, err := compress.ParseCodec(params.Codec)
			if err != nil {
				return err
			}

			payload, err := packdef.Build(manifest, codec)
			if err != nil {
				return fmt.Errorf("building %s: %w", manifestPath, err)
			}
			if err := payload.Validate(); err != nil {
				return fmt.Errorf("refusing to write an inconsistent container:\n%w", err)
			}

			opts := assetfile.WriteOptions{Codec: codec}
			if params.BuildTime != "" {
				buildTime, err := time.Parse(time.RFC3339, params.BuildTime)
				if err != nil {
					return fmt.Errorf("parsing --build-time: %w", err)
				}
				opts.BuildTime = buildTime
			}
			if params.Version < 0 {
				return fmt.Errorf("--version %d: format versions start at 1", params.Version)
			}
			opts.Version = uint32(params.Version)

			output := params.Output
			if output == "" {
				output = packdef.NameFromPath(manifestPath) + ".dgt"
			}

			header, err := assetfile.WriteFile(output, payload, opts)
			if err != nil {
				return err
			}
			info, err := os.Stat(output)
			if err != nil {
				return err
			}

			report := packReport{
				Path:        output,
				Version:     header.Version,
				BuildTime:   header.BuildTime,
				Assets:      header.AssetCount,
				Size:        info.Size(),
				PayloadSize: info.Size() - int64(header.DataOffset),
				Codec:       codec.String(),
			}

			if done, err := params.EmitJSON(report); done {
				return err
			}

			fmt.Printf("wrote %s: %d assets, %s (%s payload, %s)\n",
				report.Path, report.Assets, formatSize(report.Size),
				formatSize(report.PayloadSize), report.Codec)
			return nil
		},
	}
}
