// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/dgtforge/prefab/cmd/prefab/cli"
	"github.com/dgtforge/prefab/lib/cache"
	"github.com/dgtforge/prefab/lib/di"
	"github.com/dgtforge/prefab/lib/prefab"
	"github.com/dgtforge/prefab/lib/registry"
)

// --- stats ---

type statsParams struct {
	RuntimeFlags
	cli.JSONOutput
}

// cacheReport is one instance cache's policy and counters.
type cacheReport struct {
	MaxEntries int     `json:"max_entries"`
	TTL        string  `json:"ttl,omitempty"`
	Size       int     `json:"size"`
	Hits       uint64  `json:"hits"`
	Misses     uint64  `json:"misses"`
	Evictions  uint64  `json:"evictions"`
	HitRate    float64 `json:"hit_rate"`
}

// statsReport is the runtime view of a container: what the store sees
// after loading it and instantiating every asset once.
type statsReport struct {
	Path         string    `json:"path"`
	Version      uint32    `json:"version"`
	BuildTime    time.Time `json:"build_time"`
	Assets       uint32    `json:"assets"`
	FileSize     int64     `json:"file_size"`
	PayloadSize  int64     `json:"payload_size"`
	DecodedSize  int64     `json:"decoded_size"`
	Ratio        float64   `json:"compression_ratio"`
	Characters   []string  `json:"characters"`
	Objects      []string  `json:"objects"`
	Environments []string  `json:"environments"`
	Caches       struct {
		Characters   cacheReport `json:"characters"`
		Objects      cacheReport `json:"objects"`
		Environments cacheReport `json:"environments"`
	} `json:"caches"`
}

func statsCommand() *cli.Command {
	var params statsParams

	return &cli.Command{
		Name:    "stats",
		Summary: "Load a container and report asset and cache statistics",
		Usage:   "prefab stats <file> [flags]",
		Description: `Load a container through the runtime store, instantiate every
character, object, and environment once, and report what the store
sees: the asset listings, the container sizes, and the state of the
three instance caches under the configured policies.

This is the full runtime path. Integrity mode, validation, and cache
policies come from the config file (--config or PREFAB_CONFIG); loader
warnings surface on stderr at the chosen --log-level.`,
		Examples: []cli.Example{
			{
				Description: "Runtime view of a container",
				Command:     "prefab stats dungeon.dgt",
			},
			{
				Description: "Same, with loader diagnostics and tight cache policies",
				Command:     "prefab stats dungeon.dgt --config profiles/handheld.yaml --log-level debug",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("stats", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("file argument required\n\nUsage: prefab stats <file> [flags]")
			}

			container, err := params.newContainer()
			if err != nil {
				return err
			}
			defer container.Close()

			return container.WithScope(func(scope *di.Scope) error {
				store := di.MustResolve[*prefab.Store](scope)

				// The load failure reason is already on the log.
				if !store.LoadAssets(args[0]) {
					return &cli.ExitError{Code: 1}
				}

				// Instantiate everything once. Environments go first;
				// their placements instantiate objects along the way.
				for _, id := range store.AvailableEnvironments() {
					store.CreateEnvironment(id)
				}
				for _, id := range store.AvailableCharacters() {
					store.CreateCharacter(id, registry.Position{}, "")
				}
				for _, id := range store.AvailableObjects() {
					store.CreateObject(id, registry.Position{})
				}

				report := buildStatsReport(store)

				if done, err := params.EmitJSON(report); done {
					return err
				}
				printStatsReport(report)
				return nil
			})
		},
	}
}

func buildStatsReport(store *prefab.Store) *statsReport {
	report := &statsReport{
		Characters:   store.AvailableCharacters(),
		Objects:      store.AvailableObjects(),
		Environments: store.AvailableEnvironments(),
	}

	if header, ok := store.Header(); ok {
		report.Version = header.Version
		report.BuildTime = header.BuildTime
		report.Assets = header.AssetCount
	}
	if info, ok := store.Container(); ok {
		report.Path = info.Path
		report.FileSize = info.Size
		report.PayloadSize = info.CompressedSize
		report.DecodedSize = info.DecodedSize
		if info.CompressedSize > 0 {
			report.Ratio = float64(info.DecodedSize) / float64(info.CompressedSize)
		}
	}

	stats := store.CacheStats()
	report.Caches.Characters = buildCacheReport(stats.Characters)
	report.Caches.Objects = buildCacheReport(stats.Objects)
	report.Caches.Environments = buildCacheReport(stats.Environments)
	return report
}

func buildCacheReport(stats cache.Stats) cacheReport {
	report := cacheReport{
		MaxEntries: stats.MaxEntries,
		Size:       stats.Size,
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Evictions:  stats.Evictions,
		HitRate:    stats.HitRate,
	}
	if stats.TTL > 0 {
		report.TTL = stats.TTL.String()
	}
	return report
}

func printStatsReport(report *statsReport) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Path:\t%s\n", report.Path)
	fmt.Fprintf(writer, "Version:\t%d\n", report.Version)
	fmt.Fprintf(writer, "Built:\t%s\n", report.BuildTime.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(writer, "Assets:\t%d\n", report.Assets)
	fmt.Fprintf(writer, "File Size:\t%s\n", formatSize(report.FileSize))
	fmt.Fprintf(writer, "Payload:\t%s compressed, %s decoded (%.1fx)\n",
		formatSize(report.PayloadSize), formatSize(report.DecodedSize), report.Ratio)
	fmt.Fprintf(writer, "Characters:\t%s\n", joinOrNone(report.Characters))
	fmt.Fprintf(writer, "Objects:\t%s\n", joinOrNone(report.Objects))
	fmt.Fprintf(writer, "Environments:\t%s\n", joinOrNone(report.Environments))
	writer.Flush()

	fmt.Println()
	caches := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(caches, "Cache\tCapacity\tTTL\tSize\tHits\tMisses\tEvictions\n")
	printCacheRow(caches, "characters", report.Caches.Characters)
	printCacheRow(caches, "objects", report.Caches.Objects)
	printCacheRow(caches, "environments", report.Caches.Environments)
	caches.Flush()
}

func printCacheRow(writer *tabwriter.Writer, name string, report cacheReport) {
	ttl := report.TTL
	if ttl == "" {
		ttl = "-"
	}
	fmt.Fprintf(writer, "%s\t%d\t%s\t%d\t%d\t%d\t%d\n",
		name, report.MaxEntries, ttl, report.Size, report.Hits, report.Misses, report.Evictions)
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}
