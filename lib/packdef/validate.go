// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package packdef

import (
	"fmt"
	"slices"

	"github.com/dgtforge/prefab/lib/registry"
)

// Validate checks a Manifest for structural issues Build cannot work
// around. Returns a list of human-readable issue descriptions; an
// empty list means the manifest can be built.
//
// Validate covers the source-level shape of the manifest: sprite grids
// must be present, tile grids rectangular and within the dimension
// limit, collision masks rectangular. Cross-references between assets
// (an object naming an unknown interaction, a placement naming an
// unknown object) are checked after Build by registry.Payload.Validate,
// which sees the assembled payload.
func Validate(manifest *Manifest) []string {
	var issues []string

	for _, id := range sortedKeys(manifest.Characters) {
		if len(manifest.Characters[id].Sprite) == 0 {
			issues = append(issues, fmt.Sprintf("characters[%q]: sprite is required", id))
		}
	}

	for _, id := range sortedKeys(manifest.Objects) {
		issues = append(issues, validateMask(manifest.Objects[id].CollisionMask, id)...)
	}

	for _, id := range sortedKeys(manifest.Environments) {
		issues = append(issues, validateGrid(manifest.Environments[id].Tiles, id)...)
	}

	return issues
}

// validateGrid checks an environment's tile row grid: non-empty,
// rectangular, and within the runtime's dimension limit.
func validateGrid(rows [][]int, id string) []string {
	prefix := fmt.Sprintf("environments[%q]", id)

	if len(rows) == 0 || len(rows[0]) == 0 {
		return []string{fmt.Sprintf("%s: tiles are required (at least one non-empty row)", prefix)}
	}

	var issues []string
	width := len(rows[0])
	for index, row := range rows {
		if len(row) != width {
			issues = append(issues, fmt.Sprintf("%s: row %d has %d tiles, want %d (rows must be equal length)",
				prefix, index, len(row), width))
		}
	}

	if width > registry.MaxDimension {
		issues = append(issues, fmt.Sprintf("%s: %d columns exceed the %d limit",
			prefix, width, registry.MaxDimension))
	}
	if len(rows) > registry.MaxDimension {
		issues = append(issues, fmt.Sprintf("%s: %d rows exceed the %d limit",
			prefix, len(rows), registry.MaxDimension))
	}

	return issues
}

// validateMask checks an object's optional collision mask for ragged
// rows. A missing mask is fine; most objects occupy a single tile.
func validateMask(mask [][]bool, id string) []string {
	if len(mask) == 0 {
		return nil
	}

	var issues []string
	width := len(mask[0])
	for index, row := range mask {
		if len(row) != width {
			issues = append(issues, fmt.Sprintf("objects[%q]: collision mask row %d has %d cells, want %d",
				id, index, len(row), width))
		}
	}
	return issues
}

// sortedKeys returns the map's keys in sorted order so issue lists are
// stable across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
