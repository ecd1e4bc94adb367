// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import "fmt"

// Dimensions is an environment's size in tiles.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns Width times Height: the expected tile-map length.
func (d Dimensions) Area() int {
	return d.Width * d.Height
}

// Placement puts an object from the object registry at a position
// within an environment.
type Placement struct {
	Type     string   `json:"type"`
	Position Position `json:"position"`
}

// NPCPlacement puts a named NPC at a position, optionally bound to a
// dialogue set from the interaction registry.
type NPCPlacement struct {
	Name        string   `json:"name"`
	Position    Position `json:"position"`
	DialogueSet string   `json:"dialogue_set,omitempty"`
}

// TileRun is one run of a run-length-encoded tile map: Count
// consecutive tiles with the same tile index.
type TileRun struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// EnvironmentRegistry holds pre-baked environments. Maps values are
// per-asset blobs (compressed CBOR []TileRun, row-major); dimensions
// and placements are small and stored inline, keyed by the same
// environment id as the map blob.
type EnvironmentRegistry struct {
	Maps             map[string][]byte         `json:"maps"`
	Dimensions       map[string]Dimensions     `json:"dimensions"`
	ObjectPlacements map[string][]Placement    `json:"object_placements"`
	NPCPlacements    map[string][]NPCPlacement `json:"npc_placements"`
}

// CompressRuns run-length encodes a tile map. Empty input encodes to
// no runs.
func CompressRuns(tiles []int) []TileRun {
	if len(tiles) == 0 {
		return nil
	}

	runs := make([]TileRun, 0, 16)
	current := TileRun{Value: tiles[0], Count: 1}
	for _, tile := range tiles[1:] {
		if tile == current.Value {
			current.Count++
			continue
		}
		runs = append(runs, current)
		current = TileRun{Value: tile, Count: 1}
	}
	return append(runs, current)
}

// ExpandRuns decodes a run-length-encoded tile map. maxTiles bounds
// the decoded length so a damaged blob cannot balloon memory; pass an
// environment's Dimensions.Area() or MaxMapTiles when the dimensions
// are unknown.
func ExpandRuns(runs []TileRun, maxTiles int) ([]int, error) {
	total := 0
	for i, run := range runs {
		if run.Count <= 0 {
			return nil, fmt.Errorf("tile run %d has non-positive count %d", i, run.Count)
		}
		total += run.Count
		if total > maxTiles {
			return nil, fmt.Errorf("tile map expands past %d tiles", maxTiles)
		}
	}

	tiles := make([]int, 0, total)
	for _, run := range runs {
		for i := 0; i < run.Count; i++ {
			tiles = append(tiles, run.Value)
		}
	}
	return tiles, nil
}

// MaxMapTiles caps tile-map expansion when no dimensions are
// available. MaxDimension squared.
const MaxMapTiles = MaxDimension * MaxDimension

// MaxDimension is the largest environment width or height the
// toolchain accepts.
const MaxDimension = 100
