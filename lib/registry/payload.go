// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package registry

// Position is a tile coordinate within an environment. Origin is the
// top-left corner; X grows rightward, Y grows downward.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Payload is the decoded body of a container: every registry the
// baking toolchain emits. The zero value is a valid, empty payload.
type Payload struct {
	SpriteBank   SpriteBank          `json:"sprite_bank"`
	Tiles        TileRegistry        `json:"tile_registry"`
	Objects      ObjectRegistry      `json:"object_registry"`
	Environments EnvironmentRegistry `json:"environment_registry"`
	Interactions InteractionRegistry `json:"interaction_registry"`
}

// EntryCount returns the number of countable assets in the payload:
// sprites, tiles, objects, environment maps, and interactions. This is
// the number the container header's asset_count field records.
// Palettes, metadata, placements, and dialogue sets are auxiliary
// tables keyed off those assets and are not counted.
func (p *Payload) EntryCount() int {
	return len(p.SpriteBank.Sprites) +
		len(p.Tiles.Tiles) +
		len(p.Objects.Objects) +
		len(p.Environments.Maps) +
		len(p.Interactions.Interactions)
}
