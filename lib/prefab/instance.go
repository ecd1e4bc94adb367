// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package prefab

import (
	"time"

	"github.com/dgtforge/prefab/lib/registry"
)

// CharacterInstance is a character ready for the game loop: the
// decoded sprite grid, the resolved palette colors, and the authoring
// metadata. Instances are shared across cache hits; treat them as
// read-only.
type CharacterInstance struct {
	CharacterID string
	Sprite      registry.SpriteGrid
	Palette     []string
	Metadata    registry.CharacterMetadata
	Position    registry.Position

	// AnimationFrame is the frame the renderer starts on. Always zero
	// for freshly built instances; game systems that animate copy the
	// instance rather than mutate the shared one.
	AnimationFrame int
}

// ObjectInstance is a placed interactive object.
type ObjectInstance struct {
	ObjectID  string
	Blueprint registry.ObjectBlueprint

	// InteractionID names the interaction triggered on use. Empty when
	// the object registry maps no interaction for this object.
	InteractionID string

	Position registry.Position
	Active   bool
}

// EnvironmentInstance is a fully expanded environment: the tile map
// decoded from its run-length blob, placed objects instantiated, and
// NPC placements copied out of the registry.
type EnvironmentInstance struct {
	EnvironmentID string

	// TileMap holds one tile index per cell, row-major, top row first.
	TileMap []int

	Dimensions registry.Dimensions
	Objects    []*ObjectInstance
	NPCs       []registry.NPCPlacement
	LoadedAt   time.Time
}

// TileAt returns the tile index at (x, y). ok is false when the
// coordinate lies outside the environment's dimensions or past the
// end of a short tile map.
func (e *EnvironmentInstance) TileAt(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= e.Dimensions.Width || y >= e.Dimensions.Height {
		return 0, false
	}
	index := y*e.Dimensions.Width + x
	if index >= len(e.TileMap) {
		return 0, false
	}
	return e.TileMap[index], true
}

// Cache keys. Position and palette are part of a character's cache
// identity, so instances never need their position rewritten on a hit.
type characterKey struct {
	id      string
	pos     registry.Position
	palette string
}

type objectKey struct {
	id  string
	pos registry.Position
}
