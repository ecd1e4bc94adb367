// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package registry

// TilePattern selects how a tile is rendered.
type TilePattern string

const (
	TileSolid    TilePattern = "solid"
	TileTextured TilePattern = "textured"
	TileAnimated TilePattern = "animated"
)

// Valid reports whether p is a known tile pattern.
func (p TilePattern) Valid() bool {
	switch p {
	case TileSolid, TileTextured, TileAnimated:
		return true
	default:
		return false
	}
}

// TileDefinition describes one tile type. ColorID indexes into the
// active environment palette, so it is bounded by MaxPaletteColors.
type TileDefinition struct {
	Description string      `json:"description"`
	Pattern     TilePattern `json:"pattern"`
	ColorID     int         `json:"color_id"`
	Walkable    bool        `json:"walkable"`
	Transparent bool        `json:"transparent,omitempty"`
}

// TileRegistry holds the tile definitions environment maps index
// into. Tile data is small, so definitions are stored inline rather
// than as blobs.
type TileRegistry struct {
	Tiles map[string]TileDefinition `json:"tiles"`
}
