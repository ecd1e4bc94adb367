// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package registry

// SpriteGrid is a character's pixel data: rows of palette color names,
// row-major, top row first. The empty string is a transparent pixel.
type SpriteGrid [][]string

// CharacterMetadata describes a character sprite: display text, the
// palette it was authored against, free-form tags, and base stats for
// the game systems that consume the store.
type CharacterMetadata struct {
	Description string             `json:"description"`
	Palette     string             `json:"palette"`
	Tags        []string           `json:"tags,omitempty"`
	BaseStats   map[string]float64 `json:"base_stats,omitempty"`
}

// SpriteBank holds everything needed to instantiate characters.
// Sprites values are per-asset blobs (compressed CBOR SpriteGrid, see
// EncodeBlob); palettes and metadata are small and stored inline.
type SpriteBank struct {
	Sprites  map[string][]byte            `json:"sprites"`
	Metadata map[string]CharacterMetadata `json:"metadata"`
	Palettes map[string][]string          `json:"palettes"`
}

// MaxPaletteColors is the largest palette the renderer supports. Tile
// color ids are indices into a palette, so they are bounded by it too.
const MaxPaletteColors = 8
