// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package packdef

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dgtforge/prefab/lib/compress"
	"github.com/dgtforge/prefab/lib/registry"
)

// Build assembles a payload from the manifest, encoding each sprite
// grid, object blueprint, collision mask, and tile map as a compressed
// CBOR blob under the given codec. The manifest is not modified.
//
// Build reports shape errors (ragged tile grids) as it hits them, but
// callers should run [Validate] first for a complete issue list, and
// registry.Payload.Validate on the result before writing a container.
func Build(manifest *Manifest, codec compress.Codec) (*registry.Payload, error) {
	payload := &registry.Payload{
		SpriteBank: registry.SpriteBank{
			Sprites:  make(map[string][]byte, len(manifest.Characters)),
			Metadata: make(map[string]registry.CharacterMetadata, len(manifest.Characters)),
			Palettes: make(map[string][]string, len(manifest.Palettes)),
		},
		Tiles: registry.TileRegistry{
			Tiles: maps.Clone(manifest.Tiles),
		},
		Objects: registry.ObjectRegistry{
			Objects:      make(map[string][]byte, len(manifest.Objects)),
			Interactions: make(map[string]string),
		},
		Environments: registry.EnvironmentRegistry{
			Maps:             make(map[string][]byte, len(manifest.Environments)),
			Dimensions:       make(map[string]registry.Dimensions, len(manifest.Environments)),
			ObjectPlacements: make(map[string][]registry.Placement),
			NPCPlacements:    make(map[string][]registry.NPCPlacement),
		},
		Interactions: registry.InteractionRegistry{
			Interactions: maps.Clone(manifest.Interactions),
			DialogueSets: maps.Clone(manifest.DialogueSets),
		},
	}

	for id, def := range manifest.Characters {
		blob, err := registry.EncodeBlob(def.Sprite, codec)
		if err != nil {
			return nil, fmt.Errorf("character %q: encoding sprite: %w", id, err)
		}
		payload.SpriteBank.Sprites[id] = blob
		payload.SpriteBank.Metadata[id] = def.Metadata
	}

	for id, colors := range manifest.Palettes {
		payload.SpriteBank.Palettes[id] = slices.Clone(colors)
	}

	for id, def := range manifest.Objects {
		blob, err := registry.EncodeBlob(def.Blueprint, codec)
		if err != nil {
			return nil, fmt.Errorf("object %q: encoding blueprint: %w", id, err)
		}
		payload.Objects.Objects[id] = blob

		if def.Interaction != "" {
			payload.Objects.Interactions[id] = def.Interaction
		}
		if len(def.CollisionMask) > 0 {
			mask, err := registry.EncodeBlob(def.CollisionMask, codec)
			if err != nil {
				return nil, fmt.Errorf("object %q: encoding collision mask: %w", id, err)
			}
			if payload.Objects.CollisionMasks == nil {
				payload.Objects.CollisionMasks = make(map[string][]byte)
			}
			payload.Objects.CollisionMasks[id] = mask
		}
	}

	for id, def := range manifest.Environments {
		tiles, dims, err := flattenRows(def.Tiles)
		if err != nil {
			return nil, fmt.Errorf("environment %q: %w", id, err)
		}
		blob, err := registry.EncodeBlob(registry.CompressRuns(tiles), codec)
		if err != nil {
			return nil, fmt.Errorf("environment %q: encoding tile map: %w", id, err)
		}
		payload.Environments.Maps[id] = blob
		payload.Environments.Dimensions[id] = dims
		if len(def.Objects) > 0 {
			payload.Environments.ObjectPlacements[id] = slices.Clone(def.Objects)
		}
		if len(def.NPCs) > 0 {
			payload.Environments.NPCPlacements[id] = slices.Clone(def.NPCs)
		}
	}

	return payload, nil
}

// flattenRows joins a rectangular row grid into the row-major tile
// slice the runtime expects, deriving the environment's dimensions
// from the grid shape.
func flattenRows(rows [][]int) ([]int, registry.Dimensions, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, registry.Dimensions{}, errors.New("tile grid is empty")
	}

	width := len(rows[0])
	tiles := make([]int, 0, len(rows)*width)
	for index, row := range rows {
		if len(row) != width {
			return nil, registry.Dimensions{}, fmt.Errorf("row %d has %d tiles, want %d",
				index, len(row), width)
		}
		tiles = append(tiles, row...)
	}

	return tiles, registry.Dimensions{Width: width, Height: len(rows)}, nil
}
