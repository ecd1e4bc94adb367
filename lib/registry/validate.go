// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
	"slices"
)

// Validate cross-checks the payload's registries against each other
// and against the toolchain's structural limits. All problems are
// collected and returned joined; nil means the payload is internally
// consistent.
//
// The loader runs this in warning mode (a shipped container with a
// dangling reference should still load whatever it can); the packer
// refuses to write a container that fails it.
func (p *Payload) Validate() error {
	var errs []error

	for _, id := range sortedKeys(p.SpriteBank.Palettes) {
		if len(p.SpriteBank.Palettes[id]) == 0 {
			errs = append(errs, fmt.Errorf("palette %q has no colors", id))
		}
		if len(p.SpriteBank.Palettes[id]) > MaxPaletteColors {
			errs = append(errs, fmt.Errorf("palette %q has %d colors (max %d)",
				id, len(p.SpriteBank.Palettes[id]), MaxPaletteColors))
		}
	}

	for _, id := range sortedKeys(p.SpriteBank.Metadata) {
		meta := p.SpriteBank.Metadata[id]
		if meta.Palette != "" {
			if _, ok := p.SpriteBank.Palettes[meta.Palette]; !ok {
				errs = append(errs, fmt.Errorf("character %q references unknown palette %q", id, meta.Palette))
			}
		}
		if len(meta.Tags) > 10 {
			errs = append(errs, fmt.Errorf("character %q has %d tags (max 10)", id, len(meta.Tags)))
		}
	}

	for _, id := range sortedKeys(p.Tiles.Tiles) {
		tile := p.Tiles.Tiles[id]
		if !tile.Pattern.Valid() {
			errs = append(errs, fmt.Errorf("tile %q has unknown pattern %q", id, tile.Pattern))
		}
		if tile.ColorID < 0 || tile.ColorID >= MaxPaletteColors {
			errs = append(errs, fmt.Errorf("tile %q color id %d out of range [0, %d)",
				id, tile.ColorID, MaxPaletteColors))
		}
	}

	for _, id := range sortedKeys(p.Objects.Interactions) {
		interactionID := p.Objects.Interactions[id]
		if _, ok := p.Objects.Objects[id]; !ok {
			errs = append(errs, fmt.Errorf("interaction mapping for unknown object %q", id))
		}
		if _, ok := p.Interactions.Interactions[interactionID]; !ok {
			errs = append(errs, fmt.Errorf("object %q references unknown interaction %q", id, interactionID))
		}
	}

	for _, id := range sortedKeys(p.Interactions.Interactions) {
		errs = append(errs, p.validateInteraction(id)...)
	}

	for _, id := range sortedKeys(p.Environments.Maps) {
		errs = append(errs, p.validateEnvironment(id)...)
	}

	return errors.Join(errs...)
}

func (p *Payload) validateInteraction(id string) []error {
	interaction := p.Interactions.Interactions[id]

	var errs []error
	if !interaction.Type.Valid() {
		errs = append(errs, fmt.Errorf("interaction %q has unknown type %q", id, interaction.Type))
		return errs
	}

	switch interaction.Type {
	case InteractionLootTable:
		if len(interaction.LootTable) == 0 {
			errs = append(errs, fmt.Errorf("loot_table interaction %q has no loot table", id))
		}
	case InteractionDoorExit:
		if interaction.TargetMap == "" || interaction.TargetPosition == nil {
			errs = append(errs, fmt.Errorf("door_exit interaction %q needs target_map and target_position", id))
		} else if _, ok := p.Environments.Maps[interaction.TargetMap]; !ok {
			errs = append(errs, fmt.Errorf("interaction %q targets unknown map %q", id, interaction.TargetMap))
		}
	case InteractionDialogue:
		if interaction.DialogueSet == "" {
			errs = append(errs, fmt.Errorf("dialogue interaction %q has no dialogue set", id))
		}
	}

	if interaction.DialogueSet != "" {
		if _, ok := p.Interactions.DialogueSets[interaction.DialogueSet]; !ok {
			errs = append(errs, fmt.Errorf("interaction %q references unknown dialogue set %q",
				id, interaction.DialogueSet))
		}
	}
	return errs
}

func (p *Payload) validateEnvironment(id string) []error {
	var errs []error

	dims, ok := p.Environments.Dimensions[id]
	if !ok {
		errs = append(errs, fmt.Errorf("environment %q has a map but no dimensions", id))
	} else {
		if dims.Width <= 0 || dims.Height <= 0 {
			errs = append(errs, fmt.Errorf("environment %q has empty dimensions %dx%d", id, dims.Width, dims.Height))
		}
		if dims.Width > MaxDimension || dims.Height > MaxDimension {
			errs = append(errs, fmt.Errorf("environment %q dimensions %dx%d exceed %dx%d",
				id, dims.Width, dims.Height, MaxDimension, MaxDimension))
		}
	}

	// Expanding the map blob is the expensive check: only worth doing
	// when the dimensions are usable as a reference.
	if ok && dims.Width > 0 && dims.Height > 0 {
		var runs []TileRun
		if err := DecodeBlob(p.Environments.Maps[id], &runs); err != nil {
			errs = append(errs, fmt.Errorf("environment %q map blob: %w", id, err))
		} else if tiles, err := ExpandRuns(runs, MaxMapTiles); err != nil {
			errs = append(errs, fmt.Errorf("environment %q map: %w", id, err))
		} else if len(tiles) != dims.Area() {
			errs = append(errs, fmt.Errorf("environment %q map has %d tiles, dimensions say %d",
				id, len(tiles), dims.Area()))
		}
	}

	for _, placement := range p.Environments.ObjectPlacements[id] {
		if _, ok := p.Objects.Objects[placement.Type]; !ok {
			errs = append(errs, fmt.Errorf("environment %q places unknown object %q", id, placement.Type))
		}
	}
	for _, npc := range p.Environments.NPCPlacements[id] {
		if npc.DialogueSet == "" {
			continue
		}
		if _, ok := p.Interactions.DialogueSets[npc.DialogueSet]; !ok {
			errs = append(errs, fmt.Errorf("environment %q NPC %q references unknown dialogue set %q",
				id, npc.Name, npc.DialogueSet))
		}
	}
	return errs
}

// sortedKeys returns the map's keys in sorted order so validation
// reports are stable across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
