// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package packdef provides parsing, validation, and payload assembly
// for pack manifests: the authored source form of an asset container.
//
// A manifest declares every asset inline — sprite grids as rows of
// palette color names, tile maps as rows of tile indices — and is
// authored on disk as a JSONC file (JSON extended with comments and
// trailing commas). The packer turns a manifest into the compressed
// binary container the runtime loads.
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Manifest
//  2. Validate: structural checks (non-empty sprites, rectangular
//     tile grids, dimension limits)
//  3. Build: encode per-asset blobs and assemble a registry.Payload
//  4. assetfile.WriteFile: write the container
package packdef

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/dgtforge/prefab/lib/registry"
)

// Manifest is the decoded form of a pack manifest file. Every section
// is optional; an empty manifest builds an empty (but valid) payload.
type Manifest struct {
	Characters   map[string]CharacterDef            `json:"characters,omitempty"`
	Palettes     map[string][]string                `json:"palettes,omitempty"`
	Tiles        map[string]registry.TileDefinition `json:"tiles,omitempty"`
	Objects      map[string]ObjectDef               `json:"objects,omitempty"`
	Environments map[string]EnvironmentDef          `json:"environments,omitempty"`
	Interactions map[string]registry.Interaction    `json:"interactions,omitempty"`
	DialogueSets map[string]registry.DialogueSet    `json:"dialogue_sets,omitempty"`
}

// CharacterDef declares one character: the sprite grid that becomes a
// compressed blob, and the inline metadata stored alongside it.
type CharacterDef struct {
	Sprite   registry.SpriteGrid        `json:"sprite"`
	Metadata registry.CharacterMetadata `json:"metadata"`
}

// ObjectDef declares one interactive object. Interaction names an
// entry in the manifest's interactions section; the optional collision
// mask is a row grid of solid cells for objects larger than one tile.
type ObjectDef struct {
	Blueprint     registry.ObjectBlueprint `json:"blueprint"`
	Interaction   string                   `json:"interaction,omitempty"`
	CollisionMask [][]bool                 `json:"collision_mask,omitempty"`
}

// EnvironmentDef declares one environment. Tiles is a rectangular row
// grid of tile indices (top row first); its shape determines the
// environment's dimensions.
type EnvironmentDef struct {
	Tiles   [][]int                 `json:"tiles"`
	Objects []registry.Placement    `json:"objects,omitempty"`
	NPCs    []registry.NPCPlacement `json:"npcs,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Manifest.
func Parse(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	var manifest Manifest
	if err := json.Unmarshal(stripped, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	return &manifest, nil
}

// ReadFile reads a JSONC manifest file from disk and parses it.
// Returns a descriptive error if the file cannot be read or the JSON
// is malformed.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	manifest, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return manifest, nil
}

// NameFromPath extracts a container base name from a manifest path by
// stripping the directory prefix and the file extension. For example,
// "assets/dungeon-pack.jsonc" returns "dungeon-pack".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	extension := filepath.Ext(base)
	return strings.TrimSuffix(base, extension)
}
