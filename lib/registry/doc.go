// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry defines the typed asset registries that make up a
// container payload.
//
// A Payload is five registries keyed by asset id: the sprite bank
// (character pixel grids, palettes, metadata), the tile registry, the
// object registry, the environment registry (tile maps, dimensions,
// placements), and the interaction registry (interaction logic and
// dialogue sets). Registry field names are the container format's
// on-disk key names — changing a tag breaks every baked container.
//
// Bulk data (sprite grids, object blueprints, tile maps) is stored as
// per-asset blobs: CBOR inside a compression frame, so a loader can
// decode one character without inflating the whole bank. EncodeBlob
// and DecodeBlob implement that convention. Small data (palettes,
// interactions, dialogue) is stored inline and typed.
//
// Validate checks the cross-references between registries (characters
// → palettes, objects → interactions, interactions → dialogue sets,
// placements → objects) the way the baking toolchain does. The loader
// runs it in warning mode; the packer treats failures as fatal.
package registry
