// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the store's standard CBOR encoding configuration.
//
// The asset pipeline uses two serialization formats with a clear
// boundary:
//
//   - JSON (with comments) for authoring inputs and CLI output: pack
//     manifests, `prefab inspect --json`, and anything a human edits.
//   - CBOR for everything inside a container: the AssetPayload body and
//     the per-asset sprite, object, and tile-map blobs.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical payload always produces
// identical bytes — which is what makes container checksums
// reproducible across bakes.
//
// Registry types carry `json` struct tags only: fxamacker/cbor v2 reads
// `json` tags as fallback when `cbor` tags are absent, so a single tag
// controls field naming for both the container body (CBOR) and manifest
// or CLI handling (JSON).
package codec
