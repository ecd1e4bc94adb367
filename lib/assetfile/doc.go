// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package assetfile reads and writes prefab asset containers.
//
// A container is a single file holding every registry a game build
// needs: sprites, tiles, objects, environments, and interactions. The
// layout is a fixed 56-byte header followed by one compressed CBOR
// payload:
//
//	offset  bytes  field
//	0       4      magic ("DGT" + format generation byte)
//	4       4      version (little-endian u32)
//	8       8      build time (little-endian f64, seconds since epoch)
//	16      32     payload digest (keyed BLAKE3-256)
//	48      4      asset count (little-endian u32)
//	52      4      data offset (little-endian u32)
//
// The digest covers the stored payload bytes exactly as written at
// data offset, so a reader can verify integrity before paying for
// decompression. The payload itself is a self-describing compression
// frame (see lib/compress) wrapping deterministic CBOR (see
// lib/codec), which keeps the header free of codec bookkeeping.
//
// [Open] maps the file read-only (see lib/mmapfile), verifies it, and
// decodes the payload into typed registries. [WriteFile] is the
// inverse and is atomic: the container appears at its final path
// complete or not at all.
//
// Load failures fall into four categories, each testable with a
// predicate: [IsCorrupt], [IsUnsupportedVersion], [IsIntegrityError],
// and [IsDeserializationError].
package assetfile
