// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package prefab instantiates typed game objects from a loaded asset
// container.
//
// Store is the entry point game systems talk to. LoadAssets opens a
// container through lib/assetfile; the Create methods then build
// [CharacterInstance], [ObjectInstance], and [EnvironmentInstance]
// values from the decoded registries, decompressing per-asset blobs
// on demand and memoizing the results in three independent LRU+TTL
// caches (lib/cache), one per category.
//
// Instances are shared: a cache hit returns the same pointer the miss
// path built, so callers must treat instances as read-only. A
// character's cache identity is (id, position, palette override) —
// creating the same character at two positions yields two instances.
//
// Lookup misses are not errors. Asking for an asset id the container
// does not hold, or calling any create or get method before LoadAssets
// (or after Cleanup), returns (nil, false); only load-time failures
// are logged as errors.
package prefab
