// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package prefab

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dgtforge/prefab/lib/assetfile"
	"github.com/dgtforge/prefab/lib/cache"
	"github.com/dgtforge/prefab/lib/clock"
	"github.com/dgtforge/prefab/lib/config"
	"github.com/dgtforge/prefab/lib/registry"
)

// defaultPalette is used when neither the caller nor the character's
// metadata names a palette.
const defaultPalette = "legion_red"

// Options configure a Store beyond what the config file carries.
type Options struct {
	// Logger receives load and instantiation diagnostics. If nil, a
	// no-op logger is used.
	Logger *slog.Logger

	// Clock supplies the current time for cache TTLs and environment
	// load stamps. If nil, the real clock is used.
	Clock clock.Clock
}

// Store owns a loaded container and the three instance caches, and
// builds typed instances from registry data on demand.
//
// All methods are safe for concurrent use. The create methods snapshot
// the loaded payload and caches under the store mutex and then work
// off the snapshot, so a concurrent Cleanup or reload cannot
// invalidate an in-flight instantiation: the decoded payload is heap
// data and outlives the container's mapping.
type Store struct {
	logger    *slog.Logger
	clk       clock.Clock
	integrity assetfile.IntegrityMode
	validate  bool
	policies  config.CachesConfig

	mu      sync.Mutex
	archive *assetfile.Archive
	payload *registry.Payload

	characters   *cache.Store[characterKey, *CharacterInstance]
	objects      *cache.Store[objectKey, *ObjectInstance]
	environments *cache.Store[string, *EnvironmentInstance]
}

// StoreStats bundles point-in-time snapshots of the three instance
// caches.
type StoreStats struct {
	Characters   cache.Stats
	Objects      cache.Stats
	Environments cache.Stats
}

// New creates a store from the given configuration. A nil cfg means
// config.Default(). The configuration is validated here, so callers
// of LoadFile need no separate Validate call.
func New(cfg *config.Config, opts Options) (*Store, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("prefab: invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}

	integrity := assetfile.IntegrityStrict
	if cfg.Integrity == "legacy" {
		integrity = assetfile.IntegrityLegacy
	}

	s := &Store{
		logger:    logger,
		clk:       clk,
		integrity: integrity,
		validate:  cfg.Validation,
		policies:  cfg.Caches,
	}
	s.buildCaches()
	return s, nil
}

// buildCaches replaces the three instance caches with empty ones built
// from the configured policies. Called under s.mu (and from New).
func (s *Store) buildCaches() {
	s.characters = cache.New[characterKey, *CharacterInstance](cacheOptions(s.policies.Characters, s.clk))
	s.objects = cache.New[objectKey, *ObjectInstance](cacheOptions(s.policies.Objects, s.clk))
	s.environments = cache.New[string, *EnvironmentInstance](cacheOptions(s.policies.Environments, s.clk))
}

func cacheOptions(p config.CachePolicy, clk clock.Clock) cache.Options {
	return cache.Options{
		MaxEntries: p.MaxEntries,
		TTL:        p.TTLDuration(),
		Clock:      clk,
	}
}

// LoadAssets opens the container at path and makes its registries
// available to the create methods. On success the instance caches are
// rebuilt fresh from their configured policies. Loading over an
// already-loaded store releases the previous container first, so a
// failed load always leaves the store unloaded. The failure reason is
// logged, not returned.
func (s *Store) LoadAssets(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			s.logger.Warn("closing previous container",
				"path", s.archive.Path(),
				"error", err,
			)
		}
		s.archive = nil
		s.payload = nil
	}

	archive, err := assetfile.Open(path, assetfile.OpenOptions{
		Integrity: s.integrity,
		Validate:  s.validate,
		Logger:    s.logger,
	})
	if err != nil {
		s.logger.Error("asset load failed",
			"path", path,
			"error", err,
		)
		return false
	}

	s.archive = archive
	s.payload = archive.Payload()
	s.buildCaches()

	header := archive.Header()
	s.logger.Info("assets loaded",
		"path", path,
		"version", header.Version,
		"assets", s.payload.EntryCount(),
		"compressed_bytes", archive.CompressedSize(),
	)
	return true
}

// storeState is a consistent snapshot of the loaded payload and the
// caches that index it.
type storeState struct {
	payload      *registry.Payload
	characters   *cache.Store[characterKey, *CharacterInstance]
	objects      *cache.Store[objectKey, *ObjectInstance]
	environments *cache.Store[string, *EnvironmentInstance]
}

func (s *Store) state() (storeState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payload == nil {
		return storeState{}, false
	}
	return storeState{
		payload:      s.payload,
		characters:   s.characters,
		objects:      s.objects,
		environments: s.environments,
	}, true
}

// CreateCharacter builds (or returns the cached) character instance
// for id at pos. paletteOverride selects a palette from the sprite
// bank; empty means the palette named by the character's metadata,
// falling back to "legion_red". An unknown palette name yields an
// instance with no palette colors, matching the bank lookup. Returns
// (nil, false) when the store is unloaded, the id is absent, or the
// sprite blob cannot be decoded.
func (s *Store) CreateCharacter(id string, pos registry.Position, paletteOverride string) (*CharacterInstance, bool) {
	st, ok := s.state()
	if !ok {
		return nil, false
	}

	key := characterKey{id: id, pos: pos, palette: paletteOverride}
	if inst, ok := st.characters.Get(key); ok {
		return inst, true
	}

	blob, ok := st.payload.SpriteBank.Sprites[id]
	if !ok {
		s.logger.Warn("character not found", "id", id)
		return nil, false
	}

	var sprite registry.SpriteGrid
	if err := registry.DecodeBlob(blob, &sprite); err != nil {
		s.logger.Error("character sprite blob is unreadable",
			"id", id,
			"error", err,
		)
		return nil, false
	}

	metadata := st.payload.SpriteBank.Metadata[id]
	paletteID := paletteOverride
	if paletteID == "" {
		paletteID = metadata.Palette
	}
	if paletteID == "" {
		paletteID = defaultPalette
	}

	inst := &CharacterInstance{
		CharacterID: id,
		Sprite:      sprite,
		Palette:     st.payload.SpriteBank.Palettes[paletteID],
		Metadata:    metadata,
		Position:    pos,
	}
	st.characters.Set(key, inst)
	return inst, true
}

// CreateObject builds (or returns the cached) object instance for id
// at pos. Fresh instances start Active.
func (s *Store) CreateObject(id string, pos registry.Position) (*ObjectInstance, bool) {
	st, ok := s.state()
	if !ok {
		return nil, false
	}

	key := objectKey{id: id, pos: pos}
	if inst, ok := st.objects.Get(key); ok {
		return inst, true
	}

	blob, ok := st.payload.Objects.Objects[id]
	if !ok {
		s.logger.Warn("object not found", "id", id)
		return nil, false
	}

	var blueprint registry.ObjectBlueprint
	if err := registry.DecodeBlob(blob, &blueprint); err != nil {
		s.logger.Error("object blob is unreadable",
			"id", id,
			"error", err,
		)
		return nil, false
	}

	inst := &ObjectInstance{
		ObjectID:      id,
		Blueprint:     blueprint,
		InteractionID: st.payload.Objects.Interactions[id],
		Position:      pos,
		Active:        true,
	}
	st.objects.Set(key, inst)
	return inst, true
}

// CreateEnvironment builds (or returns the cached) environment
// instance for id: the tile map expanded from its run-length blob,
// every object placement instantiated through CreateObject, and the
// NPC placements copied out of the registry.
func (s *Store) CreateEnvironment(id string) (*EnvironmentInstance, bool) {
	st, ok := s.state()
	if !ok {
		return nil, false
	}

	if inst, ok := st.environments.Get(id); ok {
		return inst, true
	}

	blob, ok := st.payload.Environments.Maps[id]
	if !ok {
		s.logger.Warn("environment not found", "id", id)
		return nil, false
	}

	var runs []registry.TileRun
	if err := registry.DecodeBlob(blob, &runs); err != nil {
		s.logger.Error("environment map blob is unreadable",
			"id", id,
			"error", err,
		)
		return nil, false
	}

	dims := st.payload.Environments.Dimensions[id]
	maxTiles := dims.Area()
	if maxTiles <= 0 {
		maxTiles = registry.MaxMapTiles
	}
	tiles, err := registry.ExpandRuns(runs, maxTiles)
	if err != nil {
		s.logger.Error("environment tile map does not expand",
			"id", id,
			"error", err,
		)
		return nil, false
	}

	var objects []*ObjectInstance
	for _, placement := range st.payload.Environments.ObjectPlacements[id] {
		obj, ok := s.CreateObject(placement.Type, placement.Position)
		if !ok {
			s.logger.Warn("environment placement references unknown object",
				"environment", id,
				"object", placement.Type,
			)
			continue
		}
		objects = append(objects, obj)
	}

	inst := &EnvironmentInstance{
		EnvironmentID: id,
		TileMap:       tiles,
		Dimensions:    dims,
		Objects:       objects,
		NPCs:          slices.Clone(st.payload.Environments.NPCPlacements[id]),
		LoadedAt:      s.clk.Now(),
	}
	st.environments.Set(id, inst)
	return inst, true
}

// Interaction returns the interaction behavior registered under id.
// Uncached: the table is small and stored inline. The returned value
// is a shallow copy; reassigning its fields does not affect the
// registry, but LootTable is shared.
func (s *Store) Interaction(id string) (*registry.Interaction, bool) {
	st, ok := s.state()
	if !ok {
		return nil, false
	}
	interaction, ok := st.payload.Interactions.Interactions[id]
	if !ok {
		return nil, false
	}
	return &interaction, true
}

// DialogueSet returns the dialogue set registered under id. Uncached,
// returned as a shallow copy, like Interaction.
func (s *Store) DialogueSet(id string) (*registry.DialogueSet, bool) {
	st, ok := s.state()
	if !ok {
		return nil, false
	}
	set, ok := st.payload.Interactions.DialogueSets[id]
	if !ok {
		return nil, false
	}
	return &set, true
}

// AvailableCharacters returns the sorted ids of every character in
// the loaded container. Nil when nothing is loaded.
func (s *Store) AvailableCharacters() []string {
	st, ok := s.state()
	if !ok {
		return nil
	}
	return sortedKeys(st.payload.SpriteBank.Sprites)
}

// AvailableObjects returns the sorted ids of every object in the
// loaded container. Nil when nothing is loaded.
func (s *Store) AvailableObjects() []string {
	st, ok := s.state()
	if !ok {
		return nil
	}
	return sortedKeys(st.payload.Objects.Objects)
}

// AvailableEnvironments returns the sorted ids of every environment
// in the loaded container. Nil when nothing is loaded.
func (s *Store) AvailableEnvironments() []string {
	st, ok := s.state()
	if !ok {
		return nil
	}
	return sortedKeys(st.payload.Environments.Maps)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// CacheStats snapshots the three instance caches.
func (s *Store) CacheStats() StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StoreStats{
		Characters:   s.characters.Stats(),
		Objects:      s.objects.Stats(),
		Environments: s.environments.Stats(),
	}
}

// Loaded reports whether a container is currently loaded.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payload != nil
}

// Header returns the loaded container's header. ok is false when
// nothing is loaded.
func (s *Store) Header() (assetfile.Header, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.archive == nil {
		return assetfile.Header{}, false
	}
	return s.archive.Header(), true
}

// ContainerInfo describes the file behind the loaded container.
type ContainerInfo struct {
	Path           string
	Size           int64
	CompressedSize int64
	DecodedSize    int64
}

// Container returns file-level information about the loaded container.
// ok is false when nothing is loaded.
func (s *Store) Container() (ContainerInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.archive == nil {
		return ContainerInfo{}, false
	}
	return ContainerInfo{
		Path:           s.archive.Path(),
		Size:           s.archive.Size(),
		CompressedSize: s.archive.CompressedSize(),
		DecodedSize:    s.archive.DecodedSize(),
	}, true
}

// Cleanup releases the container and clears the instance caches.
// Idempotent. Create and get methods on a cleaned-up store return
// (nil, false); cache counters survive for post-mortem CacheStats
// reads until the next load rebuilds the caches.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.archive != nil {
		path := s.archive.Path()
		if err := s.archive.Close(); err != nil {
			s.logger.Warn("closing container",
				"path", path,
				"error", err,
			)
		}
		s.archive = nil
		s.logger.Info("container released", "path", path)
	}
	s.payload = nil
	s.characters.Clear()
	s.objects.Clear()
	s.environments.Clear()
}

// Close releases the store. It makes Store an io.Closer so stores
// managed by a di.Container or di.Scope are cleaned up on teardown;
// it is Cleanup with a nil error.
func (s *Store) Close() error {
	s.Cleanup()
	return nil
}
