// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache provides a bounded generic key→value store with
// least-recently-used eviction and optional per-store TTL.
//
// Each instantiation category (characters, objects, environments)
// owns one Store with its own size and TTL policy. A store is guarded
// by a single mutex: the access patterns are short critical sections
// on small maps, so finer-grained locking buys nothing. Expiry is
// checked when an entry is observed (and by [Store.CleanupExpired]),
// never by a timer.
package cache

import (
	"sync"
	"time"

	"github.com/dgtforge/prefab/lib/clock"
)

// Options configure a store.
type Options struct {
	// MaxEntries bounds the store. Must be positive; New panics
	// otherwise.
	MaxEntries int

	// TTL is the uniform time-to-live for all entries, measured from
	// each entry's creation (an overwrite restarts it). Zero means
	// entries never expire.
	TTL time.Duration

	// Clock supplies the current time. If nil, the real clock is
	// used. Tests inject a fake to drive expiry deterministically.
	Clock clock.Clock
}

// entry embeds its own list pointers so LRU reordering allocates
// nothing (front = most recently used, back = least).
type entry[K comparable, V any] struct {
	prev, next *entry[K, V]

	key          K
	value        V
	createdAt    time.Time
	lastAccessed time.Time
	accessCount  uint64
}

// Store is a bounded key→value cache. All methods are safe for
// concurrent use.
type Store[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]

	// Sentinel nodes for the intrusive list: head.next is the most
	// recently used entry, tail.prev the least. Sentinels eliminate
	// nil checks in the link operations.
	head, tail entry[K, V]

	maxEntries int
	ttl        time.Duration
	clk        clock.Clock

	hits      uint64
	misses    uint64
	evictions uint64
}

// Stats is a point-in-time snapshot of a store's counters. Hits and
// misses count Get outcomes; Evictions counts only capacity-driven
// removals, not TTL expiry.
type Stats struct {
	Size       int
	MaxEntries int
	Hits       uint64
	Misses     uint64
	Evictions  uint64

	// HitRate is Hits / (Hits + Misses), or 0 when no Get has
	// occurred.
	HitRate float64

	TTL time.Duration
}

// New creates an empty store. Panics if opts.MaxEntries is not
// positive: an unbounded or zero-capacity cache is a configuration
// bug, not a runtime condition.
func New[K comparable, V any](opts Options) *Store[K, V] {
	if opts.MaxEntries <= 0 {
		panic("cache: MaxEntries must be positive")
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}

	s := &Store[K, V]{
		entries:    make(map[K]*entry[K, V], opts.MaxEntries),
		maxEntries: opts.MaxEntries,
		ttl:        opts.TTL,
		clk:        clk,
	}
	s.head.next = &s.tail
	s.tail.prev = &s.head
	return s
}

// Get returns the value for key. An absent or expired key is a miss;
// expired entries are removed on observation. A hit refreshes the
// entry's recency and access bookkeeping.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return zero, false
	}

	now := s.clk.Now()
	if s.expired(e, now) {
		s.unlink(e)
		delete(s.entries, key)
		s.misses++
		return zero, false
	}

	s.hits++
	e.lastAccessed = now
	e.accessCount++
	s.moveToFront(e)
	return e.value, true
}

// Set inserts or overwrites the value for key. An overwrite restarts
// the entry's TTL. If the insert pushes the store over capacity, the
// least-recently-used entries are evicted one at a time until the
// store is back at capacity.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	if e, ok := s.entries[key]; ok {
		e.value = value
		e.createdAt = now
		e.lastAccessed = now
		e.accessCount = 0
		s.moveToFront(e)
		return
	}

	e := &entry[K, V]{
		key:          key,
		value:        value,
		createdAt:    now,
		lastAccessed: now,
	}
	s.entries[key] = e
	s.pushFront(e)

	for len(s.entries) > s.maxEntries {
		lru := s.tail.prev
		s.unlink(lru)
		delete(s.entries, lru.key)
		s.evictions++
	}
}

// Remove deletes key and reports whether it was present. Removing an
// expired-but-unobserved entry still reports true.
func (s *Store[K, V]) Remove(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.unlink(e)
	delete(s.entries, key)
	return true
}

// Clear drops every entry. The hit/miss/eviction counters are
// lifetime statistics and survive a clear.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.entries)
	s.head.next = &s.tail
	s.tail.prev = &s.head
}

// Len returns the number of entries currently stored, including any
// that have expired but not yet been observed or swept.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// CleanupExpired removes every expired entry regardless of recency
// and returns the number removed. A store with no TTL never has
// anything to sweep.
func (s *Store[K, V]) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl == 0 {
		return 0
	}

	// Expiry follows creation time, not recency, so the whole list
	// has to be walked.
	now := s.clk.Now()
	removed := 0
	for e := s.head.next; e != &s.tail; {
		next := e.next
		if s.expired(e, now) {
			s.unlink(e)
			delete(s.entries, e.key)
			removed++
		}
		e = next
	}
	return removed
}

// Stats returns a snapshot of the store's counters.
func (s *Store[K, V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		Size:       len(s.entries),
		MaxEntries: s.maxEntries,
		Hits:       s.hits,
		Misses:     s.misses,
		Evictions:  s.evictions,
		TTL:        s.ttl,
	}
	if total := s.hits + s.misses; total > 0 {
		stats.HitRate = float64(s.hits) / float64(total)
	}
	return stats
}

func (s *Store[K, V]) expired(e *entry[K, V], now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.createdAt) >= s.ttl
}

func (s *Store[K, V]) pushFront(e *entry[K, V]) {
	e.prev = &s.head
	e.next = s.head.next
	s.head.next.prev = e
	s.head.next = e
}

func (s *Store[K, V]) unlink(e *entry[K, V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
}

func (s *Store[K, V]) moveToFront(e *entry[K, V]) {
	s.unlink(e)
	s.pushFront(e)
}
