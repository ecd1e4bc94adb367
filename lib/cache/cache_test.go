// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dgtforge/prefab/lib/clock"
)

func TestLRUEvictionOrder(t *testing.T) {
	s := New[string, int](Options{MaxEntries: 2})

	s.Set("k1", 1)
	s.Set("k2", 2)
	s.Set("k3", 3)

	if _, ok := s.Get("k1"); ok {
		t.Error("k1 should have been evicted as least recently used")
	}
	if v, ok := s.Get("k2"); !ok || v != 2 {
		t.Errorf("Get(k2) = %d, %v; want 2, true", v, ok)
	}
	if v, ok := s.Get("k3"); !ok || v != 3 {
		t.Errorf("Get(k3) = %d, %v; want 3, true", v, ok)
	}

	stats := s.Stats()
	if stats.Evictions != 1 {
		t.Errorf("evictions = %d, want 1", stats.Evictions)
	}
	if stats.Size != 2 {
		t.Errorf("size = %d, want 2", stats.Size)
	}
}

func TestGetRefreshesRecency(t *testing.T) {
	s := New[string, int](Options{MaxEntries: 2})

	s.Set("k1", 1)
	s.Set("k2", 2)

	// Touching k1 makes k2 the eviction candidate.
	if _, ok := s.Get("k1"); !ok {
		t.Fatal("Get(k1) missed unexpectedly")
	}
	s.Set("k3", 3)

	if _, ok := s.Get("k1"); !ok {
		t.Error("k1 was evicted despite being most recently used")
	}
	if _, ok := s.Get("k2"); ok {
		t.Error("k2 should have been evicted")
	}
}

func TestSetOverwriteRefreshesRecency(t *testing.T) {
	s := New[string, int](Options{MaxEntries: 2})

	s.Set("k1", 1)
	s.Set("k2", 2)
	s.Set("k1", 10)
	s.Set("k3", 3)

	if v, ok := s.Get("k1"); !ok || v != 10 {
		t.Errorf("Get(k1) = %d, %v; want 10, true", v, ok)
	}
	if _, ok := s.Get("k2"); ok {
		t.Error("k2 should have been evicted")
	}
}

func TestTTLExpiration(t *testing.T) {
	clk := clock.Fake(time.Unix(1700000000, 0))
	s := New[string, string](Options{MaxEntries: 8, TTL: time.Second, Clock: clk})

	s.Set("a", "value")
	if v, ok := s.Get("a"); !ok || v != "value" {
		t.Fatalf("Get(a) = %q, %v; want value, true", v, ok)
	}

	clk.Advance(1100 * time.Millisecond)
	if _, ok := s.Get("a"); ok {
		t.Error("entry should be expired after the TTL elapsed")
	}
	if got := s.Len(); got != 0 {
		t.Errorf("Len() = %d after observing expiry, want 0", got)
	}

	stats := s.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", stats.Hits, stats.Misses)
	}
	if stats.Evictions != 0 {
		t.Errorf("expiry counted as eviction: %d", stats.Evictions)
	}
}

func TestExpiryAtExactTTLBoundary(t *testing.T) {
	clk := clock.Fake(time.Unix(1700000000, 0))
	s := New[string, int](Options{MaxEntries: 8, TTL: 10 * time.Second, Clock: clk})

	s.Set("a", 1)
	clk.Advance(10 * time.Second)
	if _, ok := s.Get("a"); ok {
		t.Error("entry should be expired once the full TTL has elapsed")
	}
}

func TestNoTTLNeverExpires(t *testing.T) {
	clk := clock.Fake(time.Unix(1700000000, 0))
	s := New[string, int](Options{MaxEntries: 8, Clock: clk})

	s.Set("a", 1)
	clk.Advance(1000 * time.Hour)

	if _, ok := s.Get("a"); !ok {
		t.Error("entry expired in a store with no TTL")
	}
	if removed := s.CleanupExpired(); removed != 0 {
		t.Errorf("CleanupExpired() = %d in a store with no TTL, want 0", removed)
	}
}

func TestOverwriteRestartsTTL(t *testing.T) {
	clk := clock.Fake(time.Unix(1700000000, 0))
	s := New[string, int](Options{MaxEntries: 8, TTL: 10 * time.Second, Clock: clk})

	s.Set("a", 1)
	clk.Advance(6 * time.Second)
	s.Set("a", 2)

	// 6s after the overwrite the original creation time would have
	// expired, the refreshed one has not.
	clk.Advance(6 * time.Second)
	if v, ok := s.Get("a"); !ok || v != 2 {
		t.Errorf("Get(a) = %d, %v; want 2, true", v, ok)
	}

	clk.Advance(4 * time.Second)
	if _, ok := s.Get("a"); ok {
		t.Error("entry should expire 10s after the overwrite")
	}
}

func TestHitRateArithmetic(t *testing.T) {
	s := New[string, int](Options{MaxEntries: 8})

	if got := s.Stats().HitRate; got != 0 {
		t.Errorf("hit rate before any request = %v, want 0", got)
	}

	s.Set("a", 1)
	s.Get("a")       // hit
	s.Get("missing") // miss

	if got := s.Stats().HitRate; got != 0.5 {
		t.Errorf("hit rate after 1 hit + 1 miss = %v, want 0.5", got)
	}
}

func TestRemove(t *testing.T) {
	s := New[string, int](Options{MaxEntries: 8})
	s.Set("a", 1)

	if !s.Remove("a") {
		t.Error("Remove(a) = false for a present key")
	}
	if s.Remove("a") {
		t.Error("Remove(a) = true for an absent key")
	}
	if got := s.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}

	// Remove is not a lookup: the hit/miss counters stay untouched.
	stats := s.Stats()
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("hits/misses = %d/%d after Remove, want 0/0", stats.Hits, stats.Misses)
	}
}

func TestClearKeepsLifetimeCounters(t *testing.T) {
	s := New[string, int](Options{MaxEntries: 8})
	s.Set("a", 1)
	s.Get("a")
	s.Get("missing")

	s.Clear()

	stats := s.Stats()
	if stats.Size != 0 {
		t.Errorf("size = %d after Clear, want 0", stats.Size)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("hits/misses = %d/%d after Clear, want 1/1", stats.Hits, stats.Misses)
	}

	// The store is fully usable after a clear.
	s.Set("b", 2)
	if v, ok := s.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %d, %v after Clear; want 2, true", v, ok)
	}
}

func TestCleanupExpired(t *testing.T) {
	clk := clock.Fake(time.Unix(1700000000, 0))
	s := New[string, int](Options{MaxEntries: 8, TTL: 5 * time.Second, Clock: clk})

	s.Set("a", 1)
	s.Set("b", 2)
	clk.Advance(3 * time.Second)
	s.Set("c", 3)
	clk.Advance(3 * time.Second)

	// a and b are 6s old, c is 3s old.
	if removed := s.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if got := s.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
	if v, ok := s.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %d, %v; want 3, true", v, ok)
	}
}

func TestStatsEchoesPolicy(t *testing.T) {
	s := New[string, int](Options{MaxEntries: 32, TTL: time.Minute})
	stats := s.Stats()
	if stats.MaxEntries != 32 {
		t.Errorf("MaxEntries = %d, want 32", stats.MaxEntries)
	}
	if stats.TTL != time.Minute {
		t.Errorf("TTL = %v, want 1m", stats.TTL)
	}
}

func TestZeroCapacityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New with MaxEntries 0 did not panic")
		}
	}()
	New[string, int](Options{MaxEntries: 0})
}

func TestConcurrentAccess(t *testing.T) {
	s := New[string, int](Options{MaxEntries: 64})

	const workers = 16
	const rounds = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				key := fmt.Sprintf("key-%d", (w+i)%100)
				s.Set(key, i)
				s.Get(key)
				if i%10 == 0 {
					s.Remove(key)
				}
				if i%50 == 0 {
					s.Stats()
				}
			}
		}(w)
	}
	wg.Wait()

	stats := s.Stats()
	if stats.Size > stats.MaxEntries {
		t.Errorf("size %d exceeds capacity %d", stats.Size, stats.MaxEntries)
	}
	if total := stats.Hits + stats.Misses; total != workers*rounds {
		t.Errorf("hits+misses = %d, want %d", total, workers*rounds)
	}
}

func BenchmarkGetHit(b *testing.B) {
	s := New[string, int](Options{MaxEntries: 1024})
	for i := 0; i < 1024; i++ {
		s.Set(fmt.Sprintf("key-%d", i), i)
	}

	b.ReportAllocs()
	i := 0
	for b.Loop() {
		s.Get(fmt.Sprintf("key-%d", i%1024))
		i++
	}
}

func BenchmarkSetWithEviction(b *testing.B) {
	s := New[int, int](Options{MaxEntries: 256})

	b.ReportAllocs()
	i := 0
	for b.Loop() {
		s.Set(i, i)
		i++
	}
}
