// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"fmt"
	"sync"
	"time"
)

// FakeClock is a manually controlled Clock for tests. Time stands
// still until the test calls Advance or Set. Safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Fake returns a FakeClock frozen at start.
func Fake(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Panics if d is negative: a
// test that needs time to run backward is testing the wrong thing.
func (c *FakeClock) Advance(d time.Duration) {
	if d < 0 {
		panic(fmt.Sprintf("clock: Advance by negative duration %v", d))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
