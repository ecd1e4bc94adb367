// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Cache expiry in this codebase is checked against the current time on
// access, never by a scheduled timer, so the only operation components
// need is Now. Production code injects Real(); tests inject Fake() and
// advance it deterministically instead of sleeping.
package clock

import "time"

// Clock is a source of the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the system clock.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
