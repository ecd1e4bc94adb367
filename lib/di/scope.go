// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package di

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sync"
)

// scopeEntry caches one scoped instance. The per-entry lock gives the
// same at-most-once guarantee as singleton registrations without
// holding the scope lock while the factory runs.
type scopeEntry struct {
	mu       sync.Mutex
	instance any
	created  bool
}

// Scope is a resolution boundary for scoped registrations. Each scope
// resolves its own instances from the container's shared factories;
// closing the scope discards them. Scopes, nested or sequential, are
// fully independent of each other.
type Scope struct {
	container *Container

	mu      sync.Mutex
	closed  bool
	entries map[reflect.Type]*scopeEntry
}

// NewScope opens a new scope against the container.
func (c *Container) NewScope() *Scope {
	return &Scope{
		container: c,
		entries:   make(map[reflect.Type]*scopeEntry),
	}
}

// WithScope runs fn with a fresh scope and closes it on every path,
// panics included. Close errors are joined onto fn's error.
func (c *Container) WithScope(fn func(*Scope) error) (err error) {
	scope := c.NewScope()
	defer func() {
		if closeErr := scope.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(scope)
}

// resolve implements Resolver: scoped types resolve against this
// scope's instances; singletons and transients delegate to the
// container so the lifetime semantics do not depend on the resolution
// route.
func (s *Scope) resolve(t reflect.Type) (any, error) {
	reg, ok := s.container.lookup(t)
	if !ok {
		return nil, fmt.Errorf("resolving %s: %w", t, errNotRegistered)
	}
	if reg.lifetime != Scoped {
		return s.container.resolveRegistration(t, reg)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("resolving %s on closed scope: %w", t, os.ErrClosed)
	}
	entry, ok := s.entries[t]
	if !ok {
		entry = &scopeEntry{}
		s.entries[t] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if !entry.created {
		entry.instance = reg.factory()
		entry.created = true
	}
	return entry.instance, nil
}

// Close discards the scope's instances, calling Close on any that
// implement io.Closer and joining their errors. Close is idempotent;
// resolving a scoped type afterwards fails with an error wrapping
// os.ErrClosed.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	entries := s.entries
	s.entries = nil
	s.mu.Unlock()

	var errs []error
	for t, entry := range entries {
		entry.mu.Lock()
		instance, created := entry.instance, entry.created
		entry.mu.Unlock()
		if !created {
			continue
		}
		if closer, ok := instance.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing scoped %s: %w", t, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close discards every registration and closes created singleton
// instances that implement io.Closer, joining their errors. Resolving
// anything afterwards fails with [IsNotRegistered]. Scopes already
// open keep their own instances; close them separately.
func (c *Container) Close() error {
	c.mu.Lock()
	registrations := c.registrations
	c.registrations = make(map[reflect.Type]*registration)
	c.mu.Unlock()

	var errs []error
	for t, reg := range registrations {
		if reg.lifetime != Singleton {
			continue
		}
		reg.mu.Lock()
		instance, created := reg.instance, reg.created
		reg.mu.Unlock()
		if !created {
			continue
		}
		if closer, ok := instance.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing singleton %s: %w", t, err))
			}
		}
	}
	return errors.Join(errs...)
}
