// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package di

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Lifetime controls how often a registered factory runs.
type Lifetime int

const (
	// Transient runs the factory on every resolution.
	Transient Lifetime = iota

	// Singleton runs the factory at most once per container and
	// serves the same instance thereafter.
	Singleton

	// Scoped runs the factory at most once per scope; distinct
	// scopes get distinct instances from the shared factory.
	Scoped
)

// String returns the lowercase lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Singleton:
		return "singleton"
	case Scoped:
		return "scoped"
	default:
		return fmt.Sprintf("Lifetime(%d)", int(l))
	}
}

var (
	errNotRegistered = errors.New("type not registered")
	errScopeRequired = errors.New("scoped type requires a scope")
)

// IsNotRegistered reports whether err indicates a resolution of a
// type with no registration.
func IsNotRegistered(err error) bool {
	return errors.Is(err, errNotRegistered)
}

// IsScopeRequired reports whether err indicates a scoped type
// resolved through the bare container instead of a scope.
func IsScopeRequired(err error) bool {
	return errors.Is(err, errScopeRequired)
}

// registration binds one type to a factory under a lifetime. For
// singletons, instance/created cache the first resolution; the
// per-registration lock means concurrent resolvers block on the first
// without holding the container lock while the factory runs.
type registration struct {
	lifetime Lifetime
	factory  func() any

	mu       sync.Mutex
	instance any
	created  bool
}

// resolveOnce returns the singleton instance, running the factory on
// the first call.
func (r *registration) resolveOnce() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.created {
		r.instance = r.factory()
		r.created = true
	}
	return r.instance
}

// Resolver resolves registered types. *Container and *Scope are the
// two implementations; pass whichever matches the lifetime you need.
type Resolver interface {
	resolve(t reflect.Type) (any, error)
}

// Container holds registrations and singleton instances. The zero
// value is not usable; create one with New. All methods are safe for
// concurrent use.
type Container struct {
	mu            sync.RWMutex
	registrations map[reflect.Type]*registration
}

// New creates an empty container.
func New() *Container {
	return &Container{
		registrations: make(map[reflect.Type]*registration),
	}
}

// RegisterSingleton registers factory for T with singleton lifetime.
// Re-registering a type replaces its previous registration; an
// already-created singleton instance from the old registration is
// dropped.
func RegisterSingleton[T any](c *Container, factory func() T) {
	c.register(typeOf[T](), Singleton, wrap(factory))
}

// RegisterTransient registers factory for T with transient lifetime.
func RegisterTransient[T any](c *Container, factory func() T) {
	c.register(typeOf[T](), Transient, wrap(factory))
}

// RegisterScoped registers factory for T with scoped lifetime.
func RegisterScoped[T any](c *Container, factory func() T) {
	c.register(typeOf[T](), Scoped, wrap(factory))
}

// RegisterInstance registers an existing value as the singleton for
// T. The factory never runs; resolutions return value directly.
func RegisterInstance[T any](c *Container, value T) {
	reg := &registration{
		lifetime: Singleton,
		instance: value,
		created:  true,
	}
	c.put(typeOf[T](), reg)
}

// Registered reports whether T has a registration.
func Registered[T any](c *Container) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.registrations[typeOf[T]()]
	return ok
}

// Resolve returns the instance of T from r under T's registered
// lifetime. Failures are classifiable with [IsNotRegistered] and
// [IsScopeRequired].
func Resolve[T any](r Resolver) (T, error) {
	v, err := r.resolve(typeOf[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// MustResolve is Resolve for wiring paths where a missing
// registration is a programming error. It panics on failure.
func MustResolve[T any](r Resolver) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic("di: " + err.Error())
	}
	return v
}

func (c *Container) register(t reflect.Type, lifetime Lifetime, factory func() any) {
	c.put(t, &registration{lifetime: lifetime, factory: factory})
}

func (c *Container) put(t reflect.Type, reg *registration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registrations[t] = reg
}

func (c *Container) lookup(t reflect.Type) (*registration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reg, ok := c.registrations[t]
	return reg, ok
}

// resolve implements Resolver for the bare container: singletons and
// transients resolve; scoped types need a Scope.
func (c *Container) resolve(t reflect.Type) (any, error) {
	reg, ok := c.lookup(t)
	if !ok {
		return nil, fmt.Errorf("resolving %s: %w", t, errNotRegistered)
	}
	return c.resolveRegistration(t, reg)
}

func (c *Container) resolveRegistration(t reflect.Type, reg *registration) (any, error) {
	switch reg.lifetime {
	case Singleton:
		return reg.resolveOnce(), nil
	case Transient:
		return reg.factory(), nil
	case Scoped:
		return nil, fmt.Errorf("resolving %s: %w", t, errScopeRequired)
	default:
		return nil, fmt.Errorf("resolving %s: unknown lifetime %d", t, reg.lifetime)
	}
}

// typeOf returns the reflect.Type for T, including interface types
// (reflect.TypeOf on an interface value would yield the dynamic type
// instead).
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// wrap erases the factory's return type for storage.
func wrap[T any](factory func() T) func() any {
	return func() any { return factory() }
}
