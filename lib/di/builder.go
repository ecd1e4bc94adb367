// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package di

// Builder accumulates registrations and hands back the configured
// container. It is sugar over direct registration, not a different
// mechanism: AddSingleton(b, f) and RegisterSingleton(b.Build(), f)
// produce identical containers.
type Builder struct {
	container *Container
}

// NewBuilder starts a builder over a fresh container.
func NewBuilder() *Builder {
	return &Builder{container: New()}
}

// AddSingleton registers factory for T with singleton lifetime and
// returns the builder for chaining.
func AddSingleton[T any](b *Builder, factory func() T) *Builder {
	RegisterSingleton(b.container, factory)
	return b
}

// AddTransient registers factory for T with transient lifetime and
// returns the builder for chaining.
func AddTransient[T any](b *Builder, factory func() T) *Builder {
	RegisterTransient(b.container, factory)
	return b
}

// AddScoped registers factory for T with scoped lifetime and returns
// the builder for chaining.
func AddScoped[T any](b *Builder, factory func() T) *Builder {
	RegisterScoped(b.container, factory)
	return b
}

// AddInstance registers an existing value as the singleton for T and
// returns the builder for chaining.
func AddInstance[T any](b *Builder, value T) *Builder {
	RegisterInstance(b.container, value)
	return b
}

// Build returns the configured container. The builder can keep
// registering afterwards; it always operates on the same container.
func (b *Builder) Build() *Container {
	return b.container
}
