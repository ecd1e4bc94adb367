// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

// Package di is a small dependency container with three lifetimes.
//
// A [Container] maps types to factories. Registration is done through
// the package-level generic functions ([RegisterSingleton],
// [RegisterTransient], [RegisterScoped]); resolution through
// [Resolve] against a [Resolver], which both *Container and *Scope
// implement:
//
//	c := di.New()
//	di.RegisterSingleton(c, func() *assetfile.Archive { ... })
//	archive, err := di.Resolve[*assetfile.Archive](c)
//
// Lifetimes: a Singleton factory runs at most once per container, a
// Transient factory runs on every resolution, and a Scoped factory
// runs at most once per [Scope]. Resolving a scoped type through the
// bare container fails ([IsScopeRequired]); open a scope with
// [Container.NewScope] or [Container.WithScope]. Scopes are
// independent of each other, nested or not, and discard their
// instances on Close.
//
// The container lock is never held while a factory runs, so a factory
// may resolve other registrations. A registration cycle (a factory
// that directly or indirectly resolves its own type) deadlocks.
package di
