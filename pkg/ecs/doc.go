// Package ecs provides a small sparse entity/component store with synchronous
// change notifications.
//
// # Overview
//
// A [World] owns entity identity and one typed [Pool] per component type.
// Every mutation of a pool publishes a notification before returning, so
// listeners observe the store in the same call stack that changed it:
//
//	w := ecs.NewWorld()
//	e := w.Create()
//	ecs.Components[Position](w).OnAdded(func(e ecs.Entity, p Position) {
//	    // runs inside Set
//	})
//	ecs.Set(w, e, Position{X: 1})
//
// # Entities
//
// [Entity] is a generational handle. Destroying an entity bumps the
// generation of its slot, so stale handles never resolve to a recycled
// entity. The zero Entity never refers to a live entity and is used as the
// "no entity" value by packages built on top of the store.
//
// # Components
//
// Components are plain Go values. A component can be disabled without being
// removed: [Pool.Has] still reports it, but indexes ([MultiMap], [EntitySet]) drop
// the entity until the component is enabled again.
//
// # Indexes
//
// [MultiMap] groups entities by a key derived from a component value (for
// example "all entities whose parent is X"). [EntitySet] tracks all entities that
// carry an enabled component and publishes membership changes.
//
// # Concurrency
//
// A World is driven by a single goroutine. Notifications are delivered
// synchronously and may re-enter the store. None of the types in this
// package are safe for concurrent use without external synchronization.
package ecs
