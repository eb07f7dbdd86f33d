package ecs

import (
	"reflect"

	"github.com/google/uuid"
)

// componentPool is the type-erased view of a [Pool] used by the World for
// operations that touch every component type, such as entity destruction.
type componentPool interface {
	remove(e Entity) bool
	clear()
}

// World is the top-level container. It owns entity identity, one [Pool] per
// component type, and the world-level notifications.
//
// The zero value is not usable - use NewWorld.
type World struct {
	id       uuid.UUID
	entities entityPool
	pools    map[reflect.Type]componentPool
	order    []componentPool // registration order, used on destroy

	destroyed Signal[func(Entity)]
	disposed  Signal[func()]

	isDisposed bool
}

// NewWorld creates an empty world with a fresh random identity.
func NewWorld() *World {
	return &World{
		id:       uuid.New(),
		entities: newEntityPool(),
		pools:    make(map[reflect.Type]componentPool),
	}
}

// ID returns the identity of the world. It is stable for the world's lifetime
// and is meant for logs and reports.
func (w *World) ID() uuid.UUID { return w.id }

// Create allocates a new entity with no components.
func (w *World) Create() Entity {
	return w.entities.create()
}

// Alive reports whether e refers to a live entity of this world.
func (w *World) Alive(e Entity) bool {
	return w.entities.isAlive(e)
}

// Len returns the number of live entities.
func (w *World) Len() int { return w.entities.alive }

// Destroy removes every component of e, publishing a removal for each, and
// then publishes the entity-destroyed notification. The entity is no longer
// alive while those notifications run. Destroying a stale or unknown entity
// is a no-op.
func (w *World) Destroy(e Entity) {
	if !w.entities.destroy(e) {
		return
	}
	for _, p := range w.order {
		p.remove(e)
	}
	w.destroyed.Emit(func(fn func(Entity)) { fn(e) })
}

// OnEntityDestroyed registers fn to run after an entity has been destroyed.
func (w *World) OnEntityDestroyed(fn func(Entity)) Subscription {
	return w.destroyed.Subscribe(fn)
}

// OnDisposed registers fn to run once when the world is disposed.
func (w *World) OnDisposed(fn func()) Subscription {
	return w.disposed.Subscribe(fn)
}

// Disposed reports whether Dispose has been called.
func (w *World) Disposed() bool { return w.isDisposed }

// Dispose publishes the disposed notification and then drops all component
// data and listeners. Calling Dispose more than once is a no-op.
func (w *World) Dispose() {
	if w.isDisposed {
		return
	}
	w.isDisposed = true
	w.disposed.Emit(func(fn func()) { fn() })

	for _, p := range w.order {
		p.clear()
	}
	w.destroyed.Clear()
	w.disposed.Clear()
}

// Components returns the pool for component type T, creating it on first use.
func Components[T any](w *World) *Pool[T] {
	t := reflect.TypeFor[T]()
	if p, ok := w.pools[t]; ok {
		return p.(*Pool[T])
	}
	p := newPool[T](w)
	w.pools[t] = p
	w.order = append(w.order, p)
	return p
}

// Set is shorthand for Components[T](w).Set(e, v).
func Set[T any](w *World, e Entity, v T) bool { return Components[T](w).Set(e, v) }

// Get is shorthand for Components[T](w).Get(e).
func Get[T any](w *World, e Entity) (T, bool) { return Components[T](w).Get(e) }

// Has is shorthand for Components[T](w).Has(e).
func Has[T any](w *World, e Entity) bool { return Components[T](w).Has(e) }

// Remove is shorthand for Components[T](w).Remove(e).
func Remove[T any](w *World, e Entity) bool { return Components[T](w).Remove(e) }

// Enable is shorthand for Components[T](w).Enable(e).
func Enable[T any](w *World, e Entity) bool { return Components[T](w).Enable(e) }

// Disable is shorthand for Components[T](w).Disable(e).
func Disable[T any](w *World, e Entity) bool { return Components[T](w).Disable(e) }
