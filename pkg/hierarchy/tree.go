package hierarchy

import (
	"errors"

	"github.com/matzehuels/arbor/pkg/ecs"
)

var (
	// ErrTreeDisposed is returned when a reference is requested on a shared
	// tree that has already been torn down.
	ErrTreeDisposed = errors.New("tree already disposed")

	// ErrWorldDisposed is returned by [Base], [Keyed], [Scoped], and [Use]
	// when the world has been disposed. No tree can be acquired afterwards.
	ErrWorldDisposed = errors.New("world already disposed")
)

// ParentMarker declares the base parent of the entity it is attached to.
// A zero Parent makes the entity a root.
type ParentMarker struct {
	Parent ecs.Entity
}

// Key is the keyed position of an entity in the tree for marker type K.
//
// The engine attaches a Key[K] to every entity carrying K. Parent is the
// nearest strict base ancestor that also carries K (zero when there is none)
// and Order is the parent's Order + 1, or 0 for keyed roots. Keys are indexed
// by Parent only; Order does not take part in identity.
type Key[K any] struct {
	Parent ecs.Entity
	Order  int
}

// Tree is a read model of a parent/child relation plus the notifications
// that keep consumers in step with it.
//
// Children of the zero Entity are the roots. Children returns a snapshot and
// reports false, not an error, when there are none.
type Tree interface {
	Parent(e ecs.Entity) (ecs.Entity, bool)
	Children(parent ecs.Entity) ([]ecs.Entity, bool)

	// Mark adds or recomputes the tree's marker on e.
	Mark(e ecs.Entity)
	// Unmark removes the tree's marker from e. Unmarking an entity without a
	// marker is a no-op.
	Unmark(e ecs.Entity)

	OnParentAdded(fn func(e ecs.Entity)) ecs.Subscription
	OnParentRemoved(fn func(e ecs.Entity)) ecs.Subscription
	OnParentChanged(fn func(e, oldParent, newParent ecs.Entity)) ecs.Subscription

	// Close releases the tree. Closing more than once is a no-op.
	Close()
}

// events carries the three tree notifications. Tree implementations embed it.
type events struct {
	added   ecs.Signal[func(ecs.Entity)]
	removed ecs.Signal[func(ecs.Entity)]
	changed ecs.Signal[func(e, oldParent, newParent ecs.Entity)]
}

func (ev *events) OnParentAdded(fn func(e ecs.Entity)) ecs.Subscription {
	return ev.added.Subscribe(fn)
}

func (ev *events) OnParentRemoved(fn func(e ecs.Entity)) ecs.Subscription {
	return ev.removed.Subscribe(fn)
}

func (ev *events) OnParentChanged(fn func(e, oldParent, newParent ecs.Entity)) ecs.Subscription {
	return ev.changed.Subscribe(fn)
}

func (ev *events) emitAdded(e ecs.Entity) {
	ev.added.Emit(func(fn func(ecs.Entity)) { fn(e) })
}

func (ev *events) emitRemoved(e ecs.Entity) {
	ev.removed.Emit(func(fn func(ecs.Entity)) { fn(e) })
}

func (ev *events) emitChanged(e, oldParent, newParent ecs.Entity) {
	ev.changed.Emit(func(fn func(ecs.Entity, ecs.Entity, ecs.Entity)) { fn(e, oldParent, newParent) })
}

func (ev *events) clear() {
	ev.added.Clear()
	ev.removed.Clear()
	ev.changed.Clear()
}
