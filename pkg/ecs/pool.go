package ecs

import "slices"

// Pool stores the components of type T and publishes their changes.
//
// Obtain a pool with [Components]; pools are never created directly.
type Pool[T any] struct {
	world    *World
	values   map[Entity]T
	disabled map[Entity]struct{}

	added      Signal[func(Entity, T)]
	removed    Signal[func(Entity, T)]
	changed    Signal[func(Entity, T, T)]
	enabledSig Signal[func(Entity, T)]
	disableSig Signal[func(Entity, T)]
}

func newPool[T any](w *World) *Pool[T] {
	return &Pool[T]{
		world:    w,
		values:   make(map[Entity]T),
		disabled: make(map[Entity]struct{}),
	}
}

// Has reports whether e carries a T, enabled or not.
func (p *Pool[T]) Has(e Entity) bool {
	_, ok := p.values[e]
	return ok
}

// IsEnabled reports whether e carries an enabled T.
func (p *Pool[T]) IsEnabled(e Entity) bool {
	if _, ok := p.values[e]; !ok {
		return false
	}
	_, off := p.disabled[e]
	return !off
}

// Get returns the T of e, enabled or not.
func (p *Pool[T]) Get(e Entity) (T, bool) {
	v, ok := p.values[e]
	return v, ok
}

// Set stores v on e. The first Set publishes an added notification with the
// component enabled; later ones publish a changed notification carrying the
// previous value, regardless of whether the value differs. Set reports false
// and does nothing when e is not alive.
func (p *Pool[T]) Set(e Entity, v T) bool {
	if !p.world.Alive(e) {
		return false
	}
	old, exists := p.values[e]
	p.values[e] = v
	if !exists {
		p.added.Emit(func(fn func(Entity, T)) { fn(e, v) })
		return true
	}
	p.changed.Emit(func(fn func(Entity, T, T)) { fn(e, old, v) })
	return true
}

// Remove deletes the T of e and publishes a removed notification with the
// last value. It reports false when e has no T.
func (p *Pool[T]) Remove(e Entity) bool {
	return p.remove(e)
}

func (p *Pool[T]) remove(e Entity) bool {
	old, ok := p.values[e]
	if !ok {
		return false
	}
	delete(p.values, e)
	delete(p.disabled, e)
	p.removed.Emit(func(fn func(Entity, T)) { fn(e, old) })
	return true
}

// Enable re-enables a disabled T on e. It reports false, without publishing,
// when e has no T or the component is already enabled.
func (p *Pool[T]) Enable(e Entity) bool {
	v, ok := p.values[e]
	if !ok {
		return false
	}
	if _, off := p.disabled[e]; !off {
		return false
	}
	delete(p.disabled, e)
	p.enabledSig.Emit(func(fn func(Entity, T)) { fn(e, v) })
	return true
}

// Disable disables the T on e without removing it. It reports false, without
// publishing, when e has no T or the component is already disabled.
func (p *Pool[T]) Disable(e Entity) bool {
	v, ok := p.values[e]
	if !ok {
		return false
	}
	if _, off := p.disabled[e]; off {
		return false
	}
	p.disabled[e] = struct{}{}
	p.disableSig.Emit(func(fn func(Entity, T)) { fn(e, v) })
	return true
}

// Len returns the number of entities carrying a T, enabled or not.
func (p *Pool[T]) Len() int { return len(p.values) }

// Entities returns the entities carrying a T, enabled or not, ordered by
// entity value.
func (p *Pool[T]) Entities() []Entity {
	out := make([]Entity, 0, len(p.values))
	for e := range p.values {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// OnAdded registers fn to run after a T is added to an entity.
func (p *Pool[T]) OnAdded(fn func(Entity, T)) Subscription { return p.added.Subscribe(fn) }

// OnRemoved registers fn to run after a T is removed; fn receives the last value.
func (p *Pool[T]) OnRemoved(fn func(Entity, T)) Subscription { return p.removed.Subscribe(fn) }

// OnChanged registers fn to run after an existing T is overwritten.
func (p *Pool[T]) OnChanged(fn func(e Entity, old, cur T)) Subscription {
	return p.changed.Subscribe(fn)
}

// OnEnabled registers fn to run after a disabled T is enabled.
func (p *Pool[T]) OnEnabled(fn func(Entity, T)) Subscription { return p.enabledSig.Subscribe(fn) }

// OnDisabled registers fn to run after an enabled T is disabled.
func (p *Pool[T]) OnDisabled(fn func(Entity, T)) Subscription { return p.disableSig.Subscribe(fn) }

func (p *Pool[T]) clear() {
	p.values = make(map[Entity]T)
	p.disabled = make(map[Entity]struct{})
	p.added.Clear()
	p.removed.Clear()
	p.changed.Clear()
	p.enabledSig.Clear()
	p.disableSig.Clear()
}
