package ecs

import "slices"

// EntitySet tracks the entities that carry an enabled T and publishes membership
// changes.
type EntitySet[T any] struct {
	pool    *Pool[T]
	members map[Entity]struct{}
	added   Signal[func(Entity)]
	removed Signal[func(Entity)]
	subs    Subscriptions
}

// NewSet collects every entity that currently carries an enabled T and keeps
// the set current until Close is called.
func NewSet[T any](w *World) *EntitySet[T] {
	pool := Components[T](w)
	s := &EntitySet[T]{
		pool:    pool,
		members: make(map[Entity]struct{}),
	}

	s.subs.Add(pool.OnAdded(func(e Entity, _ T) { s.add(e) }))
	s.subs.Add(pool.OnEnabled(func(e Entity, _ T) { s.add(e) }))
	s.subs.Add(pool.OnRemoved(func(e Entity, _ T) { s.remove(e) }))
	s.subs.Add(pool.OnDisabled(func(e Entity, _ T) { s.remove(e) }))

	for _, e := range pool.Entities() {
		if pool.IsEnabled(e) {
			s.members[e] = struct{}{}
		}
	}
	return s
}

// Contains reports whether e is a member.
func (s *EntitySet[T]) Contains(e Entity) bool {
	_, ok := s.members[e]
	return ok
}

// Len returns the number of members.
func (s *EntitySet[T]) Len() int { return len(s.members) }

// Entities returns the members ordered by entity value.
func (s *EntitySet[T]) Entities() []Entity {
	out := make([]Entity, 0, len(s.members))
	for e := range s.members {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// OnEntityAdded registers fn to run after an entity joins the set.
func (s *EntitySet[T]) OnEntityAdded(fn func(Entity)) Subscription { return s.added.Subscribe(fn) }

// OnEntityRemoved registers fn to run after an entity leaves the set.
func (s *EntitySet[T]) OnEntityRemoved(fn func(Entity)) Subscription { return s.removed.Subscribe(fn) }

// Close stops tracking the pool, drops the members and all listeners.
// Close is idempotent.
func (s *EntitySet[T]) Close() {
	s.subs.Unsubscribe()
	s.added.Clear()
	s.removed.Clear()
	clear(s.members)
}

func (s *EntitySet[T]) add(e Entity) {
	if _, ok := s.members[e]; ok {
		return
	}
	s.members[e] = struct{}{}
	s.added.Emit(func(fn func(Entity)) { fn(e) })
}

func (s *EntitySet[T]) remove(e Entity) {
	if _, ok := s.members[e]; !ok {
		return
	}
	delete(s.members, e)
	s.removed.Emit(func(fn func(Entity)) { fn(e) })
}
