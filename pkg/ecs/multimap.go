package ecs

import "slices"

type slot[K comparable] struct {
	key K
	pos int
}

// MultiMap groups the entities carrying an enabled T by a key derived from
// the component value. Entities whose T is disabled are not indexed.
//
// Order inside a bucket is not meaningful: removals swap the last entry into
// the freed position.
type MultiMap[T any, K comparable] struct {
	pool    *Pool[T]
	keyOf   func(T) K
	buckets map[K][]Entity
	slots   map[Entity]slot[K]
	subs    Subscriptions
}

// NewMultiMap indexes every entity that currently carries an enabled T and
// keeps the index current until Close is called.
func NewMultiMap[T any, K comparable](w *World, keyOf func(T) K) *MultiMap[T, K] {
	pool := Components[T](w)
	m := &MultiMap[T, K]{
		pool:    pool,
		keyOf:   keyOf,
		buckets: make(map[K][]Entity),
		slots:   make(map[Entity]slot[K]),
	}

	m.subs.Add(pool.OnAdded(func(e Entity, v T) { m.insert(e, v) }))
	m.subs.Add(pool.OnEnabled(func(e Entity, v T) { m.insert(e, v) }))
	m.subs.Add(pool.OnRemoved(func(e Entity, _ T) { m.delete(e) }))
	m.subs.Add(pool.OnDisabled(func(e Entity, _ T) { m.delete(e) }))
	m.subs.Add(pool.OnChanged(func(e Entity, _, v T) {
		if !pool.IsEnabled(e) {
			return
		}
		if s, ok := m.slots[e]; ok && s.key == keyOf(v) {
			return
		}
		m.delete(e)
		m.insert(e, v)
	}))

	for _, e := range pool.Entities() {
		if v, _ := pool.Get(e); pool.IsEnabled(e) {
			m.insert(e, v)
		}
	}
	return m
}

// Get returns a copy of the entities indexed under key, and false when there
// are none.
func (m *MultiMap[T, K]) Get(key K) ([]Entity, bool) {
	b := m.buckets[key]
	if len(b) == 0 {
		return nil, false
	}
	return slices.Clone(b), true
}

// Count returns the number of entities indexed under key.
func (m *MultiMap[T, K]) Count(key K) int { return len(m.buckets[key]) }

// Len returns the number of indexed entities.
func (m *MultiMap[T, K]) Len() int { return len(m.slots) }

// Close stops tracking the pool and drops the index. Close is idempotent.
func (m *MultiMap[T, K]) Close() {
	m.subs.Unsubscribe()
	clear(m.buckets)
	clear(m.slots)
}

func (m *MultiMap[T, K]) insert(e Entity, v T) {
	if _, ok := m.slots[e]; ok {
		return
	}
	k := m.keyOf(v)
	m.slots[e] = slot[K]{key: k, pos: len(m.buckets[k])}
	m.buckets[k] = append(m.buckets[k], e)
}

func (m *MultiMap[T, K]) delete(e Entity) {
	s, ok := m.slots[e]
	if !ok {
		return
	}
	delete(m.slots, e)

	b := m.buckets[s.key]
	last := len(b) - 1
	if s.pos != last {
		moved := b[last]
		b[s.pos] = moved
		m.slots[moved] = slot[K]{key: s.key, pos: s.pos}
	}
	b = b[:last]
	if len(b) == 0 {
		delete(m.buckets, s.key)
		return
	}
	m.buckets[s.key] = b
}
