package ecs

import "slices"

// Subscription cancels a listener registration.
// Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a plain function to [Subscription].
// The function may be called more than once; make it idempotent.
type SubscriptionFunc func()

// Unsubscribe calls f.
func (f SubscriptionFunc) Unsubscribe() { f() }

// Subscriptions collects subscriptions so they can be cancelled together.
// The zero value is ready to use.
type Subscriptions []Subscription

// Add appends sub. Nil subscriptions are ignored.
func (s *Subscriptions) Add(sub Subscription) {
	if sub != nil {
		*s = append(*s, sub)
	}
}

// Unsubscribe cancels every collected subscription in reverse order of
// registration and empties the collection.
func (s *Subscriptions) Unsubscribe() {
	subs := *s
	*s = nil
	for i := len(subs) - 1; i >= 0; i-- {
		subs[i].Unsubscribe()
	}
}

type listener[F any] struct {
	fn     F
	active bool
}

// Signal is an ordered list of listeners of function type F.
//
// Listeners run in registration order. A listener removed while an emission
// is in progress is not called for the remainder of that emission; a
// listener added during an emission is first called on the next one.
// The zero value is ready to use.
type Signal[F any] struct {
	listeners []*listener[F]
}

// Subscribe registers fn and returns the subscription that removes it.
func (s *Signal[F]) Subscribe(fn F) Subscription {
	l := &listener[F]{fn: fn, active: true}
	s.listeners = append(s.listeners, l)
	return SubscriptionFunc(func() {
		if !l.active {
			return
		}
		l.active = false
		s.listeners = slices.DeleteFunc(s.listeners, func(x *listener[F]) bool { return x == l })
	})
}

// Emit invokes call once per active listener.
func (s *Signal[F]) Emit(call func(F)) {
	if len(s.listeners) == 0 {
		return
	}
	for _, l := range slices.Clone(s.listeners) {
		if l.active {
			call(l.fn)
		}
	}
}

// Len returns the number of registered listeners.
func (s *Signal[F]) Len() int { return len(s.listeners) }

// Clear removes every listener.
func (s *Signal[F]) Clear() {
	for _, l := range s.listeners {
		l.active = false
	}
	s.listeners = nil
}
