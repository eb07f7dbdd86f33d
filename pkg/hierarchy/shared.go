package hierarchy

import (
	"sync"

	"github.com/matzehuels/arbor/pkg/ecs"
	"github.com/matzehuels/arbor/pkg/observability"
)

// sharedTree reference-counts one tree for all handles of a world.
//
// The count and the disposed flag are guarded by mu. Listener changes made
// through handles and the final close of the wrapped tree are serialized by
// subMu, so handles can be closed from several goroutines at once. The
// wrapped tree is closed exactly once, either when the count drops to zero
// or when the world is disposed.
type sharedTree struct {
	tree Tree
	id   treeID
	seq  int
	reg  *registry

	mu       sync.Mutex
	refs     int
	disposed bool

	subMu sync.Mutex
}

func (s *sharedTree) Parent(e ecs.Entity) (ecs.Entity, bool) { return s.tree.Parent(e) }

func (s *sharedTree) Children(parent ecs.Entity) ([]ecs.Entity, bool) {
	return s.tree.Children(parent)
}

func (s *sharedTree) Mark(e ecs.Entity)   { s.tree.Mark(e) }
func (s *sharedTree) Unmark(e ecs.Entity) { s.tree.Unmark(e) }

func (s *sharedTree) OnParentAdded(fn func(e ecs.Entity)) ecs.Subscription {
	return s.tree.OnParentAdded(fn)
}

func (s *sharedTree) OnParentRemoved(fn func(e ecs.Entity)) ecs.Subscription {
	return s.tree.OnParentRemoved(fn)
}

func (s *sharedTree) OnParentChanged(fn func(e, oldParent, newParent ecs.Entity)) ecs.Subscription {
	return s.tree.OnParentChanged(fn)
}

// Close gives up one reference.
func (s *sharedTree) Close() { s.release() }

// acquire adds a reference and returns the new count.
func (s *sharedTree) acquire() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return 0, ErrTreeDisposed
	}
	s.refs++
	return s.refs, nil
}

// release drops a reference. The call that brings the count to zero evicts
// the tree from its registry and closes it.
func (s *sharedTree) release() {
	s.mu.Lock()
	if s.disposed || s.refs == 0 {
		s.mu.Unlock()
		return
	}
	s.refs--
	refs := s.refs
	last := refs == 0
	if last {
		s.disposed = true
	}
	s.mu.Unlock()

	world, name := s.reg.world.ID().String(), s.id.String()
	observability.Tree().OnTreeReleased(world, name, refs)
	if !last {
		s.reg.logger.Debug("tree released", "world", world, "tree", name, "refs", refs)
		return
	}
	s.reg.evict(s)
	s.closeTree()
	observability.Tree().OnTreeDisposed(world, name)
	s.reg.logger.Debug("tree disposed", "world", world, "tree", name)
}

// dispose closes the tree regardless of outstanding references. It reports
// whether this call performed the close.
func (s *sharedTree) dispose() bool {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return false
	}
	s.disposed = true
	s.refs = 0
	s.mu.Unlock()

	s.closeTree()
	return true
}

func (s *sharedTree) closeTree() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.tree.Close()
}

func (s *sharedTree) count() (refs int, disposed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs, s.disposed
}

// Handle is one consumer's reference to a shared tree. It implements
// [Tree] by forwarding to the shared instance.
//
// Close releases the reference and cancels every subscription made through
// the handle. After Close, reads report nothing and writes are ignored.
type Handle struct {
	shared *sharedTree

	mu     sync.Mutex
	subs   ecs.Subscriptions
	once   sync.Once
	closed bool
}

func newHandle(s *sharedTree) *Handle {
	return &Handle{shared: s}
}

// Name identifies the shared tree, for example "keyed[scene.Transform]".
func (h *Handle) Name() string { return h.shared.id.String() }

// Parent returns the parent of e in this tree.
func (h *Handle) Parent(e ecs.Entity) (ecs.Entity, bool) {
	if h.isClosed() {
		return 0, false
	}
	return h.shared.Parent(e)
}

// Children returns a snapshot of the children of parent. The zero Entity
// selects the roots.
func (h *Handle) Children(parent ecs.Entity) ([]ecs.Entity, bool) {
	if h.isClosed() {
		return nil, false
	}
	return h.shared.Children(parent)
}

// Mark adds or recomputes the tree's marker on e.
func (h *Handle) Mark(e ecs.Entity) {
	if h.isClosed() {
		return
	}
	h.shared.Mark(e)
}

// Unmark removes the tree's marker from e.
func (h *Handle) Unmark(e ecs.Entity) {
	if h.isClosed() {
		return
	}
	h.shared.Unmark(e)
}

// OnParentAdded registers fn to run when an entity joins the tree.
func (h *Handle) OnParentAdded(fn func(e ecs.Entity)) ecs.Subscription {
	return h.track(func() ecs.Subscription { return h.shared.OnParentAdded(fn) })
}

// OnParentRemoved registers fn to run when an entity leaves the tree.
func (h *Handle) OnParentRemoved(fn func(e ecs.Entity)) ecs.Subscription {
	return h.track(func() ecs.Subscription { return h.shared.OnParentRemoved(fn) })
}

// OnParentChanged registers fn to run when the parent or order of an
// entity is rewritten. oldParent and newParent may be equal when only the
// order moved.
func (h *Handle) OnParentChanged(fn func(e, oldParent, newParent ecs.Entity)) ecs.Subscription {
	return h.track(func() ecs.Subscription { return h.shared.OnParentChanged(fn) })
}

// Close releases the handle's reference exactly once.
func (h *Handle) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		subs := h.subs
		h.subs = nil
		h.mu.Unlock()

		h.shared.subMu.Lock()
		subs.Unsubscribe()
		h.shared.subMu.Unlock()
		h.shared.release()
	})
}

func (h *Handle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Handle) track(subscribe func() ecs.Subscription) ecs.Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ecs.SubscriptionFunc(func() {})
	}
	h.shared.subMu.Lock()
	sub := subscribe()
	h.shared.subMu.Unlock()
	h.subs.Add(sub)
	return lockedSubscription{sub: sub, mu: &h.shared.subMu}
}

// lockedSubscription cancels a handle subscription under the shared tree's
// listener lock.
type lockedSubscription struct {
	sub ecs.Subscription
	mu  *sync.Mutex
}

func (l lockedSubscription) Unsubscribe() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sub.Unsubscribe()
}
