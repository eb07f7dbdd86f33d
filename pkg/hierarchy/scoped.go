package hierarchy

import (
	"github.com/matzehuels/arbor/pkg/ecs"
)

// scopedTree is the keyed tree for K restricted to entities carrying C.
// Reads and notifications come straight from the keyed tree; only the
// membership of C drives writes.
type scopedTree[C, K any] struct {
	Tree // keyed tree handle

	world   *ecs.World
	members *ecs.EntitySet[C]
	marks   *ecs.Pool[K]
	subs    ecs.Subscriptions
}

// newScopedTree takes ownership of keyed and closes it with the tree.
func newScopedTree[C, K any](w *ecs.World, keyed Tree) *scopedTree[C, K] {
	t := &scopedTree[C, K]{
		Tree:    keyed,
		world:   w,
		members: ecs.NewSet[C](w),
		marks:   ecs.Components[K](w),
	}

	t.subs.Add(t.members.OnEntityAdded(t.Mark))
	t.subs.Add(t.members.OnEntityRemoved(func(e ecs.Entity) {
		// K's own lifecycle governs entities that carry it
		if t.marks.Has(e) {
			return
		}
		t.Unmark(e)
	}))
	// the keyed tree drops the key with K; a member still needs one
	t.subs.Add(t.marks.OnRemoved(func(e ecs.Entity, _ K) {
		if t.members.Contains(e) {
			t.Mark(e)
		}
	}))

	for _, e := range t.members.Entities() {
		t.Mark(e)
	}
	return t
}

// Close drops the keys of members that do not carry K before releasing the
// keyed tree.
func (t *scopedTree[C, K]) Close() {
	t.subs.Unsubscribe()
	if !t.world.Disposed() {
		for _, e := range t.members.Entities() {
			if !t.marks.Has(e) {
				t.Unmark(e)
			}
		}
	}
	t.members.Close()
	t.Tree.Close()
}
