package hierarchy

import (
	"cmp"
	"slices"

	"github.com/matzehuels/arbor/pkg/ecs"
)

// keyedTree maintains a Key[K] on every entity carrying K and indexes the
// keys by parent.
//
// Recomputation is local: an entity's key is derived from its nearest
// K-carrying base ancestor, and changes flow to descendants through the
// cascade queue one level at a time.
type keyedTree[K any] struct {
	events

	world *ecs.World
	base  Tree
	marks *ecs.Pool[K]
	keys  *ecs.Pool[Key[K]]
	index *ecs.MultiMap[Key[K], ecs.Entity]
	work  *cascade
	subs  ecs.Subscriptions
}

// newKeyedTree takes ownership of base and closes it with the tree.
func newKeyedTree[K any](w *ecs.World, base Tree, work *cascade) *keyedTree[K] {
	marks, keys := ecs.Components[K](w), ecs.Components[Key[K]](w)

	// keys outlive a closed tree; drop those whose marker went away since
	for _, e := range keys.Entities() {
		if !marks.Has(e) {
			keys.Remove(e)
		}
	}

	t := &keyedTree[K]{
		world: w,
		base:  base,
		marks: marks,
		keys:  keys,
		index: ecs.NewMultiMap(w, func(k Key[K]) ecs.Entity { return k.Parent }),
		work:  work,
	}

	t.subs.Add(base.OnParentAdded(t.relink))
	t.subs.Add(base.OnParentRemoved(t.relink))
	t.subs.Add(base.OnParentChanged(func(e, _, _ ecs.Entity) { t.relink(e) }))

	t.subs.Add(t.marks.OnAdded(t.markerAdded))
	t.subs.Add(t.marks.OnRemoved(func(e ecs.Entity, _ K) { t.Unmark(e) }))
	t.subs.Add(t.marks.OnEnabled(func(e ecs.Entity, _ K) { t.turnOn(e) }))
	t.subs.Add(t.marks.OnDisabled(func(e ecs.Entity, _ K) { t.turnOff(e) }))

	t.subs.Add(t.keys.OnAdded(t.keyAdded))
	t.subs.Add(t.keys.OnChanged(t.keyChanged))
	t.subs.Add(t.keys.OnRemoved(t.keyRemoved))

	// ancestors first, so every parent has its key before its children ask
	// for its order
	marked := t.marks.Entities()
	depth := make(map[ecs.Entity]int, len(marked))
	for _, e := range marked {
		depth[e] = Depth(w, e)
	}
	slices.SortStableFunc(marked, func(a, b ecs.Entity) int { return cmp.Compare(depth[a], depth[b]) })
	for _, e := range marked {
		t.Mark(e)
	}
	return t
}

func (t *keyedTree[K]) Parent(e ecs.Entity) (ecs.Entity, bool) {
	k, ok := t.keys.Get(e)
	if !ok || k.Parent.IsZero() {
		return 0, false
	}
	return k.Parent, true
}

func (t *keyedTree[K]) Children(parent ecs.Entity) ([]ecs.Entity, bool) {
	return t.index.Get(parent)
}

// Mark computes the key of e from its nearest K-carrying base ancestor and
// stores it. Storing an identical key is skipped.
func (t *keyedTree[K]) Mark(e ecs.Entity) {
	if !t.world.Alive(e) {
		return
	}
	next := t.resolve(e)
	if cur, ok := t.keys.Get(e); ok && cur == next {
		return
	}
	t.keys.Set(e, next)
}

func (t *keyedTree[K]) Unmark(e ecs.Entity) {
	t.keys.Remove(e)
}

func (t *keyedTree[K]) Close() {
	t.subs.Unsubscribe()
	t.index.Close()
	t.events.clear()
	t.base.Close()
}

func (t *keyedTree[K]) resolve(e ecs.Entity) Key[K] {
	parent, ok := findAncestor(t.world, e, t.marks.Has)
	if !ok {
		return Key[K]{}
	}
	pk, ok := t.keys.Get(parent)
	if !ok {
		t.Mark(parent)
		pk, ok = t.keys.Get(parent)
		if !ok {
			return Key[K]{Parent: parent}
		}
	}
	return Key[K]{Parent: parent, Order: pk.Order + 1}
}

// relink recomputes the keys below e after its base parent moved. The walk
// stops at entities carrying K: their own descendants resolve to them, and
// any order shift reaches them through renumbering.
func (t *keyedTree[K]) relink(e ecs.Entity) {
	if !t.world.Alive(e) {
		return
	}
	t.work.push(func() {
		stack := []ecs.Entity{e}
		for steps := 0; len(stack) > 0 && steps <= t.world.Len(); steps++ {
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if t.keys.Has(x) {
				t.work.touch("relink")
				t.Mark(x)
			}
			if t.marks.Has(x) {
				continue
			}
			children, _ := t.base.Children(x)
			stack = append(stack, children...)
		}
	})
}

// turnOn enables keys across the whole base subtree of e and recomputes the
// ones that went stale while disabled.
func (t *keyedTree[K]) turnOn(e ecs.Entity) {
	t.work.push(func() {
		stack, _ := t.base.Children(e)
		for steps := 0; len(stack) > 0 && steps <= t.world.Len(); steps++ {
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if t.keys.Enable(x) {
				t.work.touch("enable")
			}
			if t.keys.Has(x) {
				t.Mark(x)
			}
			children, _ := t.base.Children(x)
			stack = append(stack, children...)
		}
	})
}

// turnOff disables keys across the keyed subtree of e.
func (t *keyedTree[K]) turnOff(e ecs.Entity) {
	t.work.push(func() {
		stack, _ := t.index.Get(e)
		for steps := 0; len(stack) > 0 && steps <= t.world.Len(); steps++ {
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if t.keys.Disable(x) {
				t.work.touch("disable")
			}
			children, _ := t.index.Get(x)
			stack = append(stack, children...)
		}
	})
}

// markerAdded keys e. An entity keyed before it carried K, as a scoped
// member, keeps an identical key, so adoption is queued here rather than
// from keyAdded.
func (t *keyedTree[K]) markerAdded(e ecs.Entity, _ K) {
	keyed := t.keys.Has(e)
	t.Mark(e)
	if keyed {
		t.work.push(func() { t.adoptSiblings(e) })
	}
}

func (t *keyedTree[K]) keyAdded(e ecs.Entity, _ Key[K]) {
	t.emitAdded(e)
	t.work.push(func() { t.adoptSiblings(e) })
}

func (t *keyedTree[K]) keyChanged(e ecs.Entity, old, cur Key[K]) {
	t.emitChanged(e, old.Parent, cur.Parent)
	t.work.push(func() { t.renumber(e) })
}

func (t *keyedTree[K]) keyRemoved(e ecs.Entity, last Key[K]) {
	t.emitRemoved(e)
	t.work.push(func() { t.reparent(e, last) })
}

// adoptSiblings moves onto e the entities indexed beside it that now resolve
// to e. They were linked to e's parent before e received its key.
func (t *keyedTree[K]) adoptSiblings(e ecs.Entity) {
	cur, ok := t.keys.Get(e)
	if !ok {
		return
	}
	siblings, _ := t.index.Get(cur.Parent)
	next := Key[K]{Parent: e, Order: cur.Order + 1}
	for _, s := range siblings {
		if s == e {
			continue
		}
		if p, ok := findAncestor(t.world, s, t.marks.Has); !ok || p != e {
			continue
		}
		t.work.touch("adopt")
		t.keys.Set(s, next)
	}
}

// renumber rewrites the direct keyed children of e with e's current order.
// Each rewrite is itself a change, so the next level is queued behind it.
func (t *keyedTree[K]) renumber(e ecs.Entity) {
	cur, ok := t.keys.Get(e)
	if !ok {
		return
	}
	children, _ := t.index.Get(e)
	next := Key[K]{Parent: e, Order: cur.Order + 1}
	for _, c := range children {
		if k, _ := t.keys.Get(c); k == next {
			continue
		}
		t.work.touch("renumber")
		t.keys.Set(c, next)
	}
}

// reparent hands the keyed children of e to e's former parent. Their order
// is taken from that parent's current key rather than from e's old order.
func (t *keyedTree[K]) reparent(e ecs.Entity, last Key[K]) {
	if t.keys.Has(e) {
		t.renumber(e)
		return
	}
	children, ok := t.index.Get(e)
	if !ok {
		return
	}
	next := Key[K]{Parent: last.Parent}
	if !last.Parent.IsZero() {
		next.Order = last.Order
		if pk, ok := t.keys.Get(last.Parent); ok {
			next.Order = pk.Order + 1
		}
	}
	for _, c := range children {
		t.work.touch("reparent")
		t.keys.Set(c, next)
	}
}
