package hierarchy

import (
	"github.com/matzehuels/arbor/pkg/ecs"
)

// baseTree indexes entities by their ParentMarker and cascades entity
// destruction down the base hierarchy.
type baseTree struct {
	events

	world   *ecs.World
	parents *ecs.Pool[ParentMarker]
	index   *ecs.MultiMap[ParentMarker, ecs.Entity]
	work    *cascade
	subs    ecs.Subscriptions
}

func newBaseTree(w *ecs.World, work *cascade) *baseTree {
	t := &baseTree{
		world:   w,
		parents: ecs.Components[ParentMarker](w),
		index:   ecs.NewMultiMap(w, func(m ParentMarker) ecs.Entity { return m.Parent }),
		work:    work,
	}

	t.subs.Add(w.OnEntityDestroyed(t.destroyChildren))
	t.subs.Add(t.parents.OnAdded(func(e ecs.Entity, _ ParentMarker) { t.Mark(e) }))
	t.subs.Add(t.parents.OnChanged(func(e ecs.Entity, old, cur ParentMarker) {
		t.emitChanged(e, old.Parent, cur.Parent)
	}))
	t.subs.Add(t.parents.OnRemoved(func(e ecs.Entity, _ ParentMarker) { t.Unmark(e) }))
	return t
}

// Parent returns the ParentMarker parent of e when that parent is itself
// part of the base tree.
func (t *baseTree) Parent(e ecs.Entity) (ecs.Entity, bool) {
	m, ok := t.parents.Get(e)
	if !ok || m.Parent.IsZero() {
		return 0, false
	}
	if !t.parents.Has(m.Parent) {
		return 0, false
	}
	return m.Parent, true
}

func (t *baseTree) Children(parent ecs.Entity) ([]ecs.Entity, bool) {
	return t.index.Get(parent)
}

func (t *baseTree) Mark(e ecs.Entity)   { t.emitAdded(e) }
func (t *baseTree) Unmark(e ecs.Entity) { t.emitRemoved(e) }

func (t *baseTree) Close() {
	t.subs.Unsubscribe()
	t.index.Close()
	t.events.clear()
}

func (t *baseTree) destroyChildren(e ecs.Entity) {
	children, ok := t.index.Get(e)
	if !ok {
		return
	}
	t.work.push(func() {
		for _, child := range children {
			// skip children reparented since the snapshot
			if m, ok := t.parents.Get(child); !ok || m.Parent != e {
				continue
			}
			t.work.touch("destroy")
			t.world.Destroy(child)
		}
	})
}
