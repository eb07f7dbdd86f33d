package hierarchy

import (
	"github.com/matzehuels/arbor/pkg/ecs"
)

// SetParent attaches child to parent in the base hierarchy. A zero parent
// makes child a root.
//
// SetParent reports false and leaves the world unchanged when child already
// has that parent, when parent is not alive, or when the link would create a
// cycle (parent is child or one of its descendants).
func SetParent(w *ecs.World, child, parent ecs.Entity) bool {
	parents := ecs.Components[ParentMarker](w)
	if m, ok := parents.Get(child); ok && m.Parent == parent {
		return false
	}
	if !parent.IsZero() {
		if !w.Alive(parent) || parent == child || IsAncestor(w, parent, child) {
			return false
		}
	}
	return parents.Set(child, ParentMarker{Parent: parent})
}

// ParentOf returns the base parent declared on e.
func ParentOf(w *ecs.World, e ecs.Entity) (ecs.Entity, bool) {
	m, ok := ecs.Get[ParentMarker](w, e)
	if !ok || m.Parent.IsZero() {
		return 0, false
	}
	return m.Parent, true
}

// IsAncestor reports whether ancestor appears on the base parent chain of e.
// An entity is not its own ancestor.
func IsAncestor(w *ecs.World, e, ancestor ecs.Entity) bool {
	if ancestor.IsZero() {
		return false
	}
	_, ok := findAncestor(w, e, func(p ecs.Entity) bool { return p == ancestor })
	return ok
}

// FindAncestorWith returns the nearest strict base ancestor of e that
// carries a T, enabled or not.
func FindAncestorWith[T any](w *ecs.World, e ecs.Entity) (ecs.Entity, bool) {
	pool := ecs.Components[T](w)
	return findAncestor(w, e, pool.Has)
}

// Depth returns the number of base ancestors of e.
func Depth(w *ecs.World, e ecs.Entity) int {
	depth := 0
	findAncestor(w, e, func(ecs.Entity) bool {
		depth++
		return false
	})
	return depth
}

// findAncestor walks the ParentMarker chain above e and returns the first
// ancestor accepted by match. The walk visits at most as many entities as
// the world holds, which bounds it even on a corrupted chain.
func findAncestor(w *ecs.World, e ecs.Entity, match func(ecs.Entity) bool) (ecs.Entity, bool) {
	parents := ecs.Components[ParentMarker](w)
	cur := e
	for range w.Len() + 1 {
		m, ok := parents.Get(cur)
		if !ok || m.Parent.IsZero() {
			return 0, false
		}
		if match(m.Parent) {
			return m.Parent, true
		}
		cur = m.Parent
	}
	return 0, false
}
