// Package hierarchy maintains parent/child indexes over an [ecs.World].
//
// Entities never store child lists. The base hierarchy is declared by
// attaching a [ParentMarker] to an entity; every other view is derived from
// it and kept current as components are added, removed, changed, enabled,
// or disabled.
//
// # Trees
//
// Three kinds of [Tree] exist, each selected by the function used to
// acquire it:
//
//   - [Base] indexes entities by their ParentMarker. It is the only tree that
//     cascades entity destruction: destroying an entity destroys its whole
//     base subtree, parents before children.
//   - [Keyed] indexes the entities that carry a marker component K. Each such
//     entity gets a [Key] whose Parent is the nearest base ancestor that also
//     carries K and whose Order is that ancestor's Order + 1, or 0 when there
//     is none.
//   - [Scoped] restricts a keyed tree to the entities that carry a second
//     component C, while still ordering them through K.
//
// # Sharing
//
// Trees are shared per world. Every call to Base, Keyed, or Scoped returns a
// new [Handle] that holds one reference to the shared tree; the tree is
// closed when its last handle is closed, or unconditionally when the world is
// disposed:
//
//	h, err := hierarchy.Keyed[Transform](w)
//	if err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	kids, _ := h.Children(root)
//
// The registry of a world lives until the world is disposed, so call
// [ecs.World.Dispose] when a world is no longer needed.
//
// # Cascades
//
// Structural changes that affect whole subtrees (destruction, renumbering,
// enable, disable) run through a per-tree work queue in breadth-first order.
// Stack depth does not grow with hierarchy depth.
//
// # Concurrency
//
// A world and its trees are driven by a single goroutine. Reference
// counting and handle teardown take locks, as do the registry maps, so
// handles may be closed from several goroutines at once while the world is
// not being mutated.
package hierarchy
