package scene

import (
	"maps"
	"slices"

	"github.com/matzehuels/arbor/pkg/ecs"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/hierarchy"
)

// Transform marks entities that take part in the spatial hierarchy.
type Transform struct{}

// Widget marks entities that take part in the UI hierarchy.
type Widget struct{}

// Renderable marks entities that are drawn. Renderables are positioned
// through their nearest Transform ancestors.
type Renderable struct{}

// Label is the scene name of an entity.
type Label string

// marker is the type-erased access to one marker component.
type marker struct {
	add     func(*ecs.World, ecs.Entity) bool
	remove  func(*ecs.World, ecs.Entity) bool
	enable  func(*ecs.World, ecs.Entity) bool
	disable func(*ecs.World, ecs.Entity) bool
	has     func(*ecs.World, ecs.Entity) bool
	enabled func(*ecs.World, ecs.Entity) bool
}

func markerOf[T any]() marker {
	var zero T
	return marker{
		add:     func(w *ecs.World, e ecs.Entity) bool { return ecs.Set(w, e, zero) },
		remove:  ecs.Remove[T],
		enable:  ecs.Enable[T],
		disable: ecs.Disable[T],
		has:     ecs.Has[T],
		enabled: func(w *ecs.World, e ecs.Entity) bool { return ecs.Components[T](w).IsEnabled(e) },
	}
}

var markers = map[string]marker{
	"transform":  markerOf[Transform](),
	"widget":     markerOf[Widget](),
	"renderable": markerOf[Renderable](),
}

// Markers returns the known marker names in sorted order.
func Markers() []string {
	return slices.Sorted(maps.Keys(markers))
}

func lookupMarker(name string) (marker, error) {
	m, ok := markers[name]
	if !ok {
		return marker{}, errors.New(errors.ErrCodeUnknownMarker, "unknown marker %q (want one of %v)", name, Markers())
	}
	return m, nil
}

// MarkerState reports whether e carries the named marker and whether it is
// enabled.
func MarkerState(w *ecs.World, e ecs.Entity, name string) (has, enabled bool) {
	m, ok := markers[name]
	if !ok {
		return false, false
	}
	return m.has(w, e), m.enabled(w, e)
}

// TreeNames returns the names accepted by OpenTree.
func TreeNames() []string {
	return []string{"base", "transform", "widget", "renderable"}
}

// OpenTree acquires the tree selected by name.
func OpenTree(w *ecs.World, name string) (*hierarchy.Handle, error) {
	switch name {
	case "base":
		return hierarchy.Base(w)
	case "transform":
		return hierarchy.Keyed[Transform](w)
	case "widget":
		return hierarchy.Keyed[Widget](w)
	case "renderable":
		return hierarchy.Scoped[Renderable, Transform](w)
	default:
		return nil, errors.New(errors.ErrCodeInvalidTree, "unknown tree %q (want one of %v)", name, TreeNames())
	}
}

// Order returns the keyed order of e in the named tree. The base tree and
// entities without a key report false.
func Order(w *ecs.World, tree string, e ecs.Entity) (int, bool) {
	var (
		k  hierarchy.Key[Transform]
		ok bool
	)
	switch tree {
	case "transform", "renderable":
		k, ok = ecs.Get[hierarchy.Key[Transform]](w, e)
	case "widget":
		var wk hierarchy.Key[Widget]
		wk, ok = ecs.Get[hierarchy.Key[Widget]](w, e)
		k.Order = wk.Order
	}
	return k.Order, ok
}
