package hierarchy

import (
	"slices"
	"testing"

	"github.com/matzehuels/arbor/pkg/ecs"
)

// marker components used across tests
type (
	transform  struct{}
	widget     struct{}
	renderable struct{}
)

func newWorld(t *testing.T) *ecs.World {
	t.Helper()
	w := ecs.NewWorld()
	t.Cleanup(w.Dispose)
	return w
}

func create(w *ecs.World, n int) []ecs.Entity {
	out := make([]ecs.Entity, n)
	for i := range out {
		out[i] = w.Create()
	}
	return out
}

func mustKeyed[K any](t *testing.T, w *ecs.World) *Handle {
	t.Helper()
	h, err := Keyed[K](w)
	if err != nil {
		t.Fatalf("Keyed: %v", err)
	}
	t.Cleanup(h.Close)
	return h
}

func mustKey[K any](t *testing.T, w *ecs.World, e ecs.Entity) Key[K] {
	t.Helper()
	k, ok := ecs.Get[Key[K]](w, e)
	if !ok {
		t.Fatalf("%v has no key", e)
	}
	return k
}

func sameEntities(got, want []ecs.Entity) bool {
	a, b := slices.Clone(got), slices.Clone(want)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// checkKeys verifies that every entity carrying K has a key pointing at its
// nearest K-carrying base ancestor with that ancestor's order + 1, and that
// no other entity has a key.
func checkKeys[K any](t *testing.T, w *ecs.World) {
	t.Helper()
	checkKeysWith[K](t, w, nil)
}

// checkScopedKeys is checkKeys for a world with a Scoped[C, K] tree open:
// entities carrying an enabled C are keyed as well.
func checkScopedKeys[C, K any](t *testing.T, w *ecs.World) {
	t.Helper()
	scope := ecs.Components[C](w)
	members := make(map[ecs.Entity]bool)
	for _, e := range scope.Entities() {
		members[e] = scope.IsEnabled(e)
	}
	checkKeysWith[K](t, w, members)
}

func checkKeysWith[K any](t *testing.T, w *ecs.World, members map[ecs.Entity]bool) {
	t.Helper()
	marks := ecs.Components[K](w)
	for _, e := range ecs.Components[Key[K]](w).Entities() {
		if !marks.Has(e) && !members[e] {
			t.Errorf("%v has a key but neither the marker nor the scope", e)
		}
	}

	keyed := marks.Entities()
	for e, in := range members {
		if in && !marks.Has(e) {
			keyed = append(keyed, e)
		}
	}
	for _, e := range keyed {
		k, ok := ecs.Get[Key[K]](w, e)
		if !ok {
			t.Errorf("%v should be keyed but has no key", e)
			continue
		}
		want, found := FindAncestorWith[K](w, e)
		wantOrder := 0
		if found {
			pk, ok := ecs.Get[Key[K]](w, want)
			if !ok {
				t.Errorf("ancestor %v of %v has no key", want, e)
				continue
			}
			wantOrder = pk.Order + 1
		}
		if k.Parent != want {
			t.Errorf("%v: parent = %v, want %v", e, k.Parent, want)
		}
		if k.Order != wantOrder {
			t.Errorf("%v: order = %d, want %d", e, k.Order, wantOrder)
		}
	}
}
