package ecs

import (
	"testing"
)

func TestPoolSetPublishesAddedThenChanged(t *testing.T) {
	w := NewWorld()
	pool := Components[position](w)
	e := w.Create()

	var added, changed int
	var lastOld, lastNew position
	pool.OnAdded(func(Entity, position) { added++ })
	pool.OnChanged(func(_ Entity, old, cur position) {
		changed++
		lastOld, lastNew = old, cur
	})

	pool.Set(e, position{1, 1})
	pool.Set(e, position{2, 2})
	pool.Set(e, position{2, 2})

	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2 (Set always publishes)", changed)
	}
	if lastOld != (position{2, 2}) || lastNew != (position{2, 2}) {
		t.Errorf("last change = %+v -> %+v", lastOld, lastNew)
	}
}

func TestPoolSetOnDeadEntity(t *testing.T) {
	w := NewWorld()
	e := w.Create()
	w.Destroy(e)

	if Set(w, e, tag{}) {
		t.Error("Set on a dead entity should report false")
	}
	if Has[tag](w, e) {
		t.Error("dead entity must not gain components")
	}
}

func TestPoolEnableDisable(t *testing.T) {
	w := NewWorld()
	pool := Components[tag](w)
	e := w.Create()

	if pool.Disable(e) {
		t.Error("Disable without component should report false")
	}

	pool.Set(e, tag{})
	var on, off int
	pool.OnEnabled(func(Entity, tag) { on++ })
	pool.OnDisabled(func(Entity, tag) { off++ })

	if !pool.Disable(e) {
		t.Fatal("Disable should succeed")
	}
	if pool.Disable(e) {
		t.Error("second Disable should be a no-op")
	}
	if !pool.Has(e) {
		t.Error("disabled component is still present")
	}
	if pool.IsEnabled(e) {
		t.Error("IsEnabled should be false after Disable")
	}

	if !pool.Enable(e) {
		t.Fatal("Enable should succeed")
	}
	if pool.Enable(e) {
		t.Error("second Enable should be a no-op")
	}
	if on != 1 || off != 1 {
		t.Errorf("enabled=%d disabled=%d, want 1/1", on, off)
	}
}

func TestPoolRemove(t *testing.T) {
	w := NewWorld()
	pool := Components[position](w)
	e := w.Create()

	if pool.Remove(e) {
		t.Error("Remove of an absent component should report false")
	}

	pool.Set(e, position{3, 4})
	pool.Disable(e)

	var got position
	pool.OnRemoved(func(_ Entity, p position) { got = p })
	if !pool.Remove(e) {
		t.Fatal("Remove should succeed")
	}
	if got != (position{3, 4}) {
		t.Errorf("removed value = %+v", got)
	}

	// re-adding starts enabled
	pool.Set(e, position{})
	if !pool.IsEnabled(e) {
		t.Error("re-added component should be enabled")
	}
}

func TestPoolEntitiesSorted(t *testing.T) {
	w := NewWorld()
	var want []Entity
	for range 5 {
		e := w.Create()
		want = append(want, e)
	}
	for i := len(want) - 1; i >= 0; i-- {
		Set(w, want[i], tag{})
	}

	got := Components[tag](w).Entities()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entities()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
