package hierarchy

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/ecs"
	"github.com/matzehuels/arbor/pkg/observability"
)

func treesOf(w *ecs.World) []TreeInfo {
	var out []TreeInfo
	for _, info := range Trees() {
		if info.World == w.ID() {
			out = append(out, info)
		}
	}
	return out
}

func TestHandlesShareOneTree(t *testing.T) {
	w := newWorld(t)

	const n = 4
	handles := make([]*Handle, n)
	for i := range handles {
		h, err := Keyed[transform](w)
		if err != nil {
			t.Fatal(err)
		}
		handles[i] = h
	}
	shared := handles[0].shared
	for _, h := range handles[1:] {
		if h.shared != shared {
			t.Fatal("handles should wrap one shared tree")
		}
	}
	if refs, _ := shared.count(); refs != n {
		t.Fatalf("refs = %d, want %d", refs, n)
	}

	e := w.Create()
	for _, h := range handles[:n-1] {
		h.Close()
	}
	ecs.Set(w, e, transform{})
	if !ecs.Has[Key[transform]](w, e) {
		t.Error("tree should stay functional while a handle is held")
	}
	if _, ok := handles[n-1].Children(0); !ok {
		t.Error("remaining handle should see the root")
	}

	handles[n-1].Close()
	if _, disposed := shared.count(); !disposed {
		t.Error("closing the last handle should dispose the tree")
	}
	if got := treesOf(w); len(got) != 0 {
		t.Errorf("registry still holds %v", got)
	}

	again, err := Keyed[transform](w)
	if err != nil {
		t.Fatal(err)
	}
	defer again.Close()
	if again.shared == shared {
		t.Error("a new tree should be built after eviction")
	}
}

func TestHandleCloseIsIdempotent(t *testing.T) {
	w := newWorld(t)
	a := mustKeyed[transform](t, w)
	b, err := Keyed[transform](w)
	if err != nil {
		t.Fatal(err)
	}

	b.Close()
	b.Close()
	if refs, disposed := a.shared.count(); refs != 1 || disposed {
		t.Errorf("refs = %d disposed = %v, want 1 false", refs, disposed)
	}

	if _, ok := b.Children(0); ok {
		t.Error("closed handle should report nothing")
	}
	b.Mark(w.Create()) // ignored
	sub := b.OnParentAdded(func(ecs.Entity) { t.Error("closed handle must not subscribe") })
	sub.Unsubscribe()
	ecs.Set(w, w.Create(), transform{})
}

func TestHandleCloseDetachesSubscriptions(t *testing.T) {
	w := newWorld(t)
	keep := mustKeyed[transform](t, w)
	h, err := Keyed[transform](w)
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	h.OnParentAdded(func(ecs.Entity) { calls++ })
	kept := 0
	keep.OnParentAdded(func(ecs.Entity) { kept++ })

	h.Close()
	ecs.Set(w, w.Create(), transform{})

	if calls != 0 {
		t.Error("subscriptions made through a closed handle should be cancelled")
	}
	if kept != 1 {
		t.Errorf("other handle saw %d events, want 1", kept)
	}
}

func TestAcquireAfterDisposeFails(t *testing.T) {
	w := newWorld(t)
	h, err := Base(w)
	if err != nil {
		t.Fatal(err)
	}
	s := h.shared
	h.Close()

	if _, err := s.acquire(); !errors.Is(err, ErrTreeDisposed) {
		t.Errorf("acquire on disposed tree: err = %v, want ErrTreeDisposed", err)
	}
}

func TestVariantsAreDistinct(t *testing.T) {
	w := newWorld(t)
	base := mustBase(t, w)
	tf := mustKeyed[transform](t, w)
	ui := mustKeyed[widget](t, w)
	sc, err := Scoped[renderable, transform](w)
	if err != nil {
		t.Fatal(err)
	}
	defer sc.Close()

	names := map[string]bool{}
	for _, h := range []*Handle{base, tf, ui, sc} {
		names[h.Name()] = true
	}
	if len(names) != 4 {
		t.Errorf("names = %v, want four distinct trees", names)
	}
	if tf.Name() != "keyed[hierarchy.transform]" {
		t.Errorf("Name() = %q", tf.Name())
	}
	if sc.Name() != "scoped[hierarchy.renderable,hierarchy.transform]" {
		t.Errorf("Name() = %q", sc.Name())
	}

	infos := treesOf(w)
	if len(infos) != 4 {
		t.Fatalf("Trees() = %v", infos)
	}
	// base is shared by itself and both keyed trees
	if infos[0].Name != "base" || infos[0].Refs != 3 {
		t.Errorf("first tree = %+v, want base with 3 refs", infos[0])
	}
}

func TestWorldDisposeTearsDownTrees(t *testing.T) {
	w := ecs.NewWorld()
	sc, err := Scoped[renderable, transform](w)
	if err != nil {
		t.Fatal(err)
	}
	kd := sc.shared.tree.(*scopedTree[renderable, transform]).Tree.(*Handle)
	extra, err := Keyed[transform](w)
	if err != nil {
		t.Fatal(err)
	}

	w.Dispose()
	w.Dispose()

	for _, s := range []*sharedTree{sc.shared, kd.shared, extra.shared} {
		if _, disposed := s.count(); !disposed {
			t.Errorf("%s not disposed with the world", s.id)
		}
	}
	if got := treesOf(w); len(got) != 0 {
		t.Errorf("Trees() after dispose = %v", got)
	}

	// handles outliving the world close quietly
	sc.Close()
	extra.Close()

	if _, err := Keyed[transform](w); !errors.Is(err, ErrWorldDisposed) {
		t.Errorf("Keyed after dispose: err = %v, want ErrWorldDisposed", err)
	}
	if err := Use(w, Options{}); !errors.Is(err, ErrWorldDisposed) {
		t.Errorf("Use after dispose: err = %v, want ErrWorldDisposed", err)
	}
}

func TestConcurrentCloseDisposesOnce(t *testing.T) {
	w := newWorld(t)
	hooks := &countingHooks{}
	observability.SetTreeHooks(hooks)
	t.Cleanup(observability.Reset)

	const n = 32
	handles := make([]*Handle, n)
	for i := range handles {
		h, err := Keyed[transform](w)
		if err != nil {
			t.Fatal(err)
		}
		h.OnParentAdded(func(ecs.Entity) {})
		h.OnParentChanged(func(_, _, _ ecs.Entity) {})
		handles[i] = h
	}

	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Close()
			h.Close()
		}()
	}
	wg.Wait()

	// the keyed tree and the base tree it holds
	if got := hooks.get("disposed"); got != 2 {
		t.Errorf("disposed %d times, want 2", got)
	}
	if got := hooks.get("released"); got != n+1 {
		t.Errorf("released %d times, want %d", got, n+1)
	}
	if live := treesOf(w); len(live) != 0 {
		t.Errorf("live trees after close = %v", live)
	}
}

func TestHandleSubscriptionCancelAfterClose(t *testing.T) {
	w := newWorld(t)
	h := mustKeyed[transform](t, w)
	sub := h.OnParentAdded(func(ecs.Entity) {})
	h.Close()
	sub.Unsubscribe()
	sub.Unsubscribe()
}

func TestHooksObserveLifecycleAndCascades(t *testing.T) {
	w := newWorld(t)
	hooks := &countingHooks{}
	observability.SetTreeHooks(hooks)
	t.Cleanup(observability.Reset)

	h, err := Base(w)
	if err != nil {
		t.Fatal(err)
	}
	es := create(w, 4)
	for i := 1; i < len(es); i++ {
		SetParent(w, es[i], es[i-1])
	}
	w.Destroy(es[0])
	h.Close()

	if got := hooks.get("created"); got != 1 {
		t.Errorf("created = %d, want 1", got)
	}
	if got := hooks.get("cascade:base:destroy"); got != 3 {
		t.Errorf("destroy cascade touched %d, want 3", got)
	}
	if got := hooks.get("disposed"); got != 1 {
		t.Errorf("disposed = %d, want 1", got)
	}
}

func TestUseSetsLogger(t *testing.T) {
	w := newWorld(t)
	logger := log.New(io.Discard)
	if err := Use(w, Options{Logger: logger}); err != nil {
		t.Fatal(err)
	}
	h := mustBase(t, w)
	if got := h.shared.reg.logger; got != logger {
		t.Error("registry should use the configured logger")
	}
	if err := Use(w, Options{}); err != nil {
		t.Fatal(err)
	}
	if h.shared.reg.logger == nil {
		t.Error("nil logger should fall back to the default")
	}
}

type countingHooks struct {
	observability.NoopTreeHooks
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingHooks) add(key string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[key] += n
}

func (c *countingHooks) get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key]
}

func (c *countingHooks) OnTreeCreated(string, string)       { c.add("created", 1) }
func (c *countingHooks) OnTreeReleased(string, string, int) { c.add("released", 1) }
func (c *countingHooks) OnTreeDisposed(string, string)      { c.add("disposed", 1) }
func (c *countingHooks) OnCascade(tree, kind string, n int) { c.add("cascade:"+tree+":"+kind, n) }
