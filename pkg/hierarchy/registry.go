package hierarchy

import (
	"cmp"
	"reflect"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/arbor/pkg/ecs"
	"github.com/matzehuels/arbor/pkg/observability"
)

// variant selects how a shared tree is built.
type variant uint8

const (
	variantBase variant = iota
	variantKeyed
	variantScoped
)

// treeID identifies a shared tree within a world. The reflected types serve
// as identity and display names only.
type treeID struct {
	variant   variant
	key       reflect.Type
	component reflect.Type
}

func (id treeID) String() string {
	switch id.variant {
	case variantKeyed:
		return "keyed[" + id.key.String() + "]"
	case variantScoped:
		return "scoped[" + id.component.String() + "," + id.key.String() + "]"
	default:
		return "base"
	}
}

// Options configures the trees of one world.
type Options struct {
	// Logger receives debug output for tree lifecycles and cascades.
	// Defaults to log.Default().
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// TreeInfo describes a live shared tree.
type TreeInfo struct {
	World uuid.UUID
	Name  string
	Refs  int
}

var (
	registriesMu sync.Mutex
	registries   = make(map[*ecs.World]*registry)
)

// registry caches the shared trees of one world. It is removed from the
// global map and closes every tree when the world is disposed.
type registry struct {
	world  *ecs.World
	logger *log.Logger
	sub    ecs.Subscription

	mu     sync.Mutex
	trees  map[treeID]*sharedTree
	seq    int
	closed bool
}

// Use configures the trees of w. Calling Use is optional; without it trees
// log to log.Default(). Options apply to trees created after the call.
func Use(w *ecs.World, opts Options) error {
	r, err := registryFor(w)
	if err != nil {
		return err
	}
	opts = opts.withDefaults()
	r.mu.Lock()
	r.logger = opts.Logger
	r.mu.Unlock()
	return nil
}

// Base returns a handle to the base tree of w.
func Base(w *ecs.World) (*Handle, error) {
	id := treeID{variant: variantBase}
	return acquire(w, id, func(r *registry) (Tree, error) {
		return newBaseTree(w, r.cascade(id)), nil
	})
}

// Keyed returns a handle to the tree of entities carrying K.
func Keyed[K any](w *ecs.World) (*Handle, error) {
	id := treeID{variant: variantKeyed, key: reflect.TypeFor[K]()}
	return acquire(w, id, func(r *registry) (Tree, error) {
		base, err := Base(w)
		if err != nil {
			return nil, err
		}
		return newKeyedTree[K](w, base, r.cascade(id)), nil
	})
}

// Scoped returns a handle to the tree of entities carrying C, positioned by
// their K-carrying ancestors.
func Scoped[C, K any](w *ecs.World) (*Handle, error) {
	id := treeID{variant: variantScoped, key: reflect.TypeFor[K](), component: reflect.TypeFor[C]()}
	return acquire(w, id, func(*registry) (Tree, error) {
		keyed, err := Keyed[K](w)
		if err != nil {
			return nil, err
		}
		return newScopedTree[C, K](w, keyed), nil
	})
}

// Trees returns the live shared trees of every world, ordered by world and
// creation.
func Trees() []TreeInfo {
	registriesMu.Lock()
	regs := make([]*registry, 0, len(registries))
	for _, r := range registries {
		regs = append(regs, r)
	}
	registriesMu.Unlock()

	type entry struct {
		info TreeInfo
		seq  int
	}
	var entries []entry
	for _, r := range regs {
		for _, s := range r.snapshot() {
			refs, disposed := s.count()
			if disposed {
				continue
			}
			entries = append(entries, entry{
				info: TreeInfo{World: r.world.ID(), Name: s.id.String(), Refs: refs},
				seq:  s.seq,
			})
		}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.info.World.String(), b.info.World.String()); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	out := make([]TreeInfo, len(entries))
	for i, e := range entries {
		out[i] = e.info
	}
	return out
}

func registryFor(w *ecs.World) (*registry, error) {
	registriesMu.Lock()
	defer registriesMu.Unlock()
	if w.Disposed() {
		return nil, ErrWorldDisposed
	}
	if r, ok := registries[w]; ok {
		return r, nil
	}
	r := &registry{
		world:  w,
		logger: Options{}.withDefaults().Logger,
		trees:  make(map[treeID]*sharedTree),
	}
	r.sub = w.OnDisposed(r.teardown)
	registries[w] = r
	return r, nil
}

// acquire returns a new handle on the tree identified by id, building the
// tree on a cache miss. build runs without the registry lock held because
// composite trees acquire their own dependencies.
func acquire(w *ecs.World, id treeID, build func(*registry) (Tree, error)) (*Handle, error) {
	r, err := registryFor(w)
	if err != nil {
		return nil, err
	}
	if h, ok := r.lookup(id); ok {
		return h, nil
	}

	tree, err := build(r)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		tree.Close()
		return nil, ErrWorldDisposed
	}
	if h, ok := r.lookupLocked(id); ok {
		r.mu.Unlock()
		tree.Close()
		return h, nil
	}
	r.seq++
	s := &sharedTree{tree: tree, id: id, seq: r.seq, reg: r}
	r.trees[id] = s
	refs, _ := s.acquire()
	logger := r.logger
	r.mu.Unlock()

	world := w.ID().String()
	observability.Tree().OnTreeCreated(world, id.String())
	observability.Tree().OnTreeAcquired(world, id.String(), refs)
	logger.Debug("tree created", "world", world, "tree", id.String())
	return newHandle(s), nil
}

func (r *registry) lookup(id treeID) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(id)
}

// lookupLocked acquires the cached tree for id. A cached tree that was
// disposed concurrently is evicted and reported as a miss.
func (r *registry) lookupLocked(id treeID) (*Handle, bool) {
	s, ok := r.trees[id]
	if !ok {
		return nil, false
	}
	refs, err := s.acquire()
	if err != nil {
		delete(r.trees, id)
		return nil, false
	}
	world := r.world.ID().String()
	observability.Tree().OnTreeAcquired(world, id.String(), refs)
	r.logger.Debug("tree acquired", "world", world, "tree", id.String(), "refs", refs)
	return newHandle(s), true
}

func (r *registry) evict(s *sharedTree) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.trees[s.id] == s {
		delete(r.trees, s.id)
	}
}

func (r *registry) snapshot() []*sharedTree {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*sharedTree, 0, len(r.trees))
	for _, s := range r.trees {
		out = append(out, s)
	}
	return out
}

func (r *registry) cascade(id treeID) *cascade {
	r.mu.Lock()
	defer r.mu.Unlock()
	return newCascade(id.String(), r.logger)
}

// teardown closes every cached tree, newest first, and forgets the world.
// A second call is a no-op.
func (r *registry) teardown() {
	registriesMu.Lock()
	if registries[r.world] == r {
		delete(registries, r.world)
	}
	registriesMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	trees := make([]*sharedTree, 0, len(r.trees))
	for _, s := range r.trees {
		trees = append(trees, s)
	}
	clear(r.trees)
	logger := r.logger
	r.mu.Unlock()

	slices.SortFunc(trees, func(a, b *sharedTree) int { return cmp.Compare(b.seq, a.seq) })
	world := r.world.ID().String()
	for _, s := range trees {
		if s.dispose() {
			observability.Tree().OnTreeDisposed(world, s.id.String())
		}
	}
	if r.sub != nil {
		r.sub.Unsubscribe()
	}
	logger.Debug("trees torn down", "world", world, "trees", len(trees))
}
