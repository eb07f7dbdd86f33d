package hierarchy

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/observability"
)

// cascade is a FIFO work queue for subtree propagation.
//
// Store notifications raised while the queue is draining only enqueue more
// work, so a change that reaches N levels runs as N queue steps instead of N
// nested calls. Work is processed breadth-first: a parent is always handled
// before its children.
type cascade struct {
	tree    string
	logger  *log.Logger
	queue   []func()
	running bool
	touched map[string]int
}

func newCascade(tree string, logger *log.Logger) *cascade {
	return &cascade{
		tree:    tree,
		logger:  logger,
		touched: make(map[string]int),
	}
}

// push enqueues fn. When no drain is in progress, push drains the queue
// before returning.
func (c *cascade) push(fn func()) {
	c.queue = append(c.queue, fn)
	if c.running {
		return
	}
	c.drain()
}

// touch counts one entity affected by the current cascade.
func (c *cascade) touch(kind string) {
	c.touched[kind]++
}

func (c *cascade) drain() {
	c.running = true
	defer func() {
		c.running = false
		c.queue = nil
		clear(c.touched)
	}()

	// fn may append to c.queue
	for i := 0; i < len(c.queue); i++ {
		c.queue[i]()
	}

	for _, kind := range slices.Sorted(maps.Keys(c.touched)) {
		n := c.touched[kind]
		observability.Tree().OnCascade(c.tree, kind, n)
		c.logger.Debug("cascade", "tree", c.tree, "kind", kind, "entities", n)
	}
}
