package render

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/arbor/pkg/ecs"
)

// Source is a tree that can be walked from its roots.
type Source interface {
	Children(parent ecs.Entity) ([]ecs.Entity, bool)
}

// Options configures rendering.
type Options struct {
	// Title heads the output. Text prints it as the root line; DOT uses it
	// as the graph label.
	Title string

	// Label names an entity. Defaults to Entity.String.
	Label func(ecs.Entity) string

	// Order returns the order annotation of an entity, if any.
	Order func(ecs.Entity) (int, bool)
}

// Display returns the label of e with its order annotation.
func (o Options) Display(e ecs.Entity) string {
	label := e.String()
	if o.Label != nil {
		label = o.Label(e)
	}
	if o.Order != nil {
		if n, ok := o.Order(e); ok {
			return fmt.Sprintf("%s #%d", label, n)
		}
	}
	return label
}

// Children returns the children of parent in creation order.
func Children(src Source, parent ecs.Entity) []ecs.Entity {
	children, _ := src.Children(parent)
	slices.SortFunc(children, func(a, b ecs.Entity) int {
		if c := cmp.Compare(a.Index(), b.Index()); c != 0 {
			return c
		}
		return cmp.Compare(a.Generation(), b.Generation())
	})
	return children
}

// Walk visits every entity reachable from the roots of src in depth-first
// preorder. parent is zero for roots. Entities are visited at most once.
func Walk(src Source, visit func(e, parent ecs.Entity, depth int)) {
	type frame struct {
		e, parent ecs.Entity
		depth     int
	}

	seen := make(map[ecs.Entity]bool)
	var stack []frame
	push := func(parent ecs.Entity, depth int) {
		children := Children(src, parent)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], parent, depth})
		}
	}

	push(0, 0)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[f.e] {
			continue
		}
		seen[f.e] = true
		visit(f.e, f.parent, f.depth)
		push(f.e, f.depth+1)
	}
}
