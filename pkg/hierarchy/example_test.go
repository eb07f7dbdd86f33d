package hierarchy_test

import (
	"fmt"

	"github.com/matzehuels/arbor/pkg/ecs"
	"github.com/matzehuels/arbor/pkg/hierarchy"
)

type Transform struct{}

func Example() {
	w := ecs.NewWorld()
	defer w.Dispose()

	tree, err := hierarchy.Keyed[Transform](w)
	if err != nil {
		panic(err)
	}
	defer tree.Close()

	body, arm, hand := w.Create(), w.Create(), w.Create()
	hierarchy.SetParent(w, arm, body)
	hierarchy.SetParent(w, hand, arm)
	for _, e := range []ecs.Entity{body, arm, hand} {
		ecs.Set(w, e, Transform{})
	}

	parent, _ := tree.Parent(hand)
	key, _ := ecs.Get[hierarchy.Key[Transform]](w, hand)
	fmt.Println(parent == arm, key.Order)
	// Output:
	// true 2
}

func ExampleBase() {
	w := ecs.NewWorld()
	defer w.Dispose()

	tree, err := hierarchy.Base(w)
	if err != nil {
		panic(err)
	}
	defer tree.Close()

	root, child, grandchild := w.Create(), w.Create(), w.Create()
	hierarchy.SetParent(w, child, root)
	hierarchy.SetParent(w, grandchild, child)

	w.Destroy(root)
	fmt.Println(w.Alive(child), w.Alive(grandchild))
	// Output:
	// false false
}

func ExampleSetParent() {
	w := ecs.NewWorld()
	a, b := w.Create(), w.Create()

	fmt.Println(hierarchy.SetParent(w, b, a))
	fmt.Println(hierarchy.SetParent(w, a, b)) // would close a cycle
	// Output:
	// true
	// false
}
