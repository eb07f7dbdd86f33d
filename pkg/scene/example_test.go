package scene_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/ecs"
	"github.com/matzehuels/arbor/pkg/scene"
)

func ExampleBuild() {
	s, err := scene.Parse([]byte(`
name = "demo"

[[entity]]
name = "root"
markers = ["transform"]

[[entity]]
name = "leaf"
parent = "root"
markers = ["transform"]

[[op]]
kind = "unparent"
entity = "leaf"
`))
	if err != nil {
		panic(err)
	}

	w := ecs.NewWorld()
	defer w.Dispose()

	tree, _ := scene.OpenTree(w, "transform")
	defer tree.Close()

	inst, err := scene.Build(context.Background(), w, s, scene.Options{Logger: log.New(io.Discard)})
	if err != nil {
		panic(err)
	}
	leaf, _ := inst.Entity("leaf")
	parent, _ := tree.Parent(leaf)
	fmt.Println(inst.Name(parent))

	if err := inst.Run(context.Background()); err != nil {
		panic(err)
	}
	_, ok := tree.Parent(leaf)
	fmt.Println(ok)
	// Output:
	// root
	// false
}
