package ecs_test

import (
	"fmt"

	"github.com/matzehuels/arbor/pkg/ecs"
)

type Health struct{ HP int }

func ExampleComponents() {
	w := ecs.NewWorld()
	hero := w.Create()

	health := ecs.Components[Health](w)
	health.OnChanged(func(e ecs.Entity, old, cur Health) {
		fmt.Printf("hp %d -> %d\n", old.HP, cur.HP)
	})

	health.Set(hero, Health{HP: 10})
	health.Set(hero, Health{HP: 7})
	// Output:
	// hp 10 -> 7
}

type Owner struct{ Of ecs.Entity }

func ExampleNewMultiMap() {
	w := ecs.NewWorld()
	guild := w.Create()
	for range 3 {
		ecs.Set(w, w.Create(), Owner{Of: guild})
	}

	byOwner := ecs.NewMultiMap(w, func(o Owner) ecs.Entity { return o.Of })
	defer byOwner.Close()

	members, ok := byOwner.Get(guild)
	fmt.Println(len(members), ok)
	// Output:
	// 3 true
}
