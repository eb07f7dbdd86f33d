package nodelink

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/arbor/pkg/ecs"
	"github.com/matzehuels/arbor/pkg/render"
)

type mapSource map[ecs.Entity][]ecs.Entity

func (m mapSource) Children(parent ecs.Entity) ([]ecs.Entity, bool) {
	c, ok := m[parent]
	return slices.Clone(c), ok
}

func TestToDOT(t *testing.T) {
	src := mapSource{0: {1}, 1: {2, 3}}
	names := map[ecs.Entity]string{1: "body", 2: "arm", 3: "hud"}
	dot := ToDOT(src, render.Options{
		Title: "transform",
		Label: func(e ecs.Entity) string { return names[e] },
	})

	for _, want := range []string{
		"digraph G {",
		`label="transform";`,
		`"e1v0" [label="body"];`,
		`"e2v0" [label="arm"];`,
		`"e1v0" -> "e2v0";`,
		`"e1v0" -> "e3v0";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"none"`) {
		t.Errorf("DOT has an edge from the zero entity:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"rewrites header",
			`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00"><g/></svg>`,
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`,
		},
		{"no viewBox", `<svg><g/></svg>`, `<svg><g/></svg>`},
		{"zero size", `<svg viewBox="0 0 0 10"></svg>`, `<svg viewBox="0 0 0 10"></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("normalizeViewBox = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	dot := ToDOT(mapSource{0: {1}, 1: {2}}, render.Options{})
	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("output is not SVG: %.80s", svg)
	}
}
