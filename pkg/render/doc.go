// Package render draws hierarchy trees for terminals and documents.
//
// # Overview
//
// Any value with a Children method, such as a [hierarchy.Handle], is a
// [Source]. Roots are the children of the zero entity. Rendering walks the
// source depth-first with siblings in creation order:
//
//   - [Text] draws an indented terminal tree using lipgloss
//   - [nodelink] draws the same tree as a Graphviz diagram (DOT or SVG)
//
// # Labels
//
// [Options] supplies entity labels and optional order annotations. Without
// a Label function entities print in their compact "e3v0" form.
//
//	out := render.Text(tree, render.Options{
//		Title: tree.Name(),
//		Label: func(e ecs.Entity) string { return scene.Name(w, e) },
//	})
//
// [hierarchy.Handle]: github.com/matzehuels/arbor/pkg/hierarchy#Handle
// [nodelink]: github.com/matzehuels/arbor/pkg/render/nodelink
package render
