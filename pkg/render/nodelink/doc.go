// Package nodelink renders hierarchy trees as node-link diagrams.
//
// # Overview
//
// Entities appear as boxes with arrows running from parent to child. Any
// [render.Source] works, so the same code draws base, keyed, and scoped
// trees.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(tree, render.Options{Title: tree.Name()})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded box
// nodes. It can also be saved and processed with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
