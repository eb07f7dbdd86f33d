// Package scene loads hierarchy scenes from TOML and plays them against an
// [ecs.World].
//
// A scene declares named entities, their base parents, and the marker
// components they carry, followed by an ordered script of operations:
//
//	name = "robot"
//
//	[[entity]]
//	name = "body"
//	markers = ["transform"]
//
//	[[entity]]
//	name = "arm"
//	parent = "body"
//	markers = ["transform", "renderable"]
//
//	[[op]]
//	kind = "disable"
//	entity = "body"
//	marker = "transform"
//
// # Markers
//
// Three marker components are known: [Transform], [Widget], and
// [Renderable]. Each selects a tree through [OpenTree]; "renderable" is the
// scoped tree of renderable entities positioned by their transforms.
//
// # Operations
//
// Supported operation kinds are parent, unparent, add, remove, enable,
// disable, and destroy. Operations are applied one at a time with
// [Instance.Step] or all at once with [Instance.Run].
package scene
