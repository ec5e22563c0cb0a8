// Package layout assigns courses to layers and computes their 2-D positions.
//
// The pipeline has two stages:
//
//  1. [AssignLayers] computes a layer depth per course: 0 for a course without
//     known prerequisites, otherwise one more than its deepest prerequisite.
//  2. [Compute] places each layer in its own column and stacks the courses of
//     a layer top to bottom in catalog order.
//
// The result is a [Layout], an immutable value that the renderer and the hit
// tester both read. A Layout is never updated in place: any change to the
// catalog or the selection produces a new Layout from scratch.
//
//	depths := layout.AssignLayers(cat)
//	l := layout.Compute(cat, depths)
//	pos, ok := l.Position("MBA505")
//
// # Geometry
//
// Positions are node centers in surface coordinates (origin top-left, y grows
// downward). Spacing, offsets and the node radius are layout options so that
// drawing and hit-testing always agree on node size.
package layout
