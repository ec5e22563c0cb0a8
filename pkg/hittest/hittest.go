// Package hittest maps pointer positions to courses in a computed layout.
//
// A pointer event arrives in client coordinates, the coordinate space of the
// display the diagram is shown in. [Viewport] converts it to surface
// coordinates, where [Test] checks it against each node's circumscribed
// circle. [Hover] combines both steps and returns what a tooltip needs.
package hittest

import (
	"math"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/layout"
)

// HoverOffset is the distance, in display units on both axes, between the
// pointer and the top-left corner of the hover detail.
const HoverOffset = 20.0

// Viewport relates the drawing surface to the area it is displayed in.
type Viewport struct {
	SurfaceWidth  float64 // surface width in surface units
	SurfaceHeight float64 // surface height in surface units
	Left          float64 // display-area left edge in client coordinates
	Top           float64 // display-area top edge in client coordinates
	DisplayWidth  float64 // displayed width in client units
	DisplayHeight float64 // displayed height in client units
}

// Identity returns a viewport that displays a surface of the given size at
// the origin without scaling.
func Identity(width, height float64) Viewport {
	return Viewport{
		SurfaceWidth:  width,
		SurfaceHeight: height,
		DisplayWidth:  width,
		DisplayHeight: height,
	}
}

// Available reports whether the viewport can convert coordinates. A display
// area with no extent cannot.
func (v Viewport) Available() bool {
	return v.DisplayWidth > 0 && v.DisplayHeight > 0
}

// ToSurface converts a client coordinate to surface coordinates. It returns
// false when the viewport is not [Viewport.Available].
func (v Viewport) ToSurface(client layout.Point) (layout.Point, bool) {
	if !v.Available() {
		return layout.Point{}, false
	}
	return layout.Point{
		X: (client.X - v.Left) * (v.SurfaceWidth / v.DisplayWidth),
		Y: (client.Y - v.Top) * (v.SurfaceHeight / v.DisplayHeight),
	}, true
}

// Test returns the ID of the first course, in layout order, whose center lies
// strictly closer to p than the node radius. Nodes without a catalog entry
// are ignored.
func Test(p layout.Point, l *layout.Layout, cat *catalog.Catalog) (string, bool) {
	r := l.NodeRadius()
	for _, n := range l.Nodes() {
		if !cat.Has(n.ID) {
			continue
		}
		if math.Hypot(p.X-n.Center.X, p.Y-n.Center.Y) < r {
			return n.ID, true
		}
	}
	return "", false
}

// Detail is the hover result for one pointer position.
type Detail struct {
	Course  catalog.Course
	Client  layout.Point // raw pointer position
	Surface layout.Point // pointer position in surface coordinates
	Display layout.Point // where the detail should be shown, in client coordinates
}

// Hover hit-tests a client coordinate. It returns nil, meaning any visible
// hover detail should be cleared, when the viewport is unavailable or no
// course is under the pointer.
func Hover(client layout.Point, v Viewport, l *layout.Layout, cat *catalog.Catalog) *Detail {
	p, ok := v.ToSurface(client)
	if !ok {
		return nil
	}
	id, ok := Test(p, l, cat)
	if !ok {
		return nil
	}
	c, _ := cat.Get(id)
	return &Detail{
		Course:  c,
		Client:  client,
		Surface: p,
		Display: layout.Point{X: client.X + HoverOffset, Y: client.Y + HoverOffset},
	}
}
