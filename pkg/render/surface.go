package render

import (
	"image/color"

	"github.com/matzehuels/coursegraph/pkg/layout"
)

// Stroke describes an outline.
type Stroke struct {
	Color color.Color
	Width float64
}

// TextStyle describes a label.
type TextStyle struct {
	Color color.Color
	Size  float64
	Bold  bool
}

// Surface is a 2-D drawing target. Coordinates use the layout's system:
// origin top-left, y grows downward.
type Surface interface {
	// Size returns the drawable width and height.
	Size() (width, height float64)
	// Clear erases everything drawn so far.
	Clear()
	// Line strokes a straight segment.
	Line(from, to layout.Point, stroke Stroke)
	// Polygon fills and then strokes a closed polygon.
	Polygon(points []layout.Point, fill color.Color, stroke Stroke)
	// Text draws s centered horizontally and vertically on at.
	Text(s string, at layout.Point, style TextStyle)
}
