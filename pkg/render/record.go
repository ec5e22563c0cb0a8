package render

import (
	"image/color"
	"slices"

	"github.com/matzehuels/coursegraph/pkg/layout"
)

// OpKind identifies a recorded drawing operation.
type OpKind int

const (
	OpClear OpKind = iota
	OpLine
	OpPolygon
	OpText
)

// Op is one recorded drawing call.
type Op struct {
	Kind   OpKind
	Points []layout.Point // OpLine: [from, to]; OpPolygon: vertices; OpText: [anchor]
	Fill   color.Color    // OpPolygon only
	Stroke Stroke         // OpLine and OpPolygon
	Text   string         // OpText only
	Style  TextStyle      // OpText only
}

// Recorder is a [Surface] that keeps every call in order. Clear discards
// earlier operations and is itself recorded.
type Recorder struct {
	Width, Height float64
	Ops           []Op
}

// NewRecorder returns an empty recorder of the given size.
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) Size() (float64, float64) { return r.Width, r.Height }

func (r *Recorder) Clear() { r.Ops = []Op{{Kind: OpClear}} }

func (r *Recorder) Line(from, to layout.Point, stroke Stroke) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, Points: []layout.Point{from, to}, Stroke: stroke})
}

func (r *Recorder) Polygon(points []layout.Point, fill color.Color, stroke Stroke) {
	r.Ops = append(r.Ops, Op{Kind: OpPolygon, Points: slices.Clone(points), Fill: fill, Stroke: stroke})
}

func (r *Recorder) Text(s string, at layout.Point, style TextStyle) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Points: []layout.Point{at}, Text: s, Style: style})
}

// Count returns how many recorded operations have the given kind.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

var _ Surface = (*Recorder)(nil)
