package render

import (
	"math"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/layout"
)

// Default drawing constants.
const (
	DefaultArrowLength = 10.0
	DefaultArrowAngle  = math.Pi / 6
	DefaultEdgeWidth   = 2.0
	DefaultNodeStroke  = 2.0
	DefaultFontSize    = 16.0
)

// Option configures [Render]. Unset options keep the package defaults.
type Option func(*renderer)

type renderer struct {
	palette     Palette
	arrowLength float64
	arrowAngle  float64
	edgeWidth   float64
	nodeStroke  float64
	fontSize    float64
	edgeInset   float64
}

// WithPalette sets the status colors.
func WithPalette(p Palette) Option { return func(r *renderer) { r.palette = p } }

// WithArrowLength sets the length of arrowhead strokes.
func WithArrowLength(l float64) Option { return func(r *renderer) { r.arrowLength = l } }

// WithEdgeWidth sets the stroke width of prerequisite edges.
func WithEdgeWidth(w float64) Option { return func(r *renderer) { r.edgeWidth = w } }

// WithFontSize sets the label font size.
func WithFontSize(size float64) Option { return func(r *renderer) { r.fontSize = size } }

// WithEdgeInset pulls both ends of every edge d units toward each other, so
// that arrowheads can land on the node border instead of under the node.
// Edges shorter than 2*d are drawn center to center.
func WithEdgeInset(d float64) Option { return func(r *renderer) { r.edgeInset = d } }

func newRenderer(opts ...Option) renderer {
	r := renderer{
		palette:     DefaultPalette(),
		arrowLength: DefaultArrowLength,
		arrowAngle:  DefaultArrowAngle,
		edgeWidth:   DefaultEdgeWidth,
		nodeStroke:  DefaultNodeStroke,
		fontSize:    DefaultFontSize,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Render draws the catalog onto s using the positions in l.
//
// Render is a no-op when s is nil. Otherwise the surface is always cleared,
// and nothing else is drawn when cat or l is nil or empty. Edges whose
// endpoints have no position are skipped.
func Render(s Surface, cat *catalog.Catalog, l *layout.Layout, sel catalog.Selection, opts ...Option) {
	if s == nil {
		return
	}
	s.Clear()
	if cat.Len() == 0 || l.Len() == 0 {
		return
	}

	r := newRenderer(opts...)
	statuses := Classify(cat, sel)

	edgeStroke := Stroke{Color: r.palette.Edge, Width: r.edgeWidth}
	for _, e := range cat.Edges() {
		from, ok := l.Position(e.From)
		if !ok {
			continue
		}
		to, ok := l.Position(e.To)
		if !ok {
			continue
		}
		r.drawEdge(s, from, to, edgeStroke)
	}

	radius := l.NodeRadius()
	ids := cat.IDs()
	for _, id := range ids {
		center, ok := l.Position(id)
		if !ok {
			continue
		}
		style := r.palette.Node(statuses[id])
		s.Polygon(Hexagon(center, radius), style.Fill, Stroke{Color: style.Stroke, Width: r.nodeStroke})
	}

	for _, id := range ids {
		center, ok := l.Position(id)
		if !ok {
			continue
		}
		style := r.palette.Node(statuses[id])
		s.Text(id, center, TextStyle{Color: style.Text, Size: r.fontSize, Bold: true})
	}
}

func (r renderer) drawEdge(s Surface, from, to layout.Point, stroke Stroke) {
	from, to = inset(from, to, r.edgeInset)
	s.Line(from, to, stroke)
	left, right := ArrowHead(from, to, r.arrowLength, r.arrowAngle)
	s.Line(to, left, stroke)
	s.Line(to, right, stroke)
}

// Hexagon returns the six vertices of a regular hexagon with circumradius r,
// starting at angle 0 and advancing 60° per vertex.
func Hexagon(center layout.Point, r float64) []layout.Point {
	pts := make([]layout.Point, 6)
	for i := range pts {
		angle := math.Pi / 3 * float64(i)
		pts[i] = layout.Point{
			X: center.X + r*math.Cos(angle),
			Y: center.Y + r*math.Sin(angle),
		}
	}
	return pts
}

// ArrowHead returns the far ends of the two arrowhead legs for a line from
// from to to. Each leg starts at to, has the given length and deviates by
// angle from the reversed line direction.
func ArrowHead(from, to layout.Point, length, angle float64) (left, right layout.Point) {
	theta := math.Atan2(to.Y-from.Y, to.X-from.X)
	left = layout.Point{
		X: to.X - length*math.Cos(theta-angle),
		Y: to.Y - length*math.Sin(theta-angle),
	}
	right = layout.Point{
		X: to.X - length*math.Cos(theta+angle),
		Y: to.Y - length*math.Sin(theta+angle),
	}
	return left, right
}

func inset(from, to layout.Point, d float64) (layout.Point, layout.Point) {
	if d <= 0 {
		return from, to
	}
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length <= 2*d {
		return from, to
	}
	ux, uy := dx/length*d, dy/length*d
	return layout.Point{X: from.X + ux, Y: from.Y + uy}, layout.Point{X: to.X - ux, Y: to.Y - uy}
}
