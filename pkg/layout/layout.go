package layout

import (
	"slices"

	"github.com/matzehuels/coursegraph/pkg/catalog"
)

// Default geometry, in surface units.
const (
	DefaultHorizontalSpacing = 200.0
	DefaultVerticalSpacing   = 150.0
	DefaultOffsetX           = 100.0
	DefaultOffsetY           = 80.0
	DefaultNodeRadius        = 60.0
)

// Point is a position in surface coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a placed course.
type Node struct {
	ID     string `json:"id"`
	Layer  int    `json:"layer"`
	Slot   int    `json:"slot"`
	Center Point  `json:"center"`
}

// Options configures [Compute].
type Options struct {
	HorizontalSpacing float64 // distance between layer columns
	VerticalSpacing   float64 // distance between slots within a layer
	OffsetX           float64 // x of layer 0
	OffsetY           float64 // y of slot 0
	NodeRadius        float64 // circumscribed radius of a node
}

// DefaultOptions returns the standard geometry.
func DefaultOptions() Options {
	return Options{
		HorizontalSpacing: DefaultHorizontalSpacing,
		VerticalSpacing:   DefaultVerticalSpacing,
		OffsetX:           DefaultOffsetX,
		OffsetY:           DefaultOffsetY,
		NodeRadius:        DefaultNodeRadius,
	}
}

// Option mutates [Options].
type Option func(*Options)

// WithSpacing sets the distance between layers and between slots.
func WithSpacing(horizontal, vertical float64) Option {
	return func(o *Options) {
		o.HorizontalSpacing = horizontal
		o.VerticalSpacing = vertical
	}
}

// WithOffset sets the center of the first slot of layer 0.
func WithOffset(x, y float64) Option {
	return func(o *Options) {
		o.OffsetX = x
		o.OffsetY = y
	}
}

// WithNodeRadius sets the node radius used by drawing and hit-testing.
func WithNodeRadius(r float64) Option {
	return func(o *Options) { o.NodeRadius = r }
}

// Layout is the immutable result of [Compute].
//
// A nil *Layout behaves as an empty layout. Layout is safe for concurrent
// reads.
type Layout struct {
	nodes  []Node
	index  map[string]int
	layers int
	opts   Options
}

// Compute places every catalog course.
//
// Courses are grouped by their depth in depths and keep catalog order inside
// a group; the n-th course of layer d is centered at
//
//	(d*HorizontalSpacing + OffsetX, n*VerticalSpacing + OffsetY)
//
// A course missing from depths, or with a negative depth, is placed in layer
// 0, so every course receives exactly one position.
func Compute(cat *catalog.Catalog, depths map[string]int, opts ...Option) *Layout {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ids := cat.IDs()
	l := &Layout{
		nodes: make([]Node, 0, len(ids)),
		index: make(map[string]int, len(ids)),
		opts:  o,
	}
	slots := make(map[int]int)
	for _, id := range ids {
		layer := max(depths[id], 0)
		slot := slots[layer]
		slots[layer] = slot + 1

		l.index[id] = len(l.nodes)
		l.nodes = append(l.nodes, Node{
			ID:    id,
			Layer: layer,
			Slot:  slot,
			Center: Point{
				X: float64(layer)*o.HorizontalSpacing + o.OffsetX,
				Y: float64(slot)*o.VerticalSpacing + o.OffsetY,
			},
		})
		l.layers = max(l.layers, layer+1)
	}
	return l
}

// Build runs [AssignLayers] and [Compute] in one step.
func Build(cat *catalog.Catalog, opts ...Option) *Layout {
	return Compute(cat, AssignLayers(cat), opts...)
}

// Position returns the center of the course with the given ID.
func (l *Layout) Position(id string) (Point, bool) {
	if l == nil {
		return Point{}, false
	}
	i, ok := l.index[id]
	if !ok {
		return Point{}, false
	}
	return l.nodes[i].Center, true
}

// Node returns the placement of the course with the given ID.
func (l *Layout) Node(id string) (Node, bool) {
	if l == nil {
		return Node{}, false
	}
	i, ok := l.index[id]
	if !ok {
		return Node{}, false
	}
	return l.nodes[i], true
}

// Nodes returns all placements in catalog order.
func (l *Layout) Nodes() []Node {
	if l == nil {
		return nil
	}
	return slices.Clone(l.nodes)
}

// Len returns the number of placed courses.
func (l *Layout) Len() int {
	if l == nil {
		return 0
	}
	return len(l.nodes)
}

// Layers returns the number of layer columns (max depth + 1), or 0 when the
// layout is empty.
func (l *Layout) Layers() int {
	if l == nil {
		return 0
	}
	return l.layers
}

// NodeRadius returns the circumscribed node radius.
func (l *Layout) NodeRadius() float64 {
	if l == nil {
		return DefaultNodeRadius
	}
	return l.opts.NodeRadius
}

// Options returns the geometry this layout was computed with.
func (l *Layout) Options() Options {
	if l == nil {
		return DefaultOptions()
	}
	return l.opts
}

// Bounds returns the smallest width and height, measured from the origin,
// that contain every node plus half a radius of margin on the right and bottom.
func (l *Layout) Bounds() (width, height float64) {
	if l == nil {
		return 0, 0
	}
	r := l.opts.NodeRadius
	for _, n := range l.nodes {
		width = max(width, n.Center.X+r+r/2)
		height = max(height, n.Center.Y+r+r/2)
	}
	return width, height
}
