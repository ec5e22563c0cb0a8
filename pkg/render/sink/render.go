package sink

import (
	"bytes"
	"context"
	"math"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/render"
)

// Default canvas size used when neither an explicit size nor a non-empty
// layout is available.
const (
	DefaultWidth  = 1000.0
	DefaultHeight = 800.0
)

// Raster limits. A canvas side is measured in pixels after scaling.
const (
	MaxCanvasSize = 16384
	MaxScale      = 8.0
)

// Option configures the convenience renderers.
type Option func(*config)

type config struct {
	width, height float64
	scale         float64
	renderOpts    []render.Option
}

// WithSize fixes the canvas size instead of fitting it to the layout.
func WithSize(width, height float64) Option {
	return func(c *config) { c.width, c.height = width, height }
}

// WithScale multiplies the raster resolution (default 1.0).
func WithScale(s float64) Option { return func(c *config) { c.scale = s } }

// WithRenderOptions passes options through to [render.Render].
func WithRenderOptions(opts ...render.Option) Option {
	return func(c *config) { c.renderOpts = append(c.renderOpts, opts...) }
}

func newConfig(l *layout.Layout, opts ...Option) config {
	c := config{scale: 1}
	for _, opt := range opts {
		opt(&c)
	}
	if c.width <= 0 || c.height <= 0 {
		c.width, c.height = l.Bounds()
	}
	if c.width <= 0 || c.height <= 0 {
		c.width, c.height = DefaultWidth, DefaultHeight
	}
	if c.scale <= 0 {
		c.scale = 1
	}
	return c
}

// pixels returns the raster size, or an [cgerrors.ErrCodeInvalidInput]
// error when the scaled canvas is not finite or exceeds [MaxCanvasSize].
func (c config) pixels() (int, int, error) {
	w, h := math.Ceil(c.width*c.scale), math.Ceil(c.height*c.scale)
	if !(w <= MaxCanvasSize && h <= MaxCanvasSize) {
		return 0, 0, cgerrors.New(cgerrors.ErrCodeInvalidInput,
			"canvas %gx%g at scale %g exceeds %dpx", c.width, c.height, c.scale, MaxCanvasSize)
	}
	return int(w), int(h), nil
}

// RenderPNG draws the diagram on a [Raster] and returns the encoded image.
func RenderPNG(cat *catalog.Catalog, l *layout.Layout, sel catalog.Selection, opts ...Option) ([]byte, error) {
	c := newConfig(l, opts...)
	w, h, err := c.pixels()
	if err != nil {
		return nil, err
	}
	r := NewRaster(w, h)
	r.dc.Scale(c.scale, c.scale)
	render.Render(r, cat, l, sel, c.renderOpts...)
	if err := r.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderSVG draws the diagram on an [SVG] surface and returns the document.
func RenderSVG(cat *catalog.Catalog, l *layout.Layout, sel catalog.Selection, opts ...Option) []byte {
	c := newConfig(l, opts...)
	s := NewSVG(c.width, c.height)
	render.Render(s, cat, l, sel, c.renderOpts...)
	return s.Bytes()
}

// RenderPDF renders the diagram as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, cat *catalog.Catalog, l *layout.Layout, sel catalog.Selection, opts ...Option) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(cat, l, sel, opts...))
}
