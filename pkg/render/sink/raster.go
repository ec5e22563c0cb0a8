package sink

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/coursegraph/pkg/fonts"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/render"
)

type faceKey struct {
	size float64
	bold bool
}

// Raster is a [render.Surface] backed by an in-memory RGBA image.
type Raster struct {
	dc         *gg.Context
	background color.Color
	faces      map[faceKey]font.Face
	err        error
}

// NewRaster returns a white raster surface of the given pixel size.
func NewRaster(width, height int) *Raster {
	return NewRasterWithBackground(width, height, color.White)
}

// NewRasterWithBackground returns a raster surface cleared to bg.
func NewRasterWithBackground(width, height int, bg color.Color) *Raster {
	r := &Raster{
		dc:         gg.NewContext(max(width, 1), max(height, 1)),
		background: bg,
		faces:      make(map[faceKey]font.Face),
	}
	r.Clear()
	return r
}

func (r *Raster) Size() (float64, float64) {
	return float64(r.dc.Width()), float64(r.dc.Height())
}

func (r *Raster) Clear() {
	r.dc.SetColor(r.background)
	r.dc.Clear()
}

func (r *Raster) Line(from, to layout.Point, stroke render.Stroke) {
	if stroke.Color == nil {
		return
	}
	r.dc.SetColor(stroke.Color)
	r.dc.SetLineWidth(stroke.Width)
	r.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	r.dc.Stroke()
}

func (r *Raster) Polygon(points []layout.Point, fill color.Color, stroke render.Stroke) {
	if len(points) < 3 {
		return
	}
	r.dc.NewSubPath()
	r.dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.dc.ClosePath()

	if fill != nil {
		r.dc.SetColor(fill)
		r.dc.FillPreserve()
	}
	if stroke.Color != nil && stroke.Width > 0 {
		r.dc.SetColor(stroke.Color)
		r.dc.SetLineWidth(stroke.Width)
		r.dc.StrokePreserve()
	}
	r.dc.ClearPath()
}

func (r *Raster) Text(s string, at layout.Point, style render.TextStyle) {
	if face := r.face(style); face != nil {
		r.dc.SetFontFace(face)
	}
	r.dc.SetColor(style.Color)
	r.dc.DrawStringAnchored(s, at.X, at.Y, 0.5, 0.5)
}

func (r *Raster) face(style render.TextStyle) font.Face {
	key := faceKey{size: style.Size, bold: style.Bold}
	if f, ok := r.faces[key]; ok {
		return f
	}
	f, err := fonts.Face(style.Size, style.Bold)
	if err != nil {
		// gg keeps its built-in face; report the failure at encode time.
		r.err = err
		return nil
	}
	r.faces[key] = f
	return f
}

// Image returns the drawn image.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// Err reports the first font loading failure, if any.
func (r *Raster) Err() error { return r.err }

// EncodePNG writes the image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

var _ render.Surface = (*Raster)(nil)
