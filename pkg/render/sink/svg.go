package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"strings"

	"github.com/matzehuels/coursegraph/pkg/fonts"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/render"
)

// SVG is a [render.Surface] that emits one SVG element per drawing call.
type SVG struct {
	width, height float64
	background    color.Color
	body          bytes.Buffer
}

// NewSVG returns a white SVG surface of the given size.
func NewSVG(width, height float64) *SVG {
	s := &SVG{width: width, height: height, background: color.White}
	s.Clear()
	return s
}

func (s *SVG) Size() (float64, float64) { return s.width, s.height }

func (s *SVG) Clear() {
	s.body.Reset()
	fmt.Fprintf(&s.body, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		s.width, s.height, hex(s.background))
}

func (s *SVG) Line(from, to layout.Point, stroke render.Stroke) {
	fmt.Fprintf(&s.body, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.1f" stroke-linecap="round"/>`+"\n",
		from.X, from.Y, to.X, to.Y, hex(stroke.Color), stroke.Width)
}

func (s *SVG) Polygon(points []layout.Point, fill color.Color, stroke render.Stroke) {
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	fmt.Fprintf(&s.body, `  <polygon points="%s" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
		strings.Join(coords, " "), hex(fill), hex(stroke.Color), stroke.Width)
}

func (s *SVG) Text(text string, at layout.Point, style render.TextStyle) {
	weight := "normal"
	if style.Bold {
		weight = "bold"
	}
	fmt.Fprintf(&s.body, `  <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%.0f" font-weight="%s" fill="%s">%s</text>`+"\n",
		at.X, at.Y, fonts.FallbackFontFamily, style.Size, weight, hex(style.Color), escapeXML(text))
}

// Bytes returns the complete SVG document.
func (s *SVG) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.width, s.height, s.width, s.height)
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

var _ render.Surface = (*SVG)(nil)
