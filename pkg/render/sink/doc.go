// Package sink provides output formats for rendered course diagrams.
//
// # Overview
//
// A sink either implements [render.Surface] and turns the drawing calls into
// an encoded file, or exports the layout as data:
//
//   - [Raster]: anti-aliased raster drawing with fogleman/gg, encoded as PNG
//   - [SVG]: scalable vector graphics, one element per drawing call
//   - [RenderJSON]: node positions, statuses and edges for external tools
//   - [RenderPDF]: PDF via SVG conversion (requires rsvg-convert)
//
// Basic usage:
//
//	r := sink.NewRaster(1000, 800)
//	render.Render(r, cat, l, sel)
//	err := r.EncodePNG(w)
//
// The convenience functions [RenderPNG], [RenderSVG] and [RenderPDF] size the
// surface from [layout.Layout.Bounds] when no explicit size is given.
package sink
