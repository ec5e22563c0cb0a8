// Package nodelink renders the course catalog as a Graphviz node-link diagram.
//
// # Overview
//
// This is an alternative to the hexagon layout in [render]: Graphviz places
// the courses itself, left to right along prerequisite edges, while nodes
// keep the selected/prerequisite/neutral coloring.
//
// # Usage
//
// Convert a catalog to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(cat, sel, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
