package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
	"github.com/matzehuels/coursegraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the course name, credits and category to node labels.
	// When false, only the course ID is shown.
	Detailed bool

	// Palette colors nodes by status. The zero value uses [render.DefaultPalette].
	Palette *render.Palette
}

// ToDOT converts a catalog to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Nodes are hexagons colored by their [render.Status] under sel. Edges run
// from prerequisite to dependent course; prerequisites missing from the
// catalog are skipped.
func ToDOT(cat *catalog.Catalog, sel catalog.Selection, opts Options) string {
	palette := render.DefaultPalette()
	if opts.Palette != nil {
		palette = *opts.Palette
	}
	statuses := render.Classify(cat, sel)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=hexagon, style=filled, penwidth=2, fontname=\"Helvetica-Bold\", fontsize=16, margin=\"0.2,0.1\"];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=2, arrowsize=0.7];\n", hexColor(palette.Edge))
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, c := range cat.Courses() {
		label := fmtLabel(c, opts.Detailed)
		attrs := fmtAttrs(palette.Node(statuses[c.ID]), label)
		fmt.Fprintf(&buf, "  %q [%s];\n", c.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range cat.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(c catalog.Course, detailed bool) string {
	if !detailed {
		return c.ID
	}
	return fmt.Sprintf("%s\n%s\n%d credits · %s", c.ID, c.Name, c.Credits, c.Category)
}

func fmtAttrs(style render.NodeStyle, label string) []string {
	return []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", hexColor(style.Fill)),
		fmt.Sprintf("color=%q", hexColor(style.Stroke)),
		fmt.Sprintf("fontcolor=%q", hexColor(style.Text)),
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "render graphviz")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
