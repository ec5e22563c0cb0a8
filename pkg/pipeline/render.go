package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/observability"
	"github.com/matzehuels/coursegraph/pkg/render"
	"github.com/matzehuels/coursegraph/pkg/render/nodelink"
	"github.com/matzehuels/coursegraph/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, cat *catalog.Catalog, l *layout.Layout, sel catalog.Selection, opts Options) (artifacts map[string][]byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	sinkOpts := buildSinkOptions(opts)
	artifacts = make(map[string][]byte, len(opts.Formats))

	var dot string
	for _, format := range opts.Formats {
		var data []byte

		switch format {
		case FormatPNG:
			data, err = sink.RenderPNG(cat, l, sel, sinkOpts...)
		case FormatSVG:
			data = sink.RenderSVG(cat, l, sel, sinkOpts...)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, cat, l, sel, sinkOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(cat, l, sel)
		case FormatDOT, FormatGraphviz:
			if dot == "" {
				dot = nodelink.ToDOT(cat, sel, nodelink.Options{Detailed: opts.Detailed})
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = nodelink.RenderSVG(ctx, dot)
			}
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSinkOptions builds the canvas and drawing options shared by the
// raster, vector and PDF outputs.
func buildSinkOptions(opts Options) []sink.Option {
	var sinkOpts []sink.Option
	if opts.Width > 0 && opts.Height > 0 {
		sinkOpts = append(sinkOpts, sink.WithSize(opts.Width, opts.Height))
	}
	if opts.Scale > 0 {
		sinkOpts = append(sinkOpts, sink.WithScale(opts.Scale))
	}
	if opts.EdgeInset > 0 {
		sinkOpts = append(sinkOpts, sink.WithRenderOptions(render.WithEdgeInset(opts.EdgeInset)))
	}
	return sinkOpts
}
