// Package pipeline provides the load → layout → render pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a catalog file, or use the embedded MBA catalog
//  2. Layout: assign layers and compute node positions
//  3. Render: draw the diagram in the requested formats
//
// Each stage can be run on its own or as part of [Runner.Execute]. Rendered
// artifacts are cached per catalog content, selection and render settings.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Selection: []string{"MBA505"},
//	    Formats:   []string{pipeline.FormatPNG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts[pipeline.FormatPNG]
package pipeline

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coursegraph/pkg/cache"
	"github.com/matzehuels/coursegraph/pkg/catalog"
	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/render/sink"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the raster resolution multiplier.
	DefaultScale = 1.0

	// DefaultCatalogSource names the embedded catalog in logs and results.
	DefaultCatalogSource = "embedded:mba"
)

// Format constants for output formats.
const (
	FormatPNG      = "png"
	FormatSVG      = "svg"
	FormatPDF      = "pdf"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz-svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:      true,
	FormatSVG:      true,
	FormatPDF:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatGraphviz: true,
}

// FormatNames lists the supported formats in display order.
var FormatNames = []string{FormatPNG, FormatSVG, FormatPDF, FormatJSON, FormatDOT, FormatGraphviz}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch format {
	case FormatDOT:
		return ".dot"
	case FormatGraphviz:
		return ".graphviz.svg"
	default:
		return "." + format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	CatalogPath string `json:"catalog,omitempty"` // empty uses the embedded catalog

	// Selection
	Selection []string `json:"selection,omitempty"`

	// Layout options; zero values take the layout defaults
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty"`
	OffsetX           float64 `json:"offset_x,omitempty"`
	OffsetY           float64 `json:"offset_y,omitempty"`
	NodeRadius        float64 `json:"node_radius,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Width     float64  `json:"width,omitempty"`  // zero fits the layout
	Height    float64  `json:"height,omitempty"` // zero fits the layout
	Scale     float64  `json:"scale,omitempty"`
	EdgeInset float64  `json:"edge_inset,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"` // node-link labels with names and credits
	Refresh   bool     `json:"refresh,omitempty"`  // bypass the artifact cache

	// Runtime options (not serialized)
	Logger  *log.Logger      `json:"-"`
	Catalog *catalog.Catalog `json:"-"` // takes precedence over CatalogPath

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Catalog is the loaded catalog.
	Catalog *catalog.Catalog

	// CatalogHash is the content hash of the catalog.
	CatalogHash string

	// Source names where the catalog came from.
	Source string

	// Selection holds the requested course IDs found in the catalog.
	Selection catalog.Selection

	// Unknown lists requested course IDs missing from the catalog.
	Unknown []string

	// Layout is the computed layout.
	Layout *layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CourseCount int
	EdgeCount   int
	Layers      int
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return cgerrors.New(cgerrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout rejects negative and non-finite geometry.
func (o *Options) ValidateForLayout() error {
	o.setLogger()
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"horizontal_spacing", o.HorizontalSpacing},
		{"vertical_spacing", o.VerticalSpacing},
		{"node_radius", o.NodeRadius},
	} {
		if err := checkGeometry(f.name, f.v); err != nil {
			return err
		}
	}
	if !finite(o.OffsetX) || !finite(o.OffsetY) {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "offset must be finite, got %g,%g", o.OffsetX, o.OffsetY)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"width", o.Width},
		{"height", o.Height},
		{"scale", o.Scale},
		{"edge_inset", o.EdgeInset},
	} {
		if err := checkGeometry(f.name, f.v); err != nil {
			return err
		}
	}
	if o.Scale > sink.MaxScale {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "scale must be at most %g, got %g", sink.MaxScale, o.Scale)
	}
	if o.Width*o.Scale > sink.MaxCanvasSize || o.Height*o.Scale > sink.MaxCanvasSize {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput,
			"canvas %gx%g at scale %g exceeds %dpx", o.Width, o.Height, o.Scale, sink.MaxCanvasSize)
	}
	return ValidateFormats(o.Formats)
}

// checkGeometry rejects negative, NaN and infinite values.
func checkGeometry(name string, v float64) error {
	if !finite(v) {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "%s must be finite, got %g", name, v)
	}
	if v < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "%s must not be negative, got %g", name, v)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutOptions converts the layout fields to [layout.Option] values.
// Zero fields keep the layout defaults.
func (o *Options) LayoutOptions() []layout.Option {
	d := layout.DefaultOptions()
	h := cmp.Or(o.HorizontalSpacing, d.HorizontalSpacing)
	v := cmp.Or(o.VerticalSpacing, d.VerticalSpacing)
	x := cmp.Or(o.OffsetX, d.OffsetX)
	y := cmp.Or(o.OffsetY, d.OffsetY)
	return []layout.Option{
		layout.WithSpacing(h, v),
		layout.WithOffset(x, y),
		layout.WithNodeRadius(cmp.Or(o.NodeRadius, d.NodeRadius)),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string, sel catalog.Selection) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		Selection: sel.IDs(),
		Width:     o.Width,
		Height:    o.Height,
		Scale:     o.Scale,
		EdgeInset: o.EdgeInset,
		Detailed:  o.Detailed,
		Geometry: []float64{
			o.HorizontalSpacing, o.VerticalSpacing,
			o.OffsetX, o.OffsetY, o.NodeRadius,
		},
	}
}

// HasFormat reports whether f was requested.
func (o *Options) HasFormat(f string) bool { return slices.Contains(o.Formats, f) }

// Source names the catalog the options refer to.
func (o *Options) Source() string {
	if o.Catalog != nil {
		return "inline"
	}
	if o.CatalogPath == "" {
		return DefaultCatalogSource
	}
	return fmt.Sprintf("file:%s", o.CatalogPath)
}
