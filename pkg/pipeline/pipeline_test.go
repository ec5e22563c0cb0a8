package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
	"github.com/matzehuels/coursegraph/pkg/layout"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"graphviz-svg", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestFormatNamesMatchValidFormats(t *testing.T) {
	if len(FormatNames) != len(ValidFormats) {
		t.Fatalf("FormatNames has %d entries, ValidFormats %d", len(FormatNames), len(ValidFormats))
	}
	for _, f := range FormatNames {
		if !ValidFormats[f] {
			t.Errorf("%q listed but not valid", f)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		FormatPNG:      ".png",
		FormatSVG:      ".svg",
		FormatPDF:      ".pdf",
		FormatJSON:     ".json",
		FormatDOT:      ".dot",
		FormatGraphviz: ".graphviz.svg",
	}
	for format, want := range tests {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %v, got %v", DefaultScale, opts.Scale)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero", Options{}, false},
		{"explicit", Options{Formats: []string{"png", "json"}, Width: 800, Height: 600, Scale: 2}, false},
		{"bad format", Options{Formats: []string{"gif"}}, true},
		{"negative spacing", Options{HorizontalSpacing: -1}, true},
		{"negative radius", Options{NodeRadius: -5}, true},
		{"negative width", Options{Width: -10}, true},
		{"negative inset", Options{EdgeInset: -1}, true},
		{"NaN radius", Options{NodeRadius: math.NaN()}, true},
		{"infinite spacing", Options{VerticalSpacing: math.Inf(1)}, true},
		{"NaN offset", Options{OffsetY: math.NaN()}, true},
		{"NaN width", Options{Width: math.NaN()}, true},
		{"infinite scale", Options{Scale: math.Inf(1)}, true},
		{"scale above limit", Options{Scale: 200}, true},
		{"scale at limit", Options{Scale: 8}, false},
		{"scaled width above limit", Options{Width: 4000, Height: 100, Scale: 5}, true},
		{"height above limit", Options{Width: 100, Height: 20000}, true},
		{"canvas at limit", Options{Width: 8192, Height: 8192, Scale: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	formats := opts.Formats
	scale := opts.Scale

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if len(opts.Formats) != len(formats) || opts.Formats[0] != formats[0] {
		t.Error("Formats changed on second call")
	}
	if opts.Scale != scale {
		t.Error("Scale changed on second call")
	}
}

func TestLayoutOptions(t *testing.T) {
	cat := catalog.MustNew([]catalog.Course{
		{ID: "A", Name: "A", Category: catalog.CategoryCore},
		{ID: "B", Name: "B", Category: catalog.CategoryCore, Prerequisites: []string{"A"}},
	})

	t.Run("defaults", func(t *testing.T) {
		opts := Options{}
		l := layout.Build(cat, opts.LayoutOptions()...)
		if got, want := l.Options(), layout.DefaultOptions(); got != want {
			t.Errorf("Options() = %+v, want %+v", got, want)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		opts := Options{HorizontalSpacing: 100, NodeRadius: 30}
		l := layout.Build(cat, opts.LayoutOptions()...)
		p, _ := l.Position("B")
		d := layout.DefaultOptions()
		if p.X != 100+d.OffsetX || p.Y != d.OffsetY {
			t.Errorf("B at %+v", p)
		}
		if l.NodeRadius() != 30 {
			t.Errorf("NodeRadius() = %v, want 30", l.NodeRadius())
		}
	})
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Width: 800, Height: 600, Scale: 2, Detailed: true}
	k := opts.ArtifactKeyOpts(FormatPNG, catalog.NewSelection("MBA505", "MBA501"))

	if k.Format != FormatPNG || k.Width != 800 || k.Height != 600 || k.Scale != 2 || !k.Detailed {
		t.Errorf("unexpected key opts %+v", k)
	}
	if len(k.Selection) != 2 || k.Selection[0] != "MBA501" {
		t.Errorf("Selection = %v, want sorted IDs", k.Selection)
	}
}

func TestSource(t *testing.T) {
	tests := []struct {
		opts Options
		want string
	}{
		{Options{}, DefaultCatalogSource},
		{Options{CatalogPath: "courses.yaml"}, "file:courses.yaml"},
		{Options{CatalogPath: "courses.yaml", Catalog: catalog.Default()}, "inline"},
	}
	for _, tt := range tests {
		if got := tt.opts.Source(); got != tt.want {
			t.Errorf("Source() = %q, want %q", got, tt.want)
		}
	}
}

func TestRenderRejectsOversizeFittedCanvas(t *testing.T) {
	cat := catalog.Default()
	opts := Options{Formats: []string{FormatPNG}, HorizontalSpacing: 1e6}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}

	l := ComputeLayout(context.Background(), cat, opts)
	_, err := Render(context.Background(), cat, l, catalog.Selection{}, opts)
	if !cgerrors.Is(err, cgerrors.ErrCodeInvalidInput) {
		t.Errorf("Render() error = %v, want INVALID_INPUT", err)
	}
}
