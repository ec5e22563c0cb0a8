package hittest

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/layout"
)

func mba() (*catalog.Catalog, *layout.Layout) {
	cat := catalog.MustNew([]catalog.Course{
		{ID: "MBA501", Name: "Financial Accounting", Credits: 3, Category: catalog.CategoryCore},
		{ID: "MBA505", Name: "Corporate Finance", Credits: 3, Category: catalog.CategoryFinance, Prerequisites: []string{"MBA501"}},
	})
	return cat, layout.Build(cat)
}

func TestTest(t *testing.T) {
	cat, l := mba()

	tests := []struct {
		name   string
		p      layout.Point
		want   string
		wantOK bool
	}{
		{"center", layout.Point{X: 100, Y: 80}, "MBA501", true},
		{"inside", layout.Point{X: 140, Y: 110}, "MBA501", true},
		{"second node", layout.Point{X: 300, Y: 80}, "MBA505", true},
		{"on radius is a miss", layout.Point{X: 160, Y: 80}, "", false},
		{"between nodes", layout.Point{X: 200, Y: 80}, "", false},
		{"far away", layout.Point{X: 900, Y: 700}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Test(tt.p, l, cat)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Test(%v) = (%q, %v), want (%q, %v)", tt.p, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTestFirstMatchWins(t *testing.T) {
	cat := catalog.MustNew([]catalog.Course{
		{ID: "A", Name: "A", Category: catalog.CategoryCore},
		{ID: "B", Name: "B", Category: catalog.CategoryCore},
	})
	// Spacing smaller than the radius makes the circles overlap.
	l := layout.Build(cat, layout.WithSpacing(200, 50))

	got, ok := Test(layout.Point{X: 100, Y: 105}, l, cat)
	if !ok || got != "A" {
		t.Errorf("Test() = (%q, %v), want A", got, ok)
	}
}

func TestTestDegenerate(t *testing.T) {
	cat, l := mba()
	if _, ok := Test(layout.Point{X: 100, Y: 80}, nil, cat); ok {
		t.Error("Test() with nil layout should miss")
	}
	if _, ok := Test(layout.Point{X: 100, Y: 80}, l, catalog.MustNew(nil)); ok {
		t.Error("Test() with a catalog lacking the node should miss")
	}
}

func TestViewport(t *testing.T) {
	// A 1000x800 surface shown at half size, offset by (10, 20).
	v := Viewport{SurfaceWidth: 1000, SurfaceHeight: 800, Left: 10, Top: 20, DisplayWidth: 500, DisplayHeight: 400}

	got, ok := v.ToSurface(layout.Point{X: 60, Y: 60})
	if !ok || got != (layout.Point{X: 100, Y: 80}) {
		t.Errorf("ToSurface() = (%v, %v), want ({100 80}, true)", got, ok)
	}

	if _, ok := (Viewport{SurfaceWidth: 1000, SurfaceHeight: 800}).ToSurface(layout.Point{}); ok {
		t.Error("ToSurface() with zero display size should be unavailable")
	}
	if !Identity(10, 10).Available() {
		t.Error("Identity() should be available")
	}
}

func TestHover(t *testing.T) {
	cat, l := mba()
	v := Viewport{SurfaceWidth: 1000, SurfaceHeight: 800, Left: 10, Top: 20, DisplayWidth: 500, DisplayHeight: 400}

	d := Hover(layout.Point{X: 160, Y: 60}, v, l, cat)
	if d == nil {
		t.Fatal("Hover() = nil, want MBA505")
	}
	if d.Course.ID != "MBA505" || d.Course.Name != "Corporate Finance" {
		t.Errorf("Hover().Course = %+v", d.Course)
	}
	if d.Display != (layout.Point{X: 180, Y: 80}) {
		t.Errorf("Hover().Display = %v, want {180 80}", d.Display)
	}
	if d.Surface != (layout.Point{X: 300, Y: 80}) {
		t.Errorf("Hover().Surface = %v, want {300 80}", d.Surface)
	}

	if d := Hover(layout.Point{X: 500, Y: 400}, v, l, cat); d != nil {
		t.Errorf("Hover() over empty space = %+v, want nil", d)
	}
	if d := Hover(layout.Point{X: 60, Y: 60}, Viewport{}, l, cat); d != nil {
		t.Errorf("Hover() with unavailable viewport = %+v, want nil", d)
	}
}

func TestHitProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)
	cat, l := mba()
	r := l.NodeRadius()

	properties.Property("points strictly inside a node hit it", prop.ForAll(
		func(angle, frac float64) bool {
			c, _ := l.Position("MBA501")
			d := frac * r * 0.999
			got, ok := Test(layout.Point{X: c.X + d*math.Cos(angle), Y: c.Y + d*math.Sin(angle)}, l, cat)
			return ok && got == "MBA501"
		},
		gen.Float64Range(0, 2*math.Pi),
		gen.Float64Range(0, 1),
	))

	properties.Property("points at or beyond the radius of every node miss", prop.ForAll(
		func(x, y float64) bool {
			p := layout.Point{X: x, Y: y}
			for _, n := range l.Nodes() {
				if math.Hypot(x-n.Center.X, y-n.Center.Y) < r {
					return true
				}
			}
			_, ok := Test(p, l, cat)
			return !ok
		},
		gen.Float64Range(-200, 1200),
		gen.Float64Range(-200, 1000),
	))

	properties.TestingRun(t)
}
