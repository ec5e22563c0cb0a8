package view

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/hittest"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/observability"
	"github.com/matzehuels/coursegraph/pkg/render"
)

func testCatalog() *catalog.Catalog {
	return catalog.MustNew([]catalog.Course{
		{ID: "MBA501", Name: "Financial Accounting", Credits: 3, Category: catalog.CategoryCore},
		{ID: "MBA505", Name: "Corporate Finance", Credits: 3, Category: catalog.CategoryFinance, Prerequisites: []string{"MBA501"}},
	})
}

func newTestView(t *testing.T, opts ...Option) (*View, *render.Recorder) {
	t.Helper()
	rec := render.NewRecorder(1000, 800)
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	return New(context.Background(), rec, testCatalog(), opts...), rec
}

func polygons(rec *render.Recorder) []render.Op {
	var out []render.Op
	for _, op := range rec.Ops {
		if op.Kind == render.OpPolygon {
			out = append(out, op)
		}
	}
	return out
}

func TestNewDraws(t *testing.T) {
	v, rec := newTestView(t)

	require.NotEmpty(t, rec.Ops)
	assert.Equal(t, render.OpClear, rec.Ops[0].Kind)
	assert.Equal(t, 3, rec.Count(render.OpLine))
	assert.Equal(t, 2, rec.Count(render.OpPolygon))
	assert.Equal(t, 2, rec.Count(render.OpText))

	st := v.Snapshot()
	assert.Equal(t, 2, st.Layout.Len())
	assert.Equal(t, 0, st.Selection.Len())
	assert.Same(t, st.Layout, v.Layout())
}

func TestSetSelection(t *testing.T) {
	v, rec := newTestView(t)
	before := v.Layout()

	v.SetSelectionIDs(context.Background(), []string{"MBA505"})

	assert.NotSame(t, before, v.Layout(), "selection change should relayout")
	assert.True(t, v.Snapshot().Selection.Has("MBA505"))

	pal := render.DefaultPalette()
	polys := polygons(rec)
	require.Len(t, polys, 2)
	assert.Equal(t, pal.Prerequisite.Fill, polys[0].Fill, "MBA501")
	assert.Equal(t, pal.Selected.Fill, polys[1].Fill, "MBA505")
}

func TestSetCatalog(t *testing.T) {
	v, rec := newTestView(t)
	v.SetSelectionIDs(context.Background(), []string{"MBA505"})
	require.NotNil(t, v.PointerMove(layout.Point{X: 100, Y: 80}))

	v.SetCatalog(context.Background(), catalog.MustNew([]catalog.Course{
		{ID: "MBA505", Name: "Corporate Finance", Credits: 3, Category: catalog.CategoryFinance},
	}))

	assert.Nil(t, v.Hover(), "catalog change clears hover")
	assert.True(t, v.Snapshot().Selection.Has("MBA505"), "selection survives catalog change")
	assert.Equal(t, 1, v.Layout().Len())
	assert.Equal(t, 1, rec.Count(render.OpPolygon))
	assert.Equal(t, 0, rec.Count(render.OpLine))
}

func TestPointer(t *testing.T) {
	v, rec := newTestView(t)
	drawn := len(rec.Ops)

	d := v.PointerMove(layout.Point{X: 100, Y: 80})
	require.NotNil(t, d)
	assert.Equal(t, "MBA501", d.Course.ID)
	assert.Equal(t, layout.Point{X: 120, Y: 100}, d.Display)
	assert.Same(t, d, v.Hover())

	d = v.PointerMove(layout.Point{X: 310, Y: 90})
	require.NotNil(t, d)
	assert.Equal(t, "MBA505", d.Course.ID)

	assert.Nil(t, v.PointerMove(layout.Point{X: 900, Y: 700}))
	assert.Nil(t, v.Hover())

	v.PointerMove(layout.Point{X: 100, Y: 80})
	v.PointerLeave()
	assert.Nil(t, v.Hover())

	assert.Len(t, rec.Ops, drawn, "pointer events must not redraw")
}

func TestViewportScaling(t *testing.T) {
	v, _ := newTestView(t)
	v.SetViewport(hittest.Viewport{
		SurfaceWidth:  1000,
		SurfaceHeight: 800,
		Left:          10,
		Top:           10,
		DisplayWidth:  500,
		DisplayHeight: 400,
	})

	d := v.PointerMove(layout.Point{X: 60, Y: 50})
	require.NotNil(t, d)
	assert.Equal(t, "MBA501", d.Course.ID)
	assert.InDelta(t, 100, d.Surface.X, 1e-9)
	assert.InDelta(t, 80, d.Surface.Y, 1e-9)
	assert.Equal(t, layout.Point{X: 80, Y: 70}, d.Display)
}

func TestNilSurface(t *testing.T) {
	v := New(context.Background(), nil, testCatalog(), WithLogger(log.New(io.Discard)))

	assert.False(t, v.Viewport().Available())
	assert.Nil(t, v.PointerMove(layout.Point{X: 100, Y: 80}))
	v.SetSelectionIDs(context.Background(), []string{"MBA501"})
	v.Redraw()
	assert.Equal(t, 2, v.Layout().Len())

	v.SetViewport(hittest.Identity(1000, 800))
	assert.NotNil(t, v.PointerMove(layout.Point{X: 100, Y: 80}))
}

func TestWithViewport(t *testing.T) {
	v, _ := newTestView(t, WithViewport(hittest.Viewport{}))
	assert.Nil(t, v.PointerMove(layout.Point{X: 100, Y: 80}), "explicit unavailable viewport")
}

func TestEmptyCatalog(t *testing.T) {
	rec := render.NewRecorder(100, 100)
	v := New(context.Background(), rec, nil, WithLogger(log.New(io.Discard)))

	assert.Equal(t, 0, v.Layout().Len())
	assert.Nil(t, v.PointerMove(layout.Point{X: 10, Y: 10}))
	require.Len(t, rec.Ops, 1)
	assert.Equal(t, render.OpClear, rec.Ops[0].Kind)
}

func TestConcurrentReaders(t *testing.T) {
	v, _ := newTestView(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				if d := v.PointerMove(layout.Point{X: 100, Y: 80}); d != nil {
					assert.Equal(t, "MBA501", d.Course.ID)
				}
				st := v.Snapshot()
				assert.Equal(t, st.Catalog.Len(), st.Layout.Len())
			}
		}()
	}
	for i := range 50 {
		if i%2 == 0 {
			v.SetSelectionIDs(ctx, []string{"MBA505"})
		} else {
			v.SetSelection(ctx, catalog.NewSelection())
		}
	}
	wg.Wait()
}

type layoutRecorder struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	nodes  []int
	layers []int
}

func (r *layoutRecorder) OnLayoutComplete(_ context.Context, nodes, layers int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = append(r.nodes, nodes)
	r.layers = append(r.layers, layers)
}

func TestLayoutHooks(t *testing.T) {
	hooks := &layoutRecorder{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	v, _ := newTestView(t)
	v.SetSelectionIDs(context.Background(), []string{"MBA501"})

	assert.Equal(t, []int{2, 2}, hooks.nodes)
	assert.Equal(t, []int{2, 2}, hooks.layers)
}
