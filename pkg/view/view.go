// Package view holds the interactive diagram state: the catalog, the
// selection, the computed layout and the current hover.
//
// A [View] owns one [render.Surface]. Changing the catalog or the selection
// recomputes the whole layout and redraws the surface. Pointer movement only
// hit-tests against the current layout and never redraws.
//
// The catalog, selection and layout are published together as one immutable
// [State] through an atomic pointer, so readers such as a pointer handler on
// another goroutine see either the previous state or the next one, never a
// layout that is still being built. Writers are serialized.
package view

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/hittest"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/observability"
	"github.com/matzehuels/coursegraph/pkg/render"
)

// State is one consistent snapshot of the view. It is never modified after
// it is published.
type State struct {
	Catalog   *catalog.Catalog
	Selection catalog.Selection
	Layout    *layout.Layout
}

// Option configures a [View].
type Option func(*View)

func WithLayoutOptions(opts ...layout.Option) Option { return func(v *View) { v.layoutOpts = opts } }
func WithRenderOptions(opts ...render.Option) Option { return func(v *View) { v.renderOpts = opts } }
func WithLogger(l *log.Logger) Option                { return func(v *View) { v.logger = l } }

// WithViewport sets the initial viewport. Without it the surface is assumed
// to be displayed unscaled at the origin.
func WithViewport(vp hittest.Viewport) Option {
	return func(v *View) { v.viewport.Store(&vp) }
}

// View is safe for concurrent use.
type View struct {
	surface    render.Surface
	layoutOpts []layout.Option
	renderOpts []render.Option
	logger     *log.Logger

	mu       sync.Mutex // serializes state changes and drawing
	state    atomic.Pointer[State]
	viewport atomic.Pointer[hittest.Viewport]
	hover    atomic.Pointer[hittest.Detail]
}

// New lays out cat, draws it on surface with an empty selection and returns
// the view. A nil surface is allowed; drawing is then skipped.
func New(ctx context.Context, surface render.Surface, cat *catalog.Catalog, opts ...Option) *View {
	v := &View{surface: surface}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = log.Default()
	}
	if v.viewport.Load() == nil && surface != nil {
		vp := hittest.Identity(surface.Size())
		v.viewport.Store(&vp)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.apply(ctx, cat, catalog.NewSelection())
	return v
}

// SetCatalog replaces the catalog, keeps the selection, recomputes the layout
// and redraws. Any hover is cleared.
func (v *View) SetCatalog(ctx context.Context, cat *catalog.Catalog) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.apply(ctx, cat, v.state.Load().Selection)
}

// SetSelection replaces the selection, recomputes the layout and redraws.
func (v *View) SetSelection(ctx context.Context, sel catalog.Selection) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.apply(ctx, v.state.Load().Catalog, sel)
}

// SetSelectionIDs is [View.SetSelection] for a list of course IDs. IDs that
// are not in the catalog are kept in the selection but match no node.
func (v *View) SetSelectionIDs(ctx context.Context, ids []string) {
	v.SetSelection(ctx, catalog.NewSelection(ids...))
}

// Redraw draws the current state again without recomputing the layout.
func (v *View) Redraw() {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.state.Load()
	render.Render(v.surface, st.Catalog, st.Layout, st.Selection, v.renderOpts...)
}

func (v *View) apply(ctx context.Context, cat *catalog.Catalog, sel catalog.Selection) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, cat.Len())
	start := time.Now()
	l := layout.Build(cat, v.layoutOpts...)
	hooks.OnLayoutComplete(ctx, l.Len(), l.Layers(), time.Since(start))

	v.state.Store(&State{Catalog: cat, Selection: sel, Layout: l})
	v.hover.Store(nil)
	render.Render(v.surface, cat, l, sel, v.renderOpts...)

	v.logger.Debug("view updated", "courses", cat.Len(), "layers", l.Layers(), "selected", sel.Len())
}

// Snapshot returns the current state.
func (v *View) Snapshot() State { return *v.state.Load() }

// Layout returns the current layout.
func (v *View) Layout() *layout.Layout { return v.state.Load().Layout }

// SetViewport records where the surface is displayed. It affects only later
// pointer events.
func (v *View) SetViewport(vp hittest.Viewport) { v.viewport.Store(&vp) }

// Viewport returns the current viewport. The zero viewport is unavailable.
func (v *View) Viewport() hittest.Viewport {
	if vp := v.viewport.Load(); vp != nil {
		return *vp
	}
	return hittest.Viewport{}
}

// PointerMove hit-tests a client coordinate against the current layout and
// records the result as the hover. It returns nil when nothing is hit.
func (v *View) PointerMove(client layout.Point) *hittest.Detail {
	st := v.state.Load()
	d := hittest.Hover(client, v.Viewport(), st.Layout, st.Catalog)
	v.hover.Store(d)
	return d
}

// PointerLeave clears the hover.
func (v *View) PointerLeave() { v.hover.Store(nil) }

// Hover returns the current hover detail, or nil.
func (v *View) Hover() *hittest.Detail { return v.hover.Load() }
