package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/observability"
)

// ComputeLayout assigns layers and positions for every course in cat.
// It never fails; an empty catalog yields an empty layout.
func ComputeLayout(ctx context.Context, cat *catalog.Catalog, opts Options) *layout.Layout {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, cat.Len())
	start := time.Now()

	l := layout.Build(cat, opts.LayoutOptions()...)

	hooks.OnLayoutComplete(ctx, l.Len(), l.Layers(), time.Since(start))
	return l
}
