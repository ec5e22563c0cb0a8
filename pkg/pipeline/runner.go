package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coursegraph/pkg/cache"
	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/layout"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Source: opts.Source()}

	// Stage 1: Load
	loadStart := time.Now()
	cat, err := LoadCatalog(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Catalog = cat
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.CourseCount = cat.Len()
	result.Stats.EdgeCount = len(cat.Edges())

	if result.CatalogHash, err = CatalogHash(cat); err != nil {
		return nil, err
	}
	result.Selection, result.Unknown = ResolveSelection(cat, opts.Selection)
	if len(result.Unknown) > 0 {
		r.Logger.Warn("selection contains unknown courses", "ids", result.Unknown)
	}
	if missing := cat.MissingPrerequisites(); len(missing) > 0 {
		r.Logger.Debug("catalog references unknown prerequisites", "count", len(missing))
	}

	r.Logger.Info("loaded catalog",
		"source", result.Source,
		"courses", result.Stats.CourseCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	result.Layout = ComputeLayout(ctx, cat, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Layers = result.Layout.Layers()

	r.Logger.Info("computed layout",
		"nodes", result.Layout.Len(),
		"layers", result.Stats.Layers,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.CatalogHash, cat, result.Layout, result.Selection, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, catalogHash string, cat *catalog.Catalog, l *layout.Layout, sel catalog.Selection, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(catalogHash, opts.ArtifactKeyOpts(format, sel))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				r.Logger.Debug("artifact cache read failed", "format", format, "err", err)
			}
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, cat, l, sel, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(catalogHash, opts.ArtifactKeyOpts(format, sel))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("artifact cache write failed", "format", format, "err", err)
		}
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
