package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/coursegraph/pkg/cache"
	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/observability"
)

// LoadCatalog returns opts.Catalog when set, the catalog at opts.CatalogPath
// when set, and the embedded MBA catalog otherwise.
func LoadCatalog(ctx context.Context, opts Options) (*catalog.Catalog, error) {
	source := opts.Source()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	cat, err := loadCatalog(opts)
	hooks.OnLoadComplete(ctx, source, cat.Len(), time.Since(start), err)
	return cat, err
}

func loadCatalog(opts Options) (*catalog.Catalog, error) {
	switch {
	case opts.Catalog != nil:
		return opts.Catalog, nil
	case opts.CatalogPath != "":
		cat, err := catalog.Load(opts.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		return cat, nil
	default:
		return catalog.Default(), nil
	}
}

// CatalogHash is the content hash of a catalog's canonical JSON encoding.
// Catalogs with the same courses in the same order hash equally.
func CatalogHash(cat *catalog.Catalog) (string, error) {
	var buf bytes.Buffer
	if err := catalog.Write(&buf, cat, catalog.FormatJSON); err != nil {
		return "", fmt.Errorf("encode catalog: %w", err)
	}
	return cache.Hash(buf.Bytes()), nil
}

// ResolveSelection splits the requested IDs into a selection of courses
// present in cat and the unknown rest.
func ResolveSelection(cat *catalog.Catalog, ids []string) (catalog.Selection, []string) {
	known, unknown := cat.Partition(ids)
	return catalog.NewSelection(known...), unknown
}
