package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coursegraph/pkg/cache"
	"github.com/matzehuels/coursegraph/pkg/catalog"
	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
)

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestExecuteDefaultCatalog(t *testing.T) {
	r := quietRunner(nil)
	result, err := r.Execute(context.Background(), Options{
		Selection: []string{"MBA505", "XYZ999"},
		Formats:   []string{FormatSVG, FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Source != DefaultCatalogSource {
		t.Errorf("Source = %q", result.Source)
	}
	if result.Stats.CourseCount != 12 {
		t.Errorf("CourseCount = %d, want 12", result.Stats.CourseCount)
	}
	if result.Stats.EdgeCount != 12 {
		t.Errorf("EdgeCount = %d, want 12", result.Stats.EdgeCount)
	}
	if result.Stats.Layers != 4 {
		t.Errorf("Layers = %d, want 4", result.Stats.Layers)
	}
	if !result.Selection.Has("MBA505") || result.Selection.Len() != 1 {
		t.Errorf("Selection = %v", result.Selection.IDs())
	}
	if len(result.Unknown) != 1 || result.Unknown[0] != "XYZ999" {
		t.Errorf("Unknown = %v", result.Unknown)
	}
	if result.CatalogHash == "" {
		t.Error("CatalogHash should be set")
	}

	for _, f := range []string{FormatSVG, FormatJSON, FormatDOT} {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if !bytes.HasPrefix(result.Artifacts[FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact starts with %q", result.Artifacts[FormatSVG][:10])
	}
	if !bytes.Contains(result.Artifacts[FormatDOT], []byte("digraph")) {
		t.Error("dot artifact should contain a digraph")
	}

	var doc struct {
		Selection []string `json:"selection"`
		Nodes     []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	status := map[string]string{}
	for _, n := range doc.Nodes {
		status[n.ID] = n.Status
	}
	if status["MBA505"] != "selected" || status["MBA501"] != "prerequisite" || status["MBA502"] != "neutral" {
		t.Errorf("statuses = %v", status)
	}
}

func TestExecuteCachesArtifacts(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)
	ctx := context.Background()
	opts := Options{Selection: []string{"MBA530"}, Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	refresh := opts
	refresh.Refresh = true
	third, err := r.Execute(ctx, refresh)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}

	other := opts
	other.Selection = []string{"MBA501"}
	fourth, err := r.Execute(ctx, other)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.RenderHit {
		t.Error("different selection should miss")
	}
}

func TestExecuteCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.yaml")
	doc := `courses:
  - id: FIN100
    name: Intro Finance
    credits: 3
    category: finance
  - id: FIN200
    name: Valuation
    credits: 3
    category: finance
    prerequisites: [FIN100]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := quietRunner(nil).Execute(context.Background(), Options{CatalogPath: path, Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.CourseCount != 2 || result.Stats.Layers != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.Source != "file:"+path {
		t.Errorf("Source = %q", result.Source)
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)

	if _, err := r.Execute(ctx, Options{Formats: []string{"gif"}}); !cgerrors.Is(err, cgerrors.ErrCodeInvalidFormat) {
		t.Errorf("bad format: code = %s", cgerrors.GetCode(err))
	}

	missing := filepath.Join(t.TempDir(), "missing.toml")
	if _, err := r.Execute(ctx, Options{CatalogPath: missing}); !cgerrors.Is(err, cgerrors.ErrCodeFileNotFound) {
		t.Errorf("missing file: code = %s", cgerrors.GetCode(err))
	}
}

func TestCatalogHash(t *testing.T) {
	a := catalog.MustNew([]catalog.Course{{ID: "A", Name: "A", Category: catalog.CategoryCore}})
	b := catalog.MustNew([]catalog.Course{{ID: "A", Name: "A", Category: catalog.CategoryCore}})
	c := catalog.MustNew([]catalog.Course{{ID: "A", Name: "Renamed", Category: catalog.CategoryCore}})

	ha, err := CatalogHash(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, _ := CatalogHash(b)
	hc, _ := CatalogHash(c)
	if ha != hb {
		t.Error("equal catalogs should hash equally")
	}
	if ha == hc {
		t.Error("different catalogs should hash differently")
	}
}

func TestRenderEmptyCatalog(t *testing.T) {
	cat := catalog.MustNew(nil)
	opts := Options{Formats: []string{FormatSVG, FormatJSON, FormatPNG}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	l := ComputeLayout(context.Background(), cat, opts)
	artifacts, err := Render(context.Background(), cat, l, catalog.NewSelection(), opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(artifacts) != 3 {
		t.Errorf("artifacts = %d, want 3", len(artifacts))
	}
}
