// Package pkg provides the core libraries for Coursegraph, an MBA course
// advisor that draws the program's prerequisite graph.
//
// # Overview
//
// Coursegraph interviews a student, asks a chat-completion model for course
// recommendations, and highlights the recommended courses and their
// prerequisites on a layered diagram. The pkg directory is organized into
// four areas:
//
//  1. Domain: [catalog], [layout], [render], [hittest], [view]
//  2. Advising: [advisor], [advisor/openai]
//  3. Infrastructure: [cache], [httputil], [observability], [errors]
//  4. Orchestration: [pipeline]
//
// # Architecture
//
// The typical data flow:
//
//	Catalog file or embedded catalog
//	         ↓
//	    [catalog] package (validated, ordered courses)
//	         ↓
//	    [layout] package (prerequisite depth → layer → position)
//	         ↓
//	    [render] package (status classification + drawing)
//	         ↓
//	    SVG/PDF/PNG/JSON/DOT output
//
// The advising path runs alongside it:
//
//	[advisor.Session] (five questions)
//	         ↓
//	[advisor/openai] (recommendation over the transcript)
//	         ↓
//	course codes → [catalog.Selection] → re-render
//
// # Quick Start
//
// Lay out the embedded catalog and render it with one course selected:
//
//	import (
//	    "github.com/matzehuels/coursegraph/pkg/catalog"
//	    "github.com/matzehuels/coursegraph/pkg/layout"
//	    "github.com/matzehuels/coursegraph/pkg/render/sink"
//	)
//
//	cat := catalog.Default()
//	l := layout.Build(cat)
//	svg := sink.RenderSVG(cat, l, catalog.NewSelection("MBA505"))
//
// Or run the whole pipeline with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	defer runner.Close()
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Selection: []string{"MBA505"},
//	    Formats:   []string{"svg", "png"},
//	})
//
// # Main Packages
//
// [catalog] holds courses, prerequisite edges and the selection set, and
// loads catalogs from TOML, YAML or JSON.
//
// [layout] assigns each course a layer from its longest prerequisite chain
// and places layers left to right.
//
// [render] classifies courses as neutral, prerequisite or selected and
// draws the diagram onto a [render.Surface]. [render/sink] provides the
// SVG, PNG, PDF and JSON surfaces; [render/nodelink] renders the same graph
// through Graphviz.
//
// [hittest] maps pointer positions to courses, and [view] keeps the current
// catalog, selection and layout behind an atomic snapshot for interactive
// hosts.
//
// [advisor] runs the interview; [advisor/openai] is the chat-completion
// client behind it.
//
// [pipeline] wires loading, layout and rendering together and caches
// artifacts through [cache].
package pkg
