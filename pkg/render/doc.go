// Package render draws a course layout onto a 2-D surface.
//
// # Overview
//
// [Render] takes a catalog, the [layout.Layout] computed for it and the
// current selection, and issues drawing calls against a [Surface]:
//
//  1. Clear the surface
//  2. Draw one straight edge per prerequisite relation, with a two-stroke
//     arrowhead at the dependent course
//  3. Draw a filled, stroked hexagon per course
//  4. Draw the course identifier centered in its hexagon
//
// Later steps paint over earlier ones, so edges never hide nodes or labels.
//
// # Status
//
// Each course is classified once per pass by [Classify]:
//   - [StatusSelected]: the course is in the selection
//   - [StatusPrerequisite]: a selected course requires it
//   - [StatusNeutral]: neither
//
// A course that is both selected and a prerequisite of another selected
// course is [StatusSelected].
//
// # Surfaces
//
// Raster (PNG) and SVG surfaces live in the [sink] subpackage. [Recorder]
// keeps the issued operations in memory. [ToPDF] and [ToPNG] convert SVG
// output with the external rsvg-convert tool.
//
// [sink]: github.com/matzehuels/coursegraph/pkg/render/sink
package render
