package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/pipeline"
)

// defaultOutputBase is the output base path when -o is not given.
const defaultOutputBase = "coursegraph"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	catalog   string   // catalog file; empty uses config or the embedded catalog
	selection []string // selected course IDs
	formats   string   // comma-separated output formats
	output    string   // output file (single format) or base path
	noCache   bool     // disable the artifact cache
	noCards   bool     // skip printing the selected course cards
	pipeline  pipeline.Options
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the prerequisite diagram with highlighted courses",
		Long: `Render the catalog as a layered prerequisite diagram.

Courses given with --select are drawn in blue, their direct prerequisites in
light blue and all other courses in grey. Every prerequisite is drawn as an
arrow from the prerequisite to the course that requires it.

Formats: png, svg, pdf (needs rsvg-convert), json (layout and statuses),
dot and graphviz-svg (node-link diagram via Graphviz).

Results are cached locally for faster subsequent runs.`,
		Example: `  coursegraph render -s MBA505,MBA530 -f png,svg
  coursegraph render --catalog courses.yaml -f json -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyRenderConfig(cmd, &opts)
			if err := pipeline.ValidateFormats(opts.pipeline.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.catalog, "catalog", "", "catalog file (.toml, .yaml, .json)")
	flags.StringSliceVarP(&opts.selection, "select", "s", nil, "selected course IDs (comma-separated)")
	flags.StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames, ", ")+" (comma-separated, default svg)")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	flags.BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	flags.BoolVar(&opts.pipeline.Refresh, "refresh", false, "re-render even when cached")
	flags.BoolVar(&opts.noCards, "no-cards", false, "do not print the selected course cards")
	flags.Float64Var(&opts.pipeline.Width, "width", 0, "canvas width (default: fit the layout)")
	flags.Float64Var(&opts.pipeline.Height, "height", 0, "canvas height (default: fit the layout)")
	flags.Float64Var(&opts.pipeline.Scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	flags.Float64Var(&opts.pipeline.EdgeInset, "edge-inset", 0, "shorten edges so arrows stop at the hexagon border")
	flags.BoolVar(&opts.pipeline.Detailed, "detailed", false, "include names and credits in node-link labels")
	addLayoutFlags(cmd, &opts.pipeline)

	return cmd
}

// addLayoutFlags registers the geometry flags shared by render, layout and hover.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	flags.Float64Var(&opts.HorizontalSpacing, "layer-spacing", 0, "distance between layers (default 200)")
	flags.Float64Var(&opts.VerticalSpacing, "slot-spacing", 0, "distance between courses in a layer (default 150)")
	flags.Float64Var(&opts.NodeRadius, "radius", 0, "hexagon radius and hit radius (default 60)")
}

// applyRenderConfig fills options the user did not set on the command line
// from the config file.
func (c *CLI) applyRenderConfig(cmd *cobra.Command, opts *renderOpts) {
	rc := c.Config.Render
	flags := cmd.Flags()
	if !flags.Changed("format") && len(rc.Formats) > 0 {
		opts.formats = strings.Join(rc.Formats, ",")
	}
	if !flags.Changed("width") && rc.Width > 0 {
		opts.pipeline.Width = rc.Width
	}
	if !flags.Changed("height") && rc.Height > 0 {
		opts.pipeline.Height = rc.Height
	}
	if !flags.Changed("scale") && rc.Scale > 0 {
		opts.pipeline.Scale = rc.Scale
	}
	if !flags.Changed("edge-inset") && rc.EdgeInset > 0 {
		opts.pipeline.EdgeInset = rc.EdgeInset
	}
	opts.pipeline.Formats = parseFormats(opts.formats)
	opts.pipeline.Selection = parseIDs(opts.selection)
	opts.pipeline.CatalogPath = c.catalogPath(opts.catalog)
}

// runRender executes the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts renderOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.pipeline.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	if opts.output != "-" {
		spinner.Start()
	}
	result, err := runner.Execute(ctx, opts.pipeline)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if opts.output == "-" {
		return writeStdout(result.Artifacts, opts.pipeline.Formats)
	}

	paths, err := writeArtifacts(result.Artifacts, opts.pipeline.Formats, opts.output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d selected course(s)", result.Selection.Len())
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.CourseCount, result.Stats.EdgeCount, result.Stats.Layers, result.CacheInfo.RenderHit)
	for _, id := range result.Unknown {
		printWarning("%s is not in the catalog", id)
	}

	if !opts.noCards && result.Selection.Len() > 0 {
		printNewline()
		printCourseCards(selectedCourses(result))
	}
	return nil
}

// selectedCourses returns the selected courses in catalog order.
func selectedCourses(result *pipeline.Result) []catalog.Course {
	var out []catalog.Course
	for _, crs := range result.Catalog.Courses() {
		if result.Selection.Has(crs.ID) {
			out = append(out, crs)
		}
	}
	return out
}

// outputPaths maps each format to its file. A single format with an output
// that already has an extension is written exactly there; otherwise the
// output (or the default base) gets the format's extension.
func outputPaths(formats []string, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output)
	for _, f := range formats {
		paths[f] = base + pipeline.Extension(f)
	}
	return paths
}

// basePath strips a known format extension from output. Longer extensions
// come last in FormatNames, so they are tried first.
func basePath(output string) string {
	if output == "" {
		return defaultOutputBase
	}
	for _, f := range slices.Backward(pipeline.FormatNames) {
		if ext := pipeline.Extension(f); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// writeArtifacts writes every format and returns the paths in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	paths := outputPaths(formats, output)
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		path := paths[f]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// writeStdout writes a single text artifact to stdout.
func writeStdout(artifacts map[string][]byte, formats []string) error {
	if len(formats) != 1 {
		return fmt.Errorf("-o - needs exactly one format, got %d", len(formats))
	}
	_, err := uiOut.Write(artifacts[formats[0]])
	return err
}
