package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/coursegraph/pkg/hittest"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/pipeline"
	"github.com/matzehuels/coursegraph/pkg/render"
	"github.com/matzehuels/coursegraph/pkg/render/sink"
	"github.com/matzehuels/coursegraph/pkg/view"
)

// hoverOpts holds the flags for the hover command.
type hoverOpts struct {
	catalog   string
	selection []string
	viewport  hittest.Viewport
	pipeline  pipeline.Options
}

// hoverCommand creates the hover command, which answers "what is under the
// pointer" for a diagram shown in a client area.
func (c *CLI) hoverCommand() *cobra.Command {
	var opts hoverOpts

	cmd := &cobra.Command{
		Use:   "hover X Y",
		Short: "Describe the course under a pointer position",
		Long: `Describe the course under a pointer position.

X and Y are client coordinates. The viewport flags describe where the diagram
is displayed: its top-left corner (--left, --top) and displayed size
(--display-width, --display-height). Without them the diagram is assumed to
be shown unscaled at the origin, at the size "render" would draw it.

A course is hit when the pointer, converted to diagram coordinates, is
strictly closer to its center than the node radius.`,
		Example: `  coursegraph hover 300 80
  coursegraph hover 160 50 --display-width 500 --display-height 400`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseCoordinate("X", args[0])
			if err != nil {
				return err
			}
			y, err := parseCoordinate("Y", args[1])
			if err != nil {
				return err
			}
			opts.pipeline.Selection = parseIDs(opts.selection)
			return c.runHover(cmd.Context(), layout.Point{X: x, Y: y}, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.catalog, "catalog", "", "catalog file (.toml, .yaml, .json)")
	flags.StringSliceVarP(&opts.selection, "select", "s", nil, "selected course IDs")
	flags.Float64Var(&opts.viewport.Left, "left", 0, "display area left edge in client coordinates")
	flags.Float64Var(&opts.viewport.Top, "top", 0, "display area top edge in client coordinates")
	flags.Float64Var(&opts.viewport.DisplayWidth, "display-width", 0, "displayed width (default: diagram width)")
	flags.Float64Var(&opts.viewport.DisplayHeight, "display-height", 0, "displayed height (default: diagram height)")
	flags.Float64Var(&opts.viewport.SurfaceWidth, "width", 0, "diagram width (default: fit the layout)")
	flags.Float64Var(&opts.viewport.SurfaceHeight, "height", 0, "diagram height (default: fit the layout)")
	addLayoutFlags(cmd, &opts.pipeline)

	return cmd
}

// runHover lays out the catalog in a view and hit-tests one pointer position.
func (c *CLI) runHover(ctx context.Context, client layout.Point, opts hoverOpts) error {
	if err := opts.pipeline.ValidateForLayout(); err != nil {
		return err
	}
	cat, err := c.loadCatalog(ctx, opts.catalog)
	if err != nil {
		return err
	}

	v := view.New(ctx, nil, cat,
		view.WithLayoutOptions(opts.pipeline.LayoutOptions()...),
		view.WithLogger(c.Logger),
	)
	sel, _ := pipeline.ResolveSelection(cat, opts.pipeline.Selection)
	v.SetSelection(ctx, sel)
	v.SetViewport(resolveViewport(opts.viewport, v.Layout()))

	d := v.PointerMove(client)
	if d == nil {
		printInfo("No course at %.0f,%.0f", client.X, client.Y)
		return nil
	}

	st := v.Snapshot()
	status := render.Classify(st.Catalog, st.Selection)[d.Course.ID]

	fmt.Fprintln(uiOut, courseCard(d.Course))
	printKeyValue("Status", status.String())
	printKeyValue("Pointer", fmt.Sprintf("%.0f,%.0f", d.Client.X, d.Client.Y))
	printKeyValue("Diagram", fmt.Sprintf("%.1f,%.1f", d.Surface.X, d.Surface.Y))
	printKeyValue("Tooltip", fmt.Sprintf("%.0f,%.0f", d.Display.X, d.Display.Y))
	return nil
}

// resolveViewport fills unset sizes: the diagram size from the layout
// bounds, as render uses, and the displayed size from the diagram size.
func resolveViewport(vp hittest.Viewport, l *layout.Layout) hittest.Viewport {
	if vp.SurfaceWidth <= 0 || vp.SurfaceHeight <= 0 {
		vp.SurfaceWidth, vp.SurfaceHeight = l.Bounds()
	}
	if vp.SurfaceWidth <= 0 || vp.SurfaceHeight <= 0 {
		vp.SurfaceWidth, vp.SurfaceHeight = sink.DefaultWidth, sink.DefaultHeight
	}
	if vp.DisplayWidth <= 0 {
		vp.DisplayWidth = vp.SurfaceWidth
	}
	if vp.DisplayHeight <= 0 {
		vp.DisplayHeight = vp.SurfaceHeight
	}
	return vp
}

// parseCoordinate parses a finite pointer coordinate.
func parseCoordinate(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q: not a finite number", name, s)
	}
	return f, nil
}
