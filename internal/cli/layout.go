package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/pipeline"
	"github.com/matzehuels/coursegraph/pkg/render"
	"github.com/matzehuels/coursegraph/pkg/render/sink"
)

// layoutCommand creates the layout command for inspecting computed positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		catalogPath string
		selection   []string
		asJSON      bool
		opts        pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the layer, slot and position of every course",
		Long: `Print the layer, slot and position of every course.

A course's layer is 0 when it has no prerequisites in the catalog and
otherwise one more than the deepest of its prerequisites. Within a layer,
courses keep their catalog order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Selection = parseIDs(selection)
			return c.runLayout(cmd.Context(), catalogPath, opts, asJSON)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (.toml, .yaml, .json)")
	cmd.Flags().StringSliceVarP(&selection, "select", "s", nil, "selected course IDs, shown in the status column")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the catalog, computes the layout, and prints it.
func (c *CLI) runLayout(ctx context.Context, catalogPath string, opts pipeline.Options, asJSON bool) error {
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	cat, err := c.loadCatalog(ctx, catalogPath)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	l := pipeline.ComputeLayout(ctx, cat, opts)
	sel, unknown := pipeline.ResolveSelection(cat, opts.Selection)
	c.Logger.Debug("computed layout", "nodes", l.Len(), "layers", l.Layers())

	if asJSON {
		data, err := sink.RenderJSON(cat, l, sel)
		if err != nil {
			return err
		}
		_, err = uiOut.Write(data)
		return err
	}

	fmt.Fprintln(uiOut, layoutTable(cat, l, sel))
	w, h := l.Bounds()
	printDetail("%d courses in %d layers · canvas %.0f×%.0f · radius %.0f", l.Len(), l.Layers(), w, h, l.NodeRadius())
	for _, id := range unknown {
		printWarning("%s is not in the catalog", id)
	}
	prog.done("computed layout", "courses", l.Len())
	return nil
}

// layoutTable renders the nodes in layout order as a table.
func layoutTable(cat *catalog.Catalog, l *layout.Layout, sel catalog.Selection) string {
	statuses := render.Classify(cat, sel)
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, l.Len())
	for _, n := range l.Nodes() {
		crs, _ := cat.Get(n.ID)
		rows = append(rows, []string{
			n.ID,
			crs.Name,
			strconv.Itoa(n.Layer),
			strconv.Itoa(n.Slot),
			fmt.Sprintf("%.0f,%.0f", n.Center.X, n.Center.Y),
			statuses[n.ID].String(),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Course", "Name", "Layer", "Slot", "Center", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(rows) {
				return lipgloss.NewStyle()
			}
			switch rows[row][5] {
			case render.StatusSelected.String():
				return lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
			case render.StatusPrerequisite.String():
				return lipgloss.NewStyle().Foreground(colorBlue)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		}).
		Render()
}
