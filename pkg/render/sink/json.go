package sink

import (
	"encoding/json"

	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/render"
)

type jsonOutput struct {
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	NodeRadius float64    `json:"node_radius"`
	Layers     int        `json:"layers"`
	Selection  []string   `json:"selection"`
	Nodes      []jsonNode `json:"nodes"`
	Edges      []jsonEdge `json:"edges"`
}

type jsonNode struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Credits  int           `json:"credits"`
	Layer    int           `json:"layer"`
	Slot     int           `json:"slot"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Status   render.Status `json:"status"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RenderJSON exports the layout as a pretty-printed JSON document: the node
// placements in catalog order with their course metadata and status, and
// every drawn edge. It does not modify its inputs and is safe to call
// concurrently.
func RenderJSON(cat *catalog.Catalog, l *layout.Layout, sel catalog.Selection) ([]byte, error) {
	width, height := l.Bounds()
	statuses := render.Classify(cat, sel)

	out := jsonOutput{
		Width:      width,
		Height:     height,
		NodeRadius: l.NodeRadius(),
		Layers:     l.Layers(),
		Selection:  sel.IDs(),
		Nodes:      make([]jsonNode, 0, l.Len()),
		Edges:      make([]jsonEdge, 0),
	}
	if out.Selection == nil {
		out.Selection = []string{}
	}

	for _, n := range l.Nodes() {
		c, ok := cat.Get(n.ID)
		if !ok {
			continue
		}
		out.Nodes = append(out.Nodes, jsonNode{
			ID:       n.ID,
			Name:     c.Name,
			Category: string(c.Category),
			Credits:  c.Credits,
			Layer:    n.Layer,
			Slot:     n.Slot,
			X:        n.Center.X,
			Y:        n.Center.Y,
			Status:   statuses[n.ID],
		})
	}
	for _, e := range cat.Edges() {
		_, okFrom := l.Position(e.From)
		_, okTo := l.Position(e.To)
		if okFrom && okTo {
			out.Edges = append(out.Edges, jsonEdge{From: e.From, To: e.To})
		}
	}

	return json.MarshalIndent(out, "", "  ")
}
