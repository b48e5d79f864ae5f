package render

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/TFMV/canvasgraph/graph"
)

// EChartsRenderer outputs a self-contained HTML page with a draggable
// force-layout rendering of the graph.
type EChartsRenderer struct {
	// PageTitle overrides the HTML title when non-empty.
	PageTitle string
}

// Name returns the backend name.
func (r *EChartsRenderer) Name() string { return "echarts" }

// Render creates the HTML page.
func (r *EChartsRenderer) Render(g *graph.Graph, options *Options) ([]byte, error) {
	title := r.PageTitle
	if title == "" {
		title = "canvasgraph"
	}

	nodes := make([]opts.GraphNode, 0, g.Order())
	names := make(map[graph.ID]string)
	for _, v := range g.Vertices() {
		// ECharts identifies nodes by name; labels may repeat, so the
		// sequence keeps names unique.
		name := v.Label
		if name == "" {
			name = fmt.Sprintf("v%d", v.Seq)
		} else {
			name = fmt.Sprintf("%s (v%d)", name, v.Seq)
		}
		names[v.ID] = name
		nodes = append(nodes, opts.GraphNode{
			Name:       name,
			X:          float32(v.X),
			Y:          float32(v.Y),
			SymbolSize: float32(v.Radius * 2),
		})
	}

	links := make([]opts.GraphLink, 0, g.Size())
	for _, e := range g.Edges() {
		links = append(links, opts.GraphLink{
			Source: names[e.From],
			Target: names[e.To],
			Value:  0,
		})
	}

	chart := charts.NewGraph()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	chart.AddSeries(
		"graph",
		nodes,
		links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Draggable: opts.Bool(true),
			Roam:      opts.Bool(true),
			Force:     &opts.GraphForce{Repulsion: 400},
		}),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    "black",
			Position: "top",
		}),
	)

	page := components.NewPage()
	page.AddCharts(chart)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render: echarts: %w", err)
	}
	return buf.Bytes(), nil
}
