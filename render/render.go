// Package render exports static snapshots of a canvas graph.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TFMV/canvasgraph/graph"
)

// Options defines rendering configuration.
type Options struct {
	Width          float64
	Height         float64
	Background     string
	VertexFill     string
	EdgeColor      string
	EdgeWidth      float64
	FontSize       float64
	ShowLabels     bool
	ShowEdgeLabels bool
}

// NewDefaultOptions returns sensible export defaults.
func NewDefaultOptions() *Options {
	return &Options{
		Width:          800,
		Height:         600,
		Background:     "#f8f8f8",
		VertexFill:     "#ffffff",
		EdgeColor:      "#666666",
		EdgeWidth:      1.0,
		FontSize:       10.0,
		ShowLabels:     true,
		ShowEdgeLabels: true,
	}
}

// Renderer is implemented by every export backend.
type Renderer interface {
	// Render produces the export bytes for the graph.
	Render(g *graph.Graph, options *Options) ([]byte, error)

	// Name returns the backend name.
	Name() string
}

// For returns the renderer for a format name.
func For(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "echarts", "html":
		return &EChartsRenderer{}, nil
	default:
		return nil, fmt.Errorf("render: unsupported output format: %s", format)
	}
}

// SVGRenderer outputs Scalable Vector Graphics.
type SVGRenderer struct{}

// Name returns the backend name.
func (r *SVGRenderer) Name() string { return "svg" }

// Render creates an SVG representation of the graph, edges below vertices.
func (r *SVGRenderer) Render(g *graph.Graph, options *Options) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, options.Width, options.Height, options.Width, options.Height, options.Background))

	for _, e := range g.Edges() {
		from, _ := g.Vertex(e.From)
		to, _ := g.Vertex(e.To)
		buf.WriteString(fmt.Sprintf(`<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="%g"/>
`, from.X, from.Y, to.X, to.Y, options.EdgeColor, options.EdgeWidth))

		if options.ShowEdgeLabels && e.Label != "" {
			midX := (from.X + to.X) / 2
			midY := (from.Y + to.Y) / 2
			buf.WriteString(fmt.Sprintf(`<text x="%g" y="%g" font-family="sans-serif" font-size="%g" fill="%s" text-anchor="middle">%s</text>
`, midX, midY, options.FontSize, options.EdgeColor, escapeXML(e.Label)))
		}
	}

	for _, v := range g.Vertices() {
		buf.WriteString(fmt.Sprintf(`<circle cx="%g" cy="%g" r="%g" fill="%s" stroke="#333333"/>
`, v.X, v.Y, v.Radius, options.VertexFill))
		if options.ShowLabels && v.Label != "" {
			buf.WriteString(fmt.Sprintf(`<text x="%g" y="%g" font-family="sans-serif" font-size="%g" text-anchor="middle" dominant-baseline="middle">%s</text>
`, v.X, v.Y, options.FontSize, escapeXML(v.Label)))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// DOTRenderer outputs graphviz source. Edges are undirected.
type DOTRenderer struct{}

// Name returns the backend name.
func (r *DOTRenderer) Name() string { return "dot" }

// Render creates a graphviz description of the graph. Vertices are named by
// insertion sequence so the output is stable.
func (r *DOTRenderer) Render(g *graph.Graph, options *Options) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("graph {\n")
	names := make(map[graph.ID]string)
	for _, v := range g.Vertices() {
		name := fmt.Sprintf("v%d", v.Seq)
		names[v.ID] = name
		buf.WriteString(fmt.Sprintf("  %s [label=%q, pos=\"%g,%g\"];\n", name, v.Label, v.X, v.Y))
	}
	for _, e := range g.Edges() {
		if e.Label != "" {
			buf.WriteString(fmt.Sprintf("  %s -- %s [label=%q];\n", names[e.From], names[e.To], e.Label))
		} else {
			buf.WriteString(fmt.Sprintf("  %s -- %s;\n", names[e.From], names[e.To]))
		}
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// JSONRenderer outputs an indented JSON snapshot of the model.
type JSONRenderer struct{}

// Name returns the backend name.
func (r *JSONRenderer) Name() string { return "json" }

type jsonVertex struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

type jsonEdge struct {
	ID    string `json:"id"`
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

type jsonGraph struct {
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
	Vertices []jsonVertex `json:"vertices"`
	Edges    []jsonEdge   `json:"edges"`
}

// Render creates the JSON snapshot.
func (r *JSONRenderer) Render(g *graph.Graph, options *Options) ([]byte, error) {
	w, h := g.Bounds()
	out := jsonGraph{Width: w, Height: h, Vertices: []jsonVertex{}, Edges: []jsonEdge{}}
	for _, v := range g.Vertices() {
		out.Vertices = append(out.Vertices, jsonVertex{
			ID:     string(v.ID),
			Label:  v.Label,
			X:      v.X,
			Y:      v.Y,
			Radius: v.Radius,
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, jsonEdge{
			ID:    string(e.ID),
			From:  string(e.From),
			To:    string(e.To),
			Label: e.Label,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(s)
}
