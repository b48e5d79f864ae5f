// Package graph provides the in-memory model for a canvas graph: labeled
// vertices with 2D positions and undirected labeled edges between them.
// Edges reference their endpoints by ID rather than by pointer, so removing
// a vertex can never leave a dangling reference; it cascades instead.
package graph

import (
	"errors"
	"math"
	"sort"

	"github.com/google/uuid"
)

// DefaultRadius is the visual radius given to new vertices.
const DefaultRadius = 16.0

// Sentinel errors for graph operations.
var (
	// ErrInvalidReference indicates an edge referenced a vertex that is not
	// in the graph.
	ErrInvalidReference = errors.New("graph: edge endpoint is not a vertex of the graph")

	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("graph: vertex not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("graph: edge not found")

	// ErrElementNotFound indicates an ID that is neither a vertex nor an edge.
	ErrElementNotFound = errors.New("graph: element not found")

	// ErrInvalidPosition indicates a NaN or infinite coordinate.
	ErrInvalidPosition = errors.New("graph: position is not finite")

	// ErrNoCandidatePair indicates that every vertex pair is already connected.
	ErrNoCandidatePair = errors.New("graph: no unconnected vertex pair")
)

// ID uniquely identifies a vertex or an edge.
type ID string

// Vertex is a node of the graph with a canvas position and a display label.
type Vertex struct {
	ID     ID
	Seq    int64 // insertion order, used for deterministic tie-breaks
	Label  string
	X, Y   float64
	Radius float64
}

// Edge is an undirected connection between two vertices. From and To carry
// no orientation beyond the drag gesture that created the edge.
type Edge struct {
	ID       ID
	Seq      int64
	From, To ID
	Label    string
}

// Observer receives a callback after every successful mutation. Callbacks run
// synchronously inside the mutating call; the graph is fully consistent when
// they fire.
type Observer interface {
	VertexAdded(v *Vertex)
	VertexMoved(v *Vertex)
	VertexRemoved(v *Vertex)
	EdgeAdded(e *Edge)
	EdgeRemoved(e *Edge)
	VertexRelabeled(v *Vertex)
	EdgeRelabeled(e *Edge)
}

// Graph holds a set of vertices and a set of edges with the invariant that
// both endpoints of every edge are members of the vertex set. Operations are
// meant for a single event-driven context and are not locked.
type Graph struct {
	width, height float64
	nextSeq       int64

	vertices map[ID]*Vertex
	edges    map[ID]*Edge
	incident map[ID]map[ID]struct{} // vertex ID -> IDs of incident edges

	observers []Observer
}

// New creates an empty graph with the given canvas bounds.
func New(width, height float64) *Graph {
	return &Graph{
		width:    width,
		height:   height,
		vertices: make(map[ID]*Vertex),
		edges:    make(map[ID]*Edge),
		incident: make(map[ID]map[ID]struct{}),
	}
}

// Notify registers an observer for subsequent mutations.
func (g *Graph) Notify(o Observer) {
	g.observers = append(g.observers, o)
}

// Bounds returns the canvas width and height of the graph.
func (g *Graph) Bounds() (width, height float64) {
	return g.width, g.height
}

// Clamp constrains a coordinate pair to the canvas bounds.
func (g *Graph) Clamp(x, y float64) (float64, float64) {
	return math.Max(0, math.Min(g.width, x)), math.Max(0, math.Min(g.height, y))
}

// AddVertex creates a vertex at the given position with the default radius.
// Out-of-bounds coordinates are clamped; non-finite coordinates are rejected
// with ErrInvalidPosition.
func (g *Graph) AddVertex(x, y float64, label string) (*Vertex, error) {
	return g.AddVertexAt(x, y, DefaultRadius, label)
}

// AddVertexAt is AddVertex with an explicit radius.
func (g *Graph) AddVertexAt(x, y, radius float64, label string) (*Vertex, error) {
	if !finite(x) || !finite(y) {
		return nil, ErrInvalidPosition
	}
	if radius <= 0 {
		radius = DefaultRadius
	}
	x, y = g.Clamp(x, y)
	g.nextSeq++
	v := &Vertex{
		ID:     ID(uuid.New().String()),
		Seq:    g.nextSeq,
		Label:  label,
		X:      x,
		Y:      y,
		Radius: radius,
	}
	g.vertices[v.ID] = v
	g.incident[v.ID] = make(map[ID]struct{})
	for _, o := range g.observers {
		o.VertexAdded(v)
	}
	return v, nil
}

// AddEdge creates an undirected edge between two existing vertices. If either
// endpoint is absent the graph is left untouched and ErrInvalidReference is
// returned. Self-loops and parallel edges are permitted.
func (g *Graph) AddEdge(a, b ID, label string) (*Edge, error) {
	if _, ok := g.vertices[a]; !ok {
		return nil, ErrInvalidReference
	}
	if _, ok := g.vertices[b]; !ok {
		return nil, ErrInvalidReference
	}
	g.nextSeq++
	e := &Edge{
		ID:    ID(uuid.New().String()),
		Seq:   g.nextSeq,
		From:  a,
		To:    b,
		Label: label,
	}
	g.edges[e.ID] = e
	g.incident[a][e.ID] = struct{}{}
	g.incident[b][e.ID] = struct{}{}
	for _, o := range g.observers {
		o.EdgeAdded(e)
	}
	return e, nil
}

// RemoveVertex deletes a vertex and cascades removal of every incident edge.
func (g *Graph) RemoveVertex(id ID) error {
	v, ok := g.vertices[id]
	if !ok {
		return ErrVertexNotFound
	}
	// Detach incident edges first so observers never see an edge whose
	// endpoint is gone.
	for _, e := range g.IncidentEdges(id) {
		g.detachEdge(e)
		for _, o := range g.observers {
			o.EdgeRemoved(e)
		}
	}
	delete(g.vertices, id)
	delete(g.incident, id)
	for _, o := range g.observers {
		o.VertexRemoved(v)
	}
	return nil
}

// RemoveEdge deletes a single edge.
func (g *Graph) RemoveEdge(id ID) error {
	e, ok := g.edges[id]
	if !ok {
		return ErrEdgeNotFound
	}
	g.detachEdge(e)
	for _, o := range g.observers {
		o.EdgeRemoved(e)
	}
	return nil
}

func (g *Graph) detachEdge(e *Edge) {
	delete(g.edges, e.ID)
	delete(g.incident[e.From], e.ID)
	delete(g.incident[e.To], e.ID)
}

// Relabel changes the display label of a vertex or an edge. It has no
// structural effect.
func (g *Graph) Relabel(id ID, label string) error {
	if v, ok := g.vertices[id]; ok {
		v.Label = label
		for _, o := range g.observers {
			o.VertexRelabeled(v)
		}
		return nil
	}
	if e, ok := g.edges[id]; ok {
		e.Label = label
		for _, o := range g.observers {
			o.EdgeRelabeled(e)
		}
		return nil
	}
	return ErrElementNotFound
}

// MoveVertex repositions a vertex, clamping to the canvas bounds.
func (g *Graph) MoveVertex(id ID, x, y float64) error {
	v, ok := g.vertices[id]
	if !ok {
		return ErrVertexNotFound
	}
	if !finite(x) || !finite(y) {
		return ErrInvalidPosition
	}
	v.X, v.Y = g.Clamp(x, y)
	for _, o := range g.observers {
		o.VertexMoved(v)
	}
	return nil
}

// Vertex returns the vertex with the given ID, if any.
func (g *Graph) Vertex(id ID) (*Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// Edge returns the edge with the given ID, if any.
func (g *Graph) Edge(id ID) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Order returns the number of vertices.
func (g *Graph) Order() int { return len(g.vertices) }

// Size returns the number of edges.
func (g *Graph) Size() int { return len(g.edges) }

// Vertices returns all vertices ordered by insertion sequence.
func (g *Graph) Vertices() []*Vertex {
	vs := make([]*Vertex, 0, len(g.vertices))
	for _, v := range g.vertices {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].Seq < vs[j].Seq })
	return vs
}

// Edges returns all edges ordered by insertion sequence.
func (g *Graph) Edges() []*Edge {
	es := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		es = append(es, e)
	}
	sort.Slice(es, func(i, j int) bool { return es[i].Seq < es[j].Seq })
	return es
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
