// Package canvas keeps a graph model and a drawing surface in lockstep.
//
// The drawing surface is abstracted behind the Device interface so the same
// Scene can back a browser canvas, an in-memory recorder, or any host
// toolkit able to draw circles, lines and text. The Scene observes the graph
// and replays every successful mutation onto the device immediately, so the
// visible state always matches the model when a public call returns.
package canvas

import (
	"fmt"
	"math"

	"github.com/TFMV/canvasgraph/graph"
	"github.com/TFMV/canvasgraph/physics"
)

// EdgeHitTolerance is the maximum pointer distance, in canvas units, at
// which a click still hits an edge line.
const EdgeHitTolerance = 4.0

// Device is the external drawing collaborator. Identifiers are stable per
// element; drawing an already-drawn identifier replaces it.
type Device interface {
	// DrawVertex draws (or redraws) a circle of radius r centered at (x, y)
	// with the label inside it.
	DrawVertex(id string, x, y, r float64, label string) error

	// DrawEdge draws (or redraws) a line between the two points with the
	// label at its midpoint.
	DrawEdge(id string, x1, y1, x2, y2 float64, label string) error

	// Erase removes a previously drawn element.
	Erase(id string) error
}

// Kind discriminates the element variant.
type Kind int

const (
	KindNone Kind = iota
	KindVertex
	KindEdge
)

// Element is a tagged variant over the two drawable element types. The zero
// value means "no element".
type Element struct {
	Kind   Kind
	Vertex *graph.Vertex
	Edge   *graph.Edge
}

// ID returns the underlying element ID, or the empty ID for the zero value.
func (el Element) ID() graph.ID {
	switch el.Kind {
	case KindVertex:
		return el.Vertex.ID
	case KindEdge:
		return el.Edge.ID
	}
	return ""
}

// Label returns the element's display label.
func (el Element) Label() string {
	switch el.Kind {
	case KindVertex:
		return el.Vertex.Label
	case KindEdge:
		return el.Edge.Label
	}
	return ""
}

// IsZero reports whether the element is the "no element" value.
func (el Element) IsZero() bool { return el.Kind == KindNone }

// Scene binds a graph to a device and adds hit-testing, selection and layout
// stepping on top of the model's mutations.
type Scene struct {
	g   *graph.Graph
	dev Device

	// Selection holds the currently selected elements; selected vertices are
	// pinned during layout steps.
	Selection *Selection

	devErr error // first device failure, surfaced by mutating calls
}

// NewScene creates a scene over the graph and device and subscribes to the
// graph's mutations. Elements already in the graph are drawn up front.
func NewScene(g *graph.Graph, dev Device) (*Scene, error) {
	s := &Scene{g: g, dev: dev, Selection: newSelection()}
	g.Notify((*sceneObserver)(s))
	if err := s.Redraw(); err != nil {
		return nil, err
	}
	return s, nil
}

// Graph returns the underlying model.
func (s *Scene) Graph() *graph.Graph { return s.g }

// Err returns the first device failure seen by the observer path, if any.
func (s *Scene) Err() error { return s.devErr }

// takeErr returns and clears the pending device error.
func (s *Scene) takeErr() error {
	err := s.devErr
	s.devErr = nil
	return err
}

// AddVertex creates a vertex and draws it.
func (s *Scene) AddVertex(x, y float64, label string) (*graph.Vertex, error) {
	v, err := s.g.AddVertex(x, y, label)
	if err != nil {
		return nil, err
	}
	return v, s.takeErr()
}

// AddEdge creates an edge and draws it.
func (s *Scene) AddEdge(a, b graph.ID, label string) (*graph.Edge, error) {
	e, err := s.g.AddEdge(a, b, label)
	if err != nil {
		return nil, err
	}
	return e, s.takeErr()
}

// ConnectLowestPair adds an edge between the lowest-sequence unconnected
// vertex pair and draws it. Returns graph.ErrNoCandidatePair when the graph
// is complete.
func (s *Scene) ConnectLowestPair(label string) (*graph.Edge, error) {
	e, err := s.g.ConnectLowestPair(label)
	if err != nil {
		return nil, err
	}
	return e, s.takeErr()
}

// Remove deletes an element, cascading when it is a vertex, and erases
// everything removed.
func (s *Scene) Remove(el Element) error {
	var err error
	switch el.Kind {
	case KindVertex:
		err = s.g.RemoveVertex(el.Vertex.ID)
	case KindEdge:
		err = s.g.RemoveEdge(el.Edge.ID)
	default:
		return graph.ErrElementNotFound
	}
	if err != nil {
		return err
	}
	return s.takeErr()
}

// Relabel changes an element's label and redraws it.
func (s *Scene) Relabel(id graph.ID, label string) error {
	if err := s.g.Relabel(id, label); err != nil {
		return err
	}
	return s.takeErr()
}

// MoveVertex repositions a vertex and redraws it with its incident edges.
func (s *Scene) MoveVertex(id graph.ID, x, y float64) error {
	if err := s.g.MoveVertex(id, x, y); err != nil {
		return err
	}
	return s.takeErr()
}

// ElementAt hit-tests the point against the scene, vertices before edges and
// newest first within each kind, matching what is drawn on top.
func (s *Scene) ElementAt(x, y float64) Element {
	vs := s.g.Vertices()
	for i := len(vs) - 1; i >= 0; i-- {
		v := vs[i]
		dx, dy := x-v.X, y-v.Y
		if dx*dx+dy*dy <= v.Radius*v.Radius {
			return Element{Kind: KindVertex, Vertex: v}
		}
	}
	es := s.g.Edges()
	for i := len(es) - 1; i >= 0; i-- {
		e := es[i]
		from, _ := s.g.Vertex(e.From)
		to, _ := s.g.Vertex(e.To)
		if segmentDistance(x, y, from.X, from.Y, to.X, to.Y) <= EdgeHitTolerance {
			return Element{Kind: KindEdge, Edge: e}
		}
	}
	return Element{}
}

// BoundingBox returns the element's axis-aligned bounding box.
func (s *Scene) BoundingBox(el Element) (minX, minY, maxX, maxY float64) {
	switch el.Kind {
	case KindVertex:
		v := el.Vertex
		return v.X - v.Radius, v.Y - v.Radius, v.X + v.Radius, v.Y + v.Radius
	case KindEdge:
		from, _ := s.g.Vertex(el.Edge.From)
		to, _ := s.g.Vertex(el.Edge.To)
		return math.Min(from.X, to.X), math.Min(from.Y, to.Y),
			math.Max(from.X, to.X), math.Max(from.Y, to.Y)
	}
	return 0, 0, 0, 0
}

// LayoutStep runs one force-directed relaxation step over the whole graph,
// pinning selected vertices, and moves every vertex to its new position.
// It returns the mean force magnitude of the step.
func (s *Scene) LayoutStep() (float64, error) {
	bodies := make(map[int64]physics.Body)
	idBySeq := make(map[int64]graph.ID)
	for _, v := range s.g.Vertices() {
		bodies[v.Seq] = physics.Body{X: v.X, Y: v.Y, Radius: v.Radius}
		idBySeq[v.Seq] = v.ID
	}
	var springs []physics.Spring
	for _, e := range s.g.Edges() {
		from, _ := s.g.Vertex(e.From)
		to, _ := s.g.Vertex(e.To)
		springs = append(springs, physics.Spring{A: from.Seq, B: to.Seq})
	}
	fixed := make(map[int64]struct{})
	for _, el := range s.Selection.Elements() {
		if el.Kind == KindVertex {
			fixed[el.Vertex.Seq] = struct{}{}
		}
	}
	w, h := s.g.Bounds()
	next, mean := physics.Step(bodies, springs, physics.Options{
		Fixed:  fixed,
		Bounds: &physics.Rect{MinX: 0, MinY: 0, MaxX: w, MaxY: h},
	})
	for seq, p := range next {
		if err := s.MoveVertex(idBySeq[seq], p.X, p.Y); err != nil {
			return mean, err
		}
	}
	return mean, nil
}

// Redraw repaints the whole scene: edges first, then vertices on top.
func (s *Scene) Redraw() error {
	for _, e := range s.g.Edges() {
		if err := s.drawEdge(e); err != nil {
			return err
		}
	}
	for _, v := range s.g.Vertices() {
		if err := s.dev.DrawVertex(string(v.ID), v.X, v.Y, v.Radius, v.Label); err != nil {
			return fmt.Errorf("canvas: draw vertex: %w", err)
		}
	}
	return nil
}

func (s *Scene) drawEdge(e *graph.Edge) error {
	from, _ := s.g.Vertex(e.From)
	to, _ := s.g.Vertex(e.To)
	if err := s.dev.DrawEdge(string(e.ID), from.X, from.Y, to.X, to.Y, e.Label); err != nil {
		return fmt.Errorf("canvas: draw edge: %w", err)
	}
	return nil
}

// sceneObserver replays graph mutations onto the device. It is the Scene
// under a separate method set so the Observer methods stay off the public
// Scene API.
type sceneObserver Scene

func (o *sceneObserver) scene() *Scene { return (*Scene)(o) }

func (o *sceneObserver) record(err error) {
	if err != nil && o.devErr == nil {
		o.devErr = err
	}
}

func (o *sceneObserver) VertexAdded(v *graph.Vertex) {
	o.record(o.dev.DrawVertex(string(v.ID), v.X, v.Y, v.Radius, v.Label))
}

func (o *sceneObserver) VertexMoved(v *graph.Vertex) {
	o.record(o.dev.DrawVertex(string(v.ID), v.X, v.Y, v.Radius, v.Label))
	// Incident edges follow their endpoint.
	for _, e := range o.scene().g.IncidentEdges(v.ID) {
		o.record(o.scene().drawEdge(e))
	}
}

func (o *sceneObserver) VertexRemoved(v *graph.Vertex) {
	o.record(o.dev.Erase(string(v.ID)))
	o.scene().Selection.discard(v.ID)
}

func (o *sceneObserver) EdgeAdded(e *graph.Edge) {
	o.record(o.scene().drawEdge(e))
}

func (o *sceneObserver) EdgeRemoved(e *graph.Edge) {
	o.record(o.dev.Erase(string(e.ID)))
	o.scene().Selection.discard(e.ID)
}

func (o *sceneObserver) VertexRelabeled(v *graph.Vertex) {
	o.record(o.dev.DrawVertex(string(v.ID), v.X, v.Y, v.Radius, v.Label))
}

func (o *sceneObserver) EdgeRelabeled(e *graph.Edge) {
	o.record(o.scene().drawEdge(e))
}

// segmentDistance returns the distance from point (px, py) to the segment
// (x1, y1)-(x2, y2).
func segmentDistance(px, py, x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	t := ((px-x1)*dx + (py-y1)*dy) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(x1+t*dx), py-(y1+t*dy))
}
