package canvas_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TFMV/canvasgraph/canvas"
	"github.com/TFMV/canvasgraph/graph"
)

func newScene(t *testing.T) (*canvas.Scene, *canvas.Recorder) {
	t.Helper()
	rec := canvas.NewRecorder()
	scene, err := canvas.NewScene(graph.New(800, 600), rec)
	require.NoError(t, err)
	return scene, rec
}

func TestSceneDrawsMutationsImmediately(t *testing.T) {
	scene, rec := newScene(t)

	v, err := scene.AddVertex(100, 100, "a")
	require.NoError(t, err)
	shape, ok := rec.Shape(string(v.ID))
	require.True(t, ok)
	require.True(t, shape.Vertex)
	require.Equal(t, 100.0, shape.X)
	require.Equal(t, "a", shape.Label)

	w, err := scene.AddVertex(300, 100, "b")
	require.NoError(t, err)
	e, err := scene.AddEdge(v.ID, w.ID, "ab")
	require.NoError(t, err)
	shape, ok = rec.Shape(string(e.ID))
	require.True(t, ok)
	require.False(t, shape.Vertex)
	require.Equal(t, 100.0, shape.X1)
	require.Equal(t, 300.0, shape.X2)
	require.Equal(t, 3, rec.Len())
}

func TestMoveVertexRedrawsIncidentEdges(t *testing.T) {
	scene, rec := newScene(t)
	v, _ := scene.AddVertex(100, 100, "a")
	w, _ := scene.AddVertex(300, 100, "b")
	e, _ := scene.AddEdge(v.ID, w.ID, "")

	require.NoError(t, scene.MoveVertex(v.ID, 150, 200))

	shape, _ := rec.Shape(string(v.ID))
	require.Equal(t, 150.0, shape.X)
	require.Equal(t, 200.0, shape.Y)

	edge, _ := rec.Shape(string(e.ID))
	require.Equal(t, 150.0, edge.X1)
	require.Equal(t, 200.0, edge.Y1)
	require.Equal(t, 300.0, edge.X2)
}

func TestRemoveErasesAndCascades(t *testing.T) {
	scene, rec := newScene(t)
	v, _ := scene.AddVertex(100, 100, "a")
	w, _ := scene.AddVertex(300, 100, "b")
	e, _ := scene.AddEdge(v.ID, w.ID, "")

	el := scene.ElementAt(100, 100)
	require.NoError(t, scene.Remove(el))

	_, ok := rec.Shape(string(v.ID))
	require.False(t, ok)
	_, ok = rec.Shape(string(e.ID))
	require.False(t, ok)
	_, ok = rec.Shape(string(w.ID))
	require.True(t, ok)
	require.Equal(t, 1, rec.Len())
}

func TestRemoveZeroElement(t *testing.T) {
	scene, _ := newScene(t)
	err := scene.Remove(canvas.Element{})
	require.ErrorIs(t, err, graph.ErrElementNotFound)
}

func TestElementAtHitsVerticesBeforeEdges(t *testing.T) {
	scene, _ := newScene(t)
	v, _ := scene.AddVertex(100, 100, "a")
	w, _ := scene.AddVertex(300, 100, "b")
	e, _ := scene.AddEdge(v.ID, w.ID, "")

	// Inside the first vertex circle.
	el := scene.ElementAt(105, 95)
	require.Equal(t, canvas.KindVertex, el.Kind)
	require.Equal(t, v.ID, el.ID())

	// On the edge line, between the circles.
	el = scene.ElementAt(200, 102)
	require.Equal(t, canvas.KindEdge, el.Kind)
	require.Equal(t, e.ID, el.ID())

	// Beyond the edge hit tolerance.
	el = scene.ElementAt(200, 110)
	require.True(t, el.IsZero())

	// Empty space.
	require.True(t, scene.ElementAt(700, 500).IsZero())
}

func TestElementAtPrefersNewestVertex(t *testing.T) {
	scene, _ := newScene(t)
	_, _ = scene.AddVertex(100, 100, "under")
	top, _ := scene.AddVertex(104, 100, "over")

	el := scene.ElementAt(102, 100)
	require.Equal(t, top.ID, el.ID())
}

func TestSelectionFollowsRemovals(t *testing.T) {
	scene, _ := newScene(t)
	v, _ := scene.AddVertex(100, 100, "a")

	el := scene.ElementAt(100, 100)
	scene.Selection.Set(el)
	require.True(t, scene.Selection.Contains(v.ID))

	require.NoError(t, scene.Remove(el))
	require.Zero(t, scene.Selection.Len())
}

func TestSelectionToggle(t *testing.T) {
	scene, _ := newScene(t)
	v, _ := scene.AddVertex(100, 100, "a")
	w, _ := scene.AddVertex(300, 100, "b")

	var changes int
	scene.Selection.OnChange(func() { changes++ })

	scene.Selection.Toggle(scene.ElementAt(100, 100))
	scene.Selection.Toggle(scene.ElementAt(300, 100))
	require.Equal(t, 2, scene.Selection.Len())
	require.True(t, scene.Selection.Contains(v.ID))
	require.True(t, scene.Selection.Contains(w.ID))

	scene.Selection.Toggle(scene.ElementAt(100, 100))
	require.False(t, scene.Selection.Contains(v.ID))
	require.Equal(t, 3, changes)
}

func TestLayoutStepPinsSelection(t *testing.T) {
	scene, rec := newScene(t)
	v, _ := scene.AddVertex(100, 300, "pinned")
	w, _ := scene.AddVertex(400, 300, "free")
	_, _ = scene.AddEdge(v.ID, w.ID, "")

	scene.Selection.Set(scene.ElementAt(100, 300))

	mean, err := scene.LayoutStep()
	require.NoError(t, err)
	require.Greater(t, mean, 0.0)

	require.Equal(t, 100.0, v.X)
	require.Equal(t, 300.0, v.Y)
	require.Less(t, w.X, 400.0)

	// The device saw the moved vertex.
	shape, _ := rec.Shape(string(w.ID))
	require.Equal(t, w.X, shape.X)
}

func TestBoundingBox(t *testing.T) {
	scene, _ := newScene(t)
	v, _ := scene.AddVertex(100, 100, "a")
	w, _ := scene.AddVertex(300, 200, "b")
	e, _ := scene.AddEdge(v.ID, w.ID, "")

	minX, minY, maxX, maxY := scene.BoundingBox(canvas.Element{Kind: canvas.KindVertex, Vertex: v})
	require.Equal(t, 100.0-v.Radius, minX)
	require.Equal(t, 100.0-v.Radius, minY)
	require.Equal(t, 100.0+v.Radius, maxX)
	require.Equal(t, 100.0+v.Radius, maxY)

	minX, minY, maxX, maxY = scene.BoundingBox(canvas.Element{Kind: canvas.KindEdge, Edge: e})
	require.Equal(t, 100.0, minX)
	require.Equal(t, 100.0, minY)
	require.Equal(t, 300.0, maxX)
	require.Equal(t, 200.0, maxY)
}

// failingDevice errors on every draw after the first n calls succeed.
type failingDevice struct {
	calls, allow int
}

var errDevice = errors.New("device gone")

func (d *failingDevice) DrawVertex(id string, x, y, r float64, label string) error {
	d.calls++
	if d.calls > d.allow {
		return errDevice
	}
	return nil
}

func (d *failingDevice) DrawEdge(id string, x1, y1, x2, y2 float64, label string) error {
	d.calls++
	if d.calls > d.allow {
		return errDevice
	}
	return nil
}

func (d *failingDevice) Erase(id string) error { return nil }

func TestDeviceFailureSurfacesOnMutation(t *testing.T) {
	g := graph.New(800, 600)
	scene, err := canvas.NewScene(g, &failingDevice{allow: 1})
	require.NoError(t, err)

	_, err = scene.AddVertex(10, 10, "ok")
	require.NoError(t, err)

	_, err = scene.AddVertex(20, 20, "boom")
	require.ErrorIs(t, err, errDevice)

	// The model mutation itself still happened.
	require.Equal(t, 2, g.Order())
}
