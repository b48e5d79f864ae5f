package interact_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TFMV/canvasgraph/canvas"
	"github.com/TFMV/canvasgraph/graph"
	"github.com/TFMV/canvasgraph/interact"
)

func newController(t *testing.T, opts ...interact.Option) (*interact.Controller, *canvas.Scene) {
	t.Helper()
	scene, err := canvas.NewScene(graph.New(800, 600), canvas.NewRecorder())
	require.NoError(t, err)
	return interact.New(scene, opts...), scene
}

func press(x, y float64, mod interact.Modifier) interact.PointerEvent {
	return interact.PointerEvent{X: x, Y: y, Button: interact.ButtonLeft, Mod: mod}
}

func TestCtrlClickOnEmptyCreatesVertex(t *testing.T) {
	c, scene := newController(t)

	c.Pressed(press(50, 50, interact.ModControl))
	c.Released(press(50, 50, interact.ModControl))

	g := scene.Graph()
	require.Equal(t, 1, g.Order())
	v := g.Vertices()[0]
	require.Equal(t, 50.0, v.X)
	require.Equal(t, 50.0, v.Y)
}

func TestCtrlDragBetweenVerticesCreatesEdge(t *testing.T) {
	c, scene := newController(t)
	a, _ := scene.AddVertex(100, 100, "a")
	b, _ := scene.AddVertex(300, 100, "b")

	c.Pressed(press(100, 100, interact.ModControl))
	require.True(t, c.Dragging())
	c.Moved(press(200, 100, interact.ModControl))
	c.Released(press(300, 100, interact.ModControl))

	g := scene.Graph()
	require.Equal(t, 1, g.Size())
	e := g.Edges()[0]
	require.Equal(t, a.ID, e.From)
	require.Equal(t, b.ID, e.To)
	require.False(t, c.Dragging())
}

func TestCtrlReleaseOverOriginCreatesNoEdge(t *testing.T) {
	c, scene := newController(t)
	_, _ = scene.AddVertex(100, 100, "a")

	// An in-place Ctrl-click on a vertex starts the edge gesture but must not
	// produce a self-loop when released over the same vertex.
	c.Pressed(press(100, 100, interact.ModControl))
	require.True(t, c.Dragging())
	c.Released(press(105, 95, interact.ModControl))

	g := scene.Graph()
	require.Zero(t, g.Size())
	require.Equal(t, 1, g.Order())
	require.False(t, c.Dragging())
}

func TestCtrlDragToEmptyDiscardsEdge(t *testing.T) {
	c, scene := newController(t)
	_, _ = scene.AddVertex(100, 100, "a")

	c.Pressed(press(100, 100, interact.ModControl))
	c.Released(press(500, 400, interact.ModControl))

	require.Zero(t, scene.Graph().Size())
	// No vertex was created at the release point either.
	require.Equal(t, 1, scene.Graph().Order())
	require.False(t, c.Dragging())
}

func TestPlainDragMovesVertex(t *testing.T) {
	c, scene := newController(t)
	a, _ := scene.AddVertex(100, 100, "a")

	c.Pressed(press(100, 100, interact.ModNone))
	require.True(t, c.Dragging())
	c.Moved(press(180, 140, interact.ModNone))
	c.Moved(press(250, 220, interact.ModNone))
	c.Released(press(250, 220, interact.ModNone))

	require.Equal(t, 250.0, a.X)
	require.Equal(t, 220.0, a.Y)
	require.True(t, scene.Selection.Contains(a.ID))
	require.False(t, c.Dragging())
}

func TestPlainClickSelectsAndClears(t *testing.T) {
	c, scene := newController(t)
	a, _ := scene.AddVertex(100, 100, "a")
	b, _ := scene.AddVertex(300, 100, "b")

	c.Pressed(press(100, 100, interact.ModNone))
	c.Released(press(100, 100, interact.ModNone))
	require.True(t, scene.Selection.Contains(a.ID))
	require.Equal(t, 1, scene.Selection.Len())

	// Shift extends, then shrinks.
	c.Pressed(press(300, 100, interact.ModShift))
	c.Released(press(300, 100, interact.ModShift))
	require.Equal(t, 2, scene.Selection.Len())
	c.Pressed(press(300, 100, interact.ModShift))
	c.Released(press(300, 100, interact.ModShift))
	require.Equal(t, 1, scene.Selection.Len())
	require.False(t, scene.Selection.Contains(b.ID))

	// Clicking empty space clears.
	c.Pressed(press(600, 500, interact.ModNone))
	c.Released(press(600, 500, interact.ModNone))
	require.Zero(t, scene.Selection.Len())
}

func TestCtrlRightClickDeletesWithCascade(t *testing.T) {
	c, scene := newController(t)
	a, _ := scene.AddVertex(100, 100, "a")
	b, _ := scene.AddVertex(300, 100, "b")
	_, _ = scene.AddEdge(a.ID, b.ID, "")

	c.Released(interact.PointerEvent{X: 100, Y: 100, Button: interact.ButtonRight, Mod: interact.ModControl})

	g := scene.Graph()
	require.Equal(t, 1, g.Order())
	require.Zero(t, g.Size())
	_, ok := g.Vertex(b.ID)
	require.True(t, ok)
}

func TestRightClickPromptsForRelabel(t *testing.T) {
	var prompted string
	prompter := interact.PrompterFunc(func(el canvas.Element, current string) (string, bool) {
		prompted = current
		return "renamed", true
	})
	c, scene := newController(t, interact.WithPrompter(prompter))
	a, _ := scene.AddVertex(100, 100, "original")

	c.Released(interact.PointerEvent{X: 100, Y: 100, Button: interact.ButtonRight})

	require.Equal(t, "original", prompted)
	require.Equal(t, "renamed", a.Label)
}

func TestRelabelAbortKeepsLabel(t *testing.T) {
	prompter := interact.PrompterFunc(func(el canvas.Element, current string) (string, bool) {
		return "ignored", false
	})
	c, scene := newController(t, interact.WithPrompter(prompter))
	a, _ := scene.AddVertex(100, 100, "original")

	c.Released(interact.PointerEvent{X: 100, Y: 100, Button: interact.ButtonRight})

	require.Equal(t, "original", a.Label)
}

func TestRandomVertexKeyIsSeeded(t *testing.T) {
	c1, scene1 := newController(t, interact.WithScatterSeed(5))
	c2, scene2 := newController(t, interact.WithScatterSeed(5))

	c1.KeyPressed(interact.KeyEvent{Key: interact.KeyRandomVertex})
	c2.KeyPressed(interact.KeyEvent{Key: interact.KeyRandomVertex})

	v1 := scene1.Graph().Vertices()
	v2 := scene2.Graph().Vertices()
	require.Len(t, v1, 1)
	require.Len(t, v2, 1)
	require.Equal(t, v1[0].X, v2[0].X)
	require.Equal(t, v1[0].Y, v2[0].Y)
}

func TestConnectPairKey(t *testing.T) {
	c, scene := newController(t)
	a, _ := scene.AddVertex(100, 100, "a")
	b, _ := scene.AddVertex(300, 100, "b")

	c.KeyPressed(interact.KeyEvent{Key: interact.KeyConnectPair})
	g := scene.Graph()
	require.Equal(t, 1, g.Size())
	require.True(t, g.HasEdgeBetween(a.ID, b.ID))

	// Complete graph: the key is a silent no-op.
	c.KeyPressed(interact.KeyEvent{Key: interact.KeyConnectPair})
	require.Equal(t, 1, g.Size())
}

func TestLayoutStepKeyMovesVertices(t *testing.T) {
	c, scene := newController(t)
	a, _ := scene.AddVertex(100, 300, "a")
	b, _ := scene.AddVertex(400, 300, "b")
	_, _ = scene.AddEdge(a.ID, b.ID, "")

	c.KeyPressed(interact.KeyEvent{Key: interact.KeyLayoutStep})

	require.Greater(t, a.X, 100.0)
	require.Less(t, b.X, 400.0)
}

func TestUnknownKeyIsIgnored(t *testing.T) {
	c, scene := newController(t)
	c.KeyPressed(interact.KeyEvent{Key: "x"})
	require.Zero(t, scene.Graph().Order())
}
