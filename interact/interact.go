// Package interact turns raw pointer and key events into graph mutations.
//
// The controller is a small state machine driven synchronously by the host
// event loop: it is either idle, dragging a vertex to reposition it, or
// drawing a new edge out of an origin vertex. There are no timers; every
// transition happens inside a single event callback.
package interact

import (
	"errors"

	"github.com/TFMV/canvasgraph/canvas"
	"github.com/TFMV/canvasgraph/graph"
	"github.com/TFMV/canvasgraph/physics"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft  Button = 1
	ButtonRight Button = 3
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModNone    Modifier = 0
	ModControl Modifier = 1 << iota
	ModShift
)

// Has reports whether m includes the given modifier.
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

// PointerEvent is a press, motion or release at a canvas position.
type PointerEvent struct {
	X, Y   float64
	Button Button
	Mod    Modifier
}

// KeyEvent is a key press with modifier state.
type KeyEvent struct {
	Key string
	Mod Modifier
}

// Well-known key bindings for the standalone mode.
const (
	KeyLayoutStep   = "o" // one force-directed relaxation step
	KeyRandomVertex = "j" // create a vertex at a scattered position
	KeyConnectPair  = "k" // connect the lowest unconnected vertex pair
)

// RelabelPrompter asks the user for a new label for an element. Returning
// ok == false aborts the relabel.
type RelabelPrompter interface {
	PromptRelabel(el canvas.Element, current string) (label string, ok bool)
}

// PrompterFunc adapts a function to the RelabelPrompter interface.
type PrompterFunc func(el canvas.Element, current string) (string, bool)

// PromptRelabel implements RelabelPrompter.
func (f PrompterFunc) PromptRelabel(el canvas.Element, current string) (string, bool) {
	return f(el, current)
}

type state int

const (
	idle state = iota
	draggingVertex
	drawingEdge
)

// Controller interprets input events against a scene.
type Controller struct {
	scene    *canvas.Scene
	scatter  *physics.Scatter
	prompter RelabelPrompter
	onError  func(error)

	state  state
	target *graph.Vertex // dragged vertex or edge origin
}

// Option configures a Controller.
type Option func(*Controller)

// WithPrompter installs the relabel affordance.
func WithPrompter(p RelabelPrompter) Option {
	return func(c *Controller) { c.prompter = p }
}

// WithScatterSeed seeds the random-vertex placement.
func WithScatterSeed(seed int64) Option {
	return func(c *Controller) { c.scatter = physics.NewScatter(seed) }
}

// WithErrorHandler installs a hook receiving mutation errors that have no
// user-facing affordance (device failures, for example). Without a handler
// such errors are dropped, matching interactive-use expectations.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Controller) { c.onError = fn }
}

// New creates a controller over the scene.
func New(scene *canvas.Scene, opts ...Option) *Controller {
	c := &Controller{scene: scene, scatter: physics.NewScatter(0)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dragging reports whether a drag of any kind is in progress.
func (c *Controller) Dragging() bool { return c.state != idle }

func (c *Controller) report(err error) {
	if err != nil && c.onError != nil {
		c.onError(err)
	}
}

// Pressed handles a pointer button press.
func (c *Controller) Pressed(ev PointerEvent) {
	if ev.Button != ButtonLeft {
		return
	}
	el := c.scene.ElementAt(ev.X, ev.Y)

	if ev.Mod.Has(ModControl) {
		// Creation gestures: drag an edge out of a vertex, or make a new
		// vertex anywhere else.
		if el.Kind == canvas.KindVertex {
			c.state = drawingEdge
			c.target = el.Vertex
			return
		}
		_, err := c.scene.AddVertex(ev.X, ev.Y, "")
		c.report(err)
		return
	}

	// Plain press: selection, and vertex dragging.
	switch {
	case el.IsZero():
		c.scene.Selection.Clear()
	case ev.Mod.Has(ModShift):
		c.scene.Selection.Toggle(el)
	default:
		c.scene.Selection.Set(el)
	}
	if el.Kind == canvas.KindVertex {
		c.state = draggingVertex
		c.target = el.Vertex
	}
}

// Moved handles pointer motion while a button is held.
func (c *Controller) Moved(ev PointerEvent) {
	if c.state != draggingVertex {
		return
	}
	c.report(c.scene.MoveVertex(c.target.ID, ev.X, ev.Y))
}

// Released handles a pointer button release.
func (c *Controller) Released(ev PointerEvent) {
	if ev.Button == ButtonRight {
		c.releasedRight(ev)
		return
	}

	switch c.state {
	case drawingEdge:
		// Releasing over the origin (an in-place Ctrl-click) creates nothing;
		// the gesture needs a second vertex.
		el := c.scene.ElementAt(ev.X, ev.Y)
		if el.Kind == canvas.KindVertex && el.Vertex.ID != c.target.ID {
			_, err := c.scene.AddEdge(c.target.ID, el.Vertex.ID, "")
			c.report(err)
		}
	}
	c.state = idle
	c.target = nil
}

// releasedRight handles deletion (with modifier) and the relabel affordance
// (without).
func (c *Controller) releasedRight(ev PointerEvent) {
	el := c.scene.ElementAt(ev.X, ev.Y)
	if el.IsZero() {
		return
	}
	if ev.Mod.Has(ModControl) {
		c.report(c.scene.Remove(el))
		return
	}
	if c.prompter == nil {
		return
	}
	if label, ok := c.prompter.PromptRelabel(el, el.Label()); ok {
		c.report(c.scene.Relabel(el.ID(), label))
	}
}

// KeyPressed handles a key press.
func (c *Controller) KeyPressed(ev KeyEvent) {
	switch ev.Key {
	case KeyLayoutStep:
		_, err := c.scene.LayoutStep()
		c.report(err)
	case KeyRandomVertex:
		w, h := c.scene.Graph().Bounds()
		x, y := c.scatter.Next(w, h)
		_, err := c.scene.AddVertex(x, y, "")
		c.report(err)
	case KeyConnectPair:
		_, err := c.scene.ConnectLowestPair("")
		if errors.Is(err, graph.ErrNoCandidatePair) {
			return // complete graph: silently skip
		}
		c.report(err)
	}
}
