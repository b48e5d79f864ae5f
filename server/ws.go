package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/TFMV/canvasgraph/canvas"
	"github.com/TFMV/canvasgraph/graph"
	"github.com/TFMV/canvasgraph/interact"
)

// threadSafeConn wraps a websocket.Conn so concurrent writers (the session
// event path and export snapshots) do not interleave frames. Gorilla allows
// at most one concurrent reader and one concurrent writer per conn.
type threadSafeConn struct {
	c       *websocket.Conn
	writeMu sync.Mutex
	readMu  sync.Mutex
}

func newThreadSafeConn(c *websocket.Conn) *threadSafeConn {
	return &threadSafeConn{c: c}
}

func (s *threadSafeConn) ReadMessage() (int, []byte, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	return s.c.ReadMessage()
}

func (s *threadSafeConn) WriteJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.c.WriteJSON(v)
}

// clientMessage is anything the browser sends over the session socket.
type clientMessage struct {
	Type   string  `json:"type"` // "pointer", "key" or "relabel"
	Phase  string  `json:"phase,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Button int     `json:"button,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	Shift  bool    `json:"shift,omitempty"`
	Key    string  `json:"key,omitempty"`
	ID     string  `json:"id,omitempty"`
	Label  string  `json:"label,omitempty"`
}

// serverMessage is a draw operation or a prompt pushed to the browser.
type serverMessage struct {
	Type  string  `json:"type"` // "vertex", "edge", "erase" or "prompt"
	ID    string  `json:"id"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	R     float64 `json:"r,omitempty"`
	X1    float64 `json:"x1,omitempty"`
	Y1    float64 `json:"y1,omitempty"`
	X2    float64 `json:"x2,omitempty"`
	Y2    float64 `json:"y2,omitempty"`
	Label string  `json:"label,omitempty"`
}

// wsDevice implements canvas.Device by streaming draw operations over the
// session socket; the browser canvas replays them.
type wsDevice struct {
	conn *threadSafeConn
}

func (d *wsDevice) DrawVertex(id string, x, y, r float64, label string) error {
	return d.conn.WriteJSON(serverMessage{Type: "vertex", ID: id, X: x, Y: y, R: r, Label: label})
}

func (d *wsDevice) DrawEdge(id string, x1, y1, x2, y2 float64, label string) error {
	return d.conn.WriteJSON(serverMessage{Type: "edge", ID: id, X1: x1, Y1: y1, X2: x2, Y2: y2, Label: label})
}

func (d *wsDevice) Erase(id string) error {
	return d.conn.WriteJSON(serverMessage{Type: "erase", ID: id})
}

// session owns one connected client: a fresh graph, its scene, and a
// controller wired to the standalone key and mouse bindings. Events are
// handled one at a time; the mutex only orders export snapshots against the
// event loop.
type session struct {
	mu         sync.Mutex
	conn       *threadSafeConn
	scene      *canvas.Scene
	controller *interact.Controller
}

func newSession(conn *threadSafeConn, width, height float64, seed int64) (*session, error) {
	g := graph.New(width, height)
	scene, err := canvas.NewScene(g, &wsDevice{conn: conn})
	if err != nil {
		return nil, fmt.Errorf("server: scene: %w", err)
	}
	s := &session{conn: conn, scene: scene}
	s.controller = interact.New(scene,
		interact.WithScatterSeed(seed),
		interact.WithPrompter(interact.PrompterFunc(s.promptRelabel)),
	)
	return s, nil
}

// promptRelabel forwards the affordance to the browser. The reply arrives as
// a separate "relabel" message, so the synchronous answer is always "no
// change here".
func (s *session) promptRelabel(el canvas.Element, current string) (string, bool) {
	_ = s.conn.WriteJSON(serverMessage{Type: "prompt", ID: string(el.ID()), Label: current})
	return "", false
}

// handle dispatches one client message.
func (s *session) handle(raw []byte) error {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("server: bad message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case "pointer":
		ev := interact.PointerEvent{
			X:      msg.X,
			Y:      msg.Y,
			Button: interact.Button(msg.Button),
			Mod:    modifiers(msg.Ctrl, msg.Shift),
		}
		switch msg.Phase {
		case "press":
			s.controller.Pressed(ev)
		case "move":
			s.controller.Moved(ev)
		case "release":
			s.controller.Released(ev)
		}
	case "key":
		s.controller.KeyPressed(interact.KeyEvent{
			Key: msg.Key,
			Mod: modifiers(msg.Ctrl, msg.Shift),
		})
	case "relabel":
		if err := s.scene.Relabel(graph.ID(msg.ID), msg.Label); err != nil {
			return fmt.Errorf("server: relabel: %w", err)
		}
	}
	return nil
}

// snapshot renders the session graph with the given renderer while the event
// loop is paused.
func (s *session) snapshot(render func(g *graph.Graph) ([]byte, error)) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render(s.scene.Graph())
}

func modifiers(ctrl, shift bool) interact.Modifier {
	mod := interact.ModNone
	if ctrl {
		mod |= interact.ModControl
	}
	if shift {
		mod |= interact.ModShift
	}
	return mod
}
