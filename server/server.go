// Package server provides the standalone interactive mode: a browser canvas
// pre-wired with the editing mouse and key bindings, driven over a
// websocket. Each connection gets its own graph and controller; the page
// replays the draw operations the scene emits.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/TFMV/canvasgraph/graph"
	"github.com/TFMV/canvasgraph/render"
)

// Config for the interactive server.
type Config struct {
	Addr   string  // listen address, e.g. ":8080"
	Width  float64 // canvas width for new sessions
	Height float64 // canvas height for new sessions
	Seed   int64   // seed for random-vertex placement
	Logger *slog.Logger
}

// NewLogger builds a text slog handler that trims source file paths down to
// their base name.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if source, _ := a.Value.Any().(*slog.Source); source != nil {
					source.File = filepath.Base(source.File)
				}
			}
			return a
		},
	}))
}

type service struct {
	cfg      Config
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session
}

func newService(cfg Config) *service {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &service{
		cfg:      cfg,
		log:      log,
		sessions: make(map[string]*session),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (svc *service) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", svc.handleIndex)
	mux.HandleFunc("/ws", svc.handleSession)
	mux.HandleFunc("/export", svc.handleExport)
	return mux
}

// Start runs the interactive server until the context is canceled.
func Start(ctx context.Context, cfg Config) error {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	svc := newService(cfg)

	// No read or write timeouts: websocket sessions are long-lived.
	srv := &http.Server{
		Addr:        cfg.Addr,
		Handler:     svc.routes(),
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	svc.log.Info("starting interactive server", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleSession upgrades the connection and runs the event loop for one
// client until it disconnects.
func (svc *service) handleSession(w http.ResponseWriter, r *http.Request) {
	c, err := svc.upgrader.Upgrade(w, r, nil)
	if err != nil {
		svc.log.Error("ws upgrade failed", "err", err)
		return
	}
	defer c.Close()

	conn := newThreadSafeConn(c)
	sess, err := newSession(conn, svc.cfg.Width, svc.cfg.Height, svc.cfg.Seed)
	if err != nil {
		svc.log.Error("session setup failed", "err", err)
		return
	}

	id := uuid.New().String()
	svc.mu.Lock()
	svc.sessions[id] = sess
	svc.mu.Unlock()
	defer func() {
		svc.mu.Lock()
		delete(svc.sessions, id)
		svc.mu.Unlock()
	}()

	if err := conn.WriteJSON(serverMessage{Type: "session", ID: id}); err != nil {
		svc.log.Error("session hello failed", "err", err)
		return
	}
	svc.log.Info("session started", "session", id, "remote", r.RemoteAddr)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			svc.log.Info("session closed", "session", id)
			return
		}
		if err := sess.handle(raw); err != nil {
			svc.log.Warn("event dropped", "session", id, "err", err)
		}
	}
}

// handleExport renders a live session's graph in the requested format.
func (svc *service) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}

	svc.mu.Lock()
	sess, ok := svc.sessions[id]
	svc.mu.Unlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	renderer, err := render.For(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	options := render.NewDefaultOptions()
	options.Width = svc.cfg.Width
	options.Height = svc.cfg.Height

	out, err := sess.snapshot(func(g *graph.Graph) ([]byte, error) {
		return renderer.Render(g, options)
	})
	if err != nil {
		http.Error(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	switch format {
	case "svg":
		w.Header().Set("Content-Type", "image/svg+xml")
	case "json":
		w.Header().Set("Content-Type", "application/json")
	case "echarts", "html":
		w.Header().Set("Content-Type", "text/html")
	default:
		w.Header().Set("Content-Type", "text/plain")
	}
	_, _ = w.Write(out)
}

// handleIndex serves the canvas page.
func (svc *service) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, indexHTML, svc.cfg.Width, svc.cfg.Height)
}

// indexHTML is the embedded interactive page. The two %g verbs receive the
// canvas width and height.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>canvasgraph</title>
  <style>
    body { font-family: 'Helvetica Neue', Arial, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; color: #333; }
    .container { max-width: 1200px; margin: 0 auto; background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
    h1 { margin-top: 0; border-bottom: 2px solid #eee; padding-bottom: 10px; }
    canvas { border: 1px solid #ddd; background: #fafafa; display: block; }
    .hint { color: #777; font-size: 13px; margin: 10px 0; }
    .links a { margin-right: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <h1>canvasgraph</h1>
    <p class="hint">
      Ctrl-click empty space: new vertex &middot; Ctrl-drag vertex to vertex: new edge &middot;
      drag vertex: move &middot; Ctrl-right-click: delete &middot; right-click: relabel &middot;
      keys: o = layout step, j = random vertex, k = connect pair
    </p>
    <canvas id="c" width="%g" height="%g"></canvas>
    <p class="links" id="links"></p>
  </div>
  <script>
    const cv = document.getElementById('c');
    const ctx = cv.getContext('2d');
    const vertices = new Map();
    const edges = new Map();
    let sessionId = null;

    const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');

    function repaint() {
      ctx.clearRect(0, 0, cv.width, cv.height);
      ctx.strokeStyle = '#666';
      ctx.fillStyle = '#333';
      ctx.font = '10px sans-serif';
      ctx.textAlign = 'center';
      for (const e of edges.values()) {
        ctx.beginPath();
        ctx.moveTo(e.x1, e.y1);
        ctx.lineTo(e.x2, e.y2);
        ctx.stroke();
        if (e.label) ctx.fillText(e.label, (e.x1 + e.x2) / 2, (e.y1 + e.y2) / 2 - 4);
      }
      for (const v of vertices.values()) {
        ctx.beginPath();
        ctx.arc(v.x, v.y, v.r, 0, 2 * Math.PI);
        ctx.fillStyle = '#fff';
        ctx.fill();
        ctx.strokeStyle = '#333';
        ctx.stroke();
        if (v.label) {
          ctx.fillStyle = '#333';
          ctx.fillText(v.label, v.x, v.y + 3);
        }
      }
    }

    ws.onmessage = (evt) => {
      const msg = JSON.parse(evt.data);
      switch (msg.type) {
        case 'session':
          sessionId = msg.id;
          document.getElementById('links').innerHTML =
            ['svg', 'json', 'dot', 'echarts'].map(f =>
              '<a href="/export?session=' + sessionId + '&format=' + f + '" target="_blank">export ' + f + '</a>'
            ).join('');
          return;
        case 'vertex':
          vertices.set(msg.id, {x: msg.x, y: msg.y, r: msg.r, label: msg.label || ''});
          break;
        case 'edge':
          edges.set(msg.id, {x1: msg.x1, y1: msg.y1, x2: msg.x2, y2: msg.y2, label: msg.label || ''});
          break;
        case 'erase':
          vertices.delete(msg.id);
          edges.delete(msg.id);
          break;
        case 'prompt': {
          const label = window.prompt('Label:', msg.label || '');
          if (label !== null) ws.send(JSON.stringify({type: 'relabel', id: msg.id, label: label}));
          return;
        }
      }
      repaint();
    };

    function send(phase, evt) {
      const rect = cv.getBoundingClientRect();
      ws.send(JSON.stringify({
        type: 'pointer',
        phase: phase,
        x: evt.clientX - rect.left,
        y: evt.clientY - rect.top,
        button: evt.button === 2 ? 3 : 1,
        ctrl: evt.ctrlKey,
        shift: evt.shiftKey,
      }));
    }

    let buttonDown = false;
    cv.addEventListener('mousedown', (e) => { buttonDown = true; send('press', e); });
    cv.addEventListener('mousemove', (e) => { if (buttonDown) send('move', e); });
    cv.addEventListener('mouseup', (e) => { buttonDown = false; send('release', e); });
    cv.addEventListener('contextmenu', (e) => e.preventDefault());
    window.addEventListener('keydown', (e) => {
      if (['o', 'j', 'k'].includes(e.key)) {
        ws.send(JSON.stringify({type: 'key', key: e.key, ctrl: e.ctrlKey, shift: e.shiftKey}));
      }
    });
  </script>
</body>
</html>
`
