// Package debugview is an opt-in introspection endpoint for a running
// Engine: it polls print_debug-style snapshots on an interval and pushes
// them to any connected websocket client, modeled on the teacher's
// realtime push server. It only ever reads the engine -- never process,
// predict, save, load, or any topology call -- so it cannot violate the
// single-threaded core contract (spec §5) no matter when a client
// connects.
package debugview

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"embedml/fuzzy"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a snapshot to the peer.
	writeWait = 1 * time.Second
	// Time to wait before force-closing a connection.
	closeGracePeriod = 10 * time.Second
)

var upgrader = websocket.Upgrader{}

// Server polls engine's debug snapshot on interval and serves it over a
// websocket at /ws, with a minimal index page at /.
type Server struct {
	addr     string
	engine   *fuzzy.Engine
	interval time.Duration
	full     bool
}

// NewServer returns a Server for engine, serving at addr. full controls
// whether pushed snapshots include the rule dump (print_debug's full
// flag) or just the variable/observation-group counts.
func NewServer(addr string, engine *fuzzy.Engine, interval time.Duration, full bool) *Server {
	return &Server{addr: addr, engine: engine, interval: interval, full: full}
}

// Serve blocks, serving until ListenAndServe returns an error.
func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/ws", s.serveWebsocket)
	if err := http.ListenAndServe(s.addr, mux); err != nil {
		return fmt.Errorf("debugview: serve: %w", err)
	}
	return nil
}

// Handler returns the same routes Serve installs, for embedding in a host
// application's own mux or for tests that want an httptest.Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/ws", s.serveWebsocket)
	return mux
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		log.Println("debugview: upgrade:", err)
		return
	}
	defer closeWebsocket(ws)
	s.publishSnapshots(ws)
}

// publishSnapshots pushes one snapshot per tick until the write fails (the
// client disconnected) or the connection is closed out from under it.
// TODO: support multiple concurrent viewers; this assumes one per socket.
func (s *Server) publishSnapshots(ws *websocket.Conn) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for range ticker.C {
		snap := s.engine.DebugSnapshot(s.full)
		if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := ws.WriteJSON(snap); err != nil {
			return
		}
	}
}

func closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	ws.Close()
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(indexHTML))
}

const indexHTML = `<!doctype html>
<html><body>
<pre id="out"></pre>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => { document.getElementById("out").textContent = ev.data; };
</script>
</body></html>`
