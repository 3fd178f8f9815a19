// Package stream serves the particle backdrop to browsers over a websocket.
// The hub is a drawing surface whose frames are broadcast as JSON and a
// viewport whose size is reported by the connected page.
package stream

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"image/color"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

//go:embed index.html
var indexHTML []byte

// Circle is one filled circle in a frame.
type Circle struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	R    float64 `json:"r"`
	Fill string  `json:"fill"` // CSS rgba()
}

// Frame is one presented frame.
type Frame struct {
	Seq     int64    `json:"seq"`
	Width   int      `json:"w"`
	Height  int      `json:"h"`
	Circles []Circle `json:"circles"`
}

// viewportMessage is sent by the page on load and on every window resize.
type viewportMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// client is one connected page. Frames queue on send and are written by
// the client's own goroutine.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts frames to every connected page.
//
// Surface methods are called from the animation goroutine only. The
// viewport size is written by connection readers and read under mu.
type Hub struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	// OnViewport is called from a connection's reader goroutine each
	// time a page reports its size. Hosts hand the resize over to the
	// animation goroutine from here.
	OnViewport func(width, height int)

	mu      sync.Mutex
	clients map[*client]struct{}
	vw, vh  int

	width, height int
	current       []Circle
	seq           int64
}

// NewHub creates a hub whose viewport reports width x height until a page
// reports its own size.
func NewHub(width, height int, writeTimeout time.Duration) *Hub {
	if writeTimeout <= 0 {
		writeTimeout = 2 * time.Second
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
		clients:      make(map[*client]struct{}),
		vw:           width,
		vh:           height,
	}
}

// Handler serves the canvas page at / and the websocket at /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	})
	mux.HandleFunc("/ws", h.serveWS)
	return mux
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			slog.Error("websocket upgrade failed", "error", err)
		}
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 4)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Info("client connected", "remote", r.RemoteAddr, "clients", n)

	go h.writePump(c)
	h.readPump(c)
}

// readPump handles viewport messages until the connection closes.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read failed", "error", err)
			}
			return
		}

		var vm viewportMessage
		if err := json.Unmarshal(msg, &vm); err != nil || vm.Type != "viewport" {
			slog.Debug("ignoring client message", "msg", string(msg))
			continue
		}

		h.mu.Lock()
		h.vw, h.vh = vm.Width, vm.Height
		h.mu.Unlock()

		if h.OnViewport != nil {
			h.OnViewport(vm.Width, vm.Height)
		}
	}
}

// writePump writes queued frames until send is closed.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			slog.Debug("websocket write failed", "error", err)
			// Unblock readPump so the client is unregistered
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(h.writeTimeout))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Info("client disconnected", "clients", n)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Clients returns the number of connected pages.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Size reports the most recently reported page size.
func (h *Hub) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.vw, h.vh
}

// SetSize sets the frame dimensions sent with every frame.
func (h *Hub) SetSize(width, height int) {
	h.width, h.height = width, height
	h.current = h.current[:0]
}

// Clear starts a new frame.
func (h *Hub) Clear() {
	h.current = h.current[:0]
}

// FillCircle adds a circle to the frame in progress.
func (h *Hub) FillCircle(x, y, radius float64, fill color.NRGBA) {
	h.current = append(h.current, Circle{X: x, Y: y, R: radius, Fill: cssColor(fill)})
}

// Present broadcasts the frame. Clients that have not drained earlier
// frames skip this one.
func (h *Hub) Present() {
	h.seq++
	msg, err := json.Marshal(Frame{Seq: h.seq, Width: h.width, Height: h.height, Circles: h.current})
	if err != nil {
		slog.Error("failed to encode frame", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func cssColor(c color.NRGBA) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, float64(c.A)/255)
}
