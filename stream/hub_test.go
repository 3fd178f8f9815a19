package stream

import (
	"encoding/json"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/drift/frame"
	"github.com/pthm-cable/drift/game"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServesPage(t *testing.T) {
	hub := NewHub(800, 600, time.Second)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "<canvas") {
		t.Errorf("unexpected page: %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestViewportMessages(t *testing.T) {
	hub := NewHub(800, 600, time.Second)
	sizes := make(chan [2]int, 4)
	hub.OnViewport = func(w, h int) { sizes <- [2]int{w, h} }

	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	if w, h := hub.Size(); w != 800 || h != 600 {
		t.Errorf("expected initial 800x600, got %dx%d", w, h)
	}

	conn := dial(t, srv)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	// The same size twice still notifies twice
	for i := 0; i < 2; i++ {
		if err := conn.WriteJSON(viewportMessage{Type: "viewport", Width: 1024, Height: 768}); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 2; i++ {
		select {
		case got := <-sizes:
			if got != [2]int{1024, 768} {
				t.Errorf("unexpected viewport %v", got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("viewport callback not called")
		}
	}
	if w, h := hub.Size(); w != 1024 || h != 768 {
		t.Errorf("expected 1024x768, got %dx%d", w, h)
	}
}

func TestOversizedViewportCapsPopulation(t *testing.T) {
	hub := NewHub(800, 600, time.Second)
	resized := make(chan struct{}, 1)
	hub.OnViewport = func(w, h int) { resized <- struct{}{} }

	opts := game.DefaultOptions()
	opts.Seed = 3
	anim, err := game.New(hub, hub, frame.NewQueue(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := anim.Initialize(); err != nil {
		t.Fatal(err)
	}
	defer anim.Teardown()

	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	if err := conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"viewport","width":4000000000,"height":4000000000}`)); err != nil {
		t.Fatal(err)
	}
	select {
	case <-resized:
	case <-time.After(2 * time.Second):
		t.Fatal("viewport callback not called")
	}

	// Resizes run on the animation's goroutine, here the test's
	if err := anim.Resize(); err != nil {
		t.Fatal(err)
	}
	if anim.ParticleCount() != 100 {
		t.Errorf("expected capped population of 100, got %d", anim.ParticleCount())
	}

	conn.WriteJSON(viewportMessage{Type: "viewport", Width: 1000, Height: 500})
	select {
	case <-resized:
	case <-time.After(2 * time.Second):
		t.Fatal("viewport callback not called")
	}
	if err := anim.Resize(); err != nil {
		t.Fatal(err)
	}
	if anim.ParticleCount() != 50 || len(anim.Particles()) != 50 {
		t.Errorf("expected 50 particles after shrinking, got %d", anim.ParticleCount())
	}
}

func TestPresentBroadcastsFrame(t *testing.T) {
	hub := NewHub(800, 600, time.Second)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	waitFor(t, "two clients", func() bool { return hub.Clients() == 2 })

	hub.SetSize(320, 200)
	hub.Clear()
	hub.FillCircle(10, 20, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 102})
	hub.FillCircle(30, 40, 1.5, color.NRGBA{R: 255, G: 255, B: 255, A: 153})
	hub.Present()

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		var f Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			t.Fatal(err)
		}
		if f.Seq != 1 || f.Width != 320 || f.Height != 200 || len(f.Circles) != 2 {
			t.Fatalf("unexpected frame %+v", f)
		}
		if f.Circles[0] != (Circle{X: 10, Y: 20, R: 2, Fill: "rgba(255,255,255,0.400)"}) {
			t.Errorf("unexpected circle %+v", f.Circles[0])
		}
	}

	// Next frame starts empty
	hub.Clear()
	hub.Present()
	a.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	if err := a.ReadJSON(&f); err != nil {
		t.Fatal(err)
	}
	if f.Seq != 2 || len(f.Circles) != 0 {
		t.Errorf("expected empty second frame, got %+v", f)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := NewHub(800, 600, time.Second)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	waitFor(t, "client", func() bool { return hub.Clients() == 1 })

	conn.Close()
	waitFor(t, "unregister", func() bool { return hub.Clients() == 0 })

	// Presenting with no clients is harmless
	hub.Clear()
	hub.Present()
}

func TestCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(800, 600, time.Second)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	waitFor(t, "client", func() bool { return hub.Clients() == 1 })

	hub.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal close, got %v", err)
	}
}
