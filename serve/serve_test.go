package serve

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/jondot/ansimake"
)

func writeTestPNG(t *testing.T, c color.RGBA) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "src.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return path
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := ansimake.DefaultConfig()
	cfg.Width = 4
	cfg.Height = 2

	s, err := New(writeTestPNG(t, color.RGBA{200, 40, 40, 255}), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestArtEndpoint(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/art?width=2&height=1&blocks=true")
	if err != nil {
		t.Fatalf("GET /api/art: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	art := string(body)
	if !strings.Contains(art, "\x1b[38;2;200;40;40m") {
		t.Errorf("art missing expected color escape: %q", art)
	}
	if strings.Count(art, "\n") != 1 {
		t.Errorf("requested 1 row, got %d", strings.Count(art, "\n"))
	}
}

func TestArtEndpointUsesBaseConfig(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/art")
	if err != nil {
		t.Fatalf("GET /api/art: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if rows := strings.Count(string(body), "\n"); rows != 2 {
		t.Errorf("base config requests 2 rows, got %d", rows)
	}
}

func TestSourceEndpointRejectsBadPath(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/source", "text/plain",
		strings.NewReader("/does/not/exist.png"))
	if err != nil {
		t.Fatalf("POST /api/source: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSourceEndpointSwapsImage(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	blue := writeTestPNG(t, color.RGBA{0, 0, 250, 255})
	resp, err := http.Post(ts.URL+"/api/source", "text/plain", strings.NewReader(blue))
	if err != nil {
		t.Fatalf("POST /api/source: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	art, err := http.Get(ts.URL + "/api/art?width=2&height=1")
	if err != nil {
		t.Fatalf("GET /api/art: %v", err)
	}
	defer art.Body.Close()

	body, _ := io.ReadAll(art.Body)
	if !strings.Contains(string(body), "0;0;250") {
		t.Errorf("art still renders the old image: %q", string(body))
	}
}

func TestWebsocketClientRoundTrip(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/client"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer ws.Close()

	if err := ws.WriteJSON(RenderRequest{Width: 2, Height: 1, Blocks: true}); err != nil {
		t.Fatalf("write request: %v", err)
	}

	_, frame, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !strings.Contains(string(frame), "\x1b[38;2;") {
		t.Errorf("frame missing color escapes: %q", string(frame))
	}
}
