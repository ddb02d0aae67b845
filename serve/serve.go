// Package serve exposes the conversion pipeline over HTTP so remote
// terminals can fetch rendered frames without a local copy of the image.
package serve

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"

	"github.com/jondot/ansimake"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 5 * time.Second,
}

// RenderRequest is one websocket render command. Zero-value fields fall
// back to the server's base config.
type RenderRequest struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Blocks    bool    `json:"blocks"`
	Shade     bool    `json:"shade"`
	Tolerance float64 `json:"tolerance"`
	BW        bool    `json:"bw"`
}

// Server renders a single source image on demand. The image can be
// swapped at runtime; renders in flight keep the image they started with.
type Server struct {
	base ansimake.Config

	mu   sync.RWMutex
	img  *ansimake.Image
	path string

	echo *echo.Echo
}

// New loads the image at path and builds a server around it.
func New(path string, base ansimake.Config) (*Server, error) {
	img, err := ansimake.Load(path)
	if err != nil {
		return nil, err
	}

	s := &Server{
		base: base,
		img:  img,
		path: path,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())

	api := e.Group("/api")
	api.GET("/art", s.handleArt)
	api.GET("/client", s.handleClient)
	api.POST("/source", s.handleSource)

	s.echo = e
	return s, nil
}

// Start listens on addr and serves until the listener fails.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) image() *ansimake.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img
}

func (s *Server) render(req RenderRequest) (string, error) {
	cfg := s.base
	if req.Width > 0 {
		cfg.Width = req.Width
	}
	if req.Height > 0 {
		cfg.Height = req.Height
	}
	if req.Blocks {
		cfg.UseBlocks = true
	}
	if req.Shade {
		cfg.Shade = true
	}
	if req.Tolerance > 0 {
		cfg.ColorTolerance = req.Tolerance
	}
	if req.BW {
		cfg.BW = true
	}

	return s.image().Convert(cfg)
}

// handleArt renders with per-request query parameters layered over the
// base config and returns the escape stream as plain text.
func (s *Server) handleArt(c echo.Context) error {
	var req RenderRequest
	req.Width = intParam(c, "width")
	req.Height = intParam(c, "height")
	req.Blocks = boolParam(c, "blocks")
	req.Shade = boolParam(c, "shade")
	req.BW = boolParam(c, "bw")
	if v, err := strconv.ParseFloat(c.QueryParam("tolerance"), 64); err == nil {
		req.Tolerance = v
	}

	art, err := s.render(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.String(http.StatusOK, art)
}

// handleClient upgrades to a websocket and answers each JSON render
// request with a rendered frame, until the client goes away.
func (s *Server) handleClient(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return nil
		}

		var req RenderRequest
		if err := json.Unmarshal(data, &req); err != nil {
			log.Println("ansimake serve: bad render request:", err)
			continue
		}

		art, err := s.render(req)
		if err != nil {
			ws.WriteMessage(websocket.TextMessage, []byte("error: "+err.Error()))
			continue
		}

		if err := ws.WriteMessage(websocket.TextMessage, []byte(art)); err != nil {
			return nil
		}
	}
}

// handleSource replaces the served image. The request body is a path on
// the server's filesystem; the control API is meant for trusted operators.
func (s *Server) handleSource(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	path := strings.TrimSpace(string(body))
	if path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing image path")
	}

	img, err := ansimake.Load(path)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	s.img = img
	s.path = path
	s.mu.Unlock()

	log.Println("ansimake serve: source switched to", path)
	return c.NoContent(http.StatusNoContent)
}

func intParam(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return v
}

func boolParam(c echo.Context, name string) bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	if err != nil {
		return false
	}
	return v
}
