// Package board serves a read-only view of a table for a second screen.
// Browsers connect over a websocket and receive the public board whenever
// the round changes. Roles stay hidden until the round ends.
package board

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/spyround/internal/models"
	"github.com/KirkDiggler/spyround/internal/views"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	timeout  = 10 * time.Second
	qrSize   = 320
	sendSize = 8
)

//go:embed static/index.html
var indexHTML []byte

//go:embed static/app.js
var appJS []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Config holds configuration for the board server
type Config struct {
	Bind string
	Port int

	// Prefix is prepended to every route, for use behind a reverse proxy
	Prefix string

	// PublicURL is encoded in the QR code; derived from the request if empty
	PublicURL string

	Verbose bool
}

// Server pushes the public board to connected browsers
type Server struct {
	addr      string
	prefix    string
	publicURL string
	verbose   bool
	router    *httprouter.Router
	hub       *hub
}

// New creates a board server
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, errors.New("invalid port (must be between 0-65535 inclusive): " + strconv.Itoa(cfg.Port))
	}

	s := &Server{
		addr:      net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port)),
		prefix:    strings.TrimSuffix(cfg.Prefix, "/"),
		publicURL: cfg.PublicURL,
		verbose:   cfg.Verbose,
		router:    httprouter.New(),
		hub:       newHub(),
	}

	s.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		log.Printf("[board] panic serving %s: %v", r.URL.Path, i)
		http.Error(w, "An error has occurred. Please try again.", http.StatusInternalServerError)
	}

	s.router.GET(s.prefix+"/", s.serveIndex)
	s.router.GET(s.prefix+"/app.js", s.serveScript)
	s.router.GET(s.prefix+"/board", s.serveBoard)
	s.router.GET(s.prefix+"/ws", s.serveWS)
	s.router.GET(s.prefix+"/qr", s.serveQR)
	s.router.GET(s.prefix+"/healthz", s.serveHealthCheck)

	// Start with an empty table so the page has something to draw
	s.Publish(models.NewSnapshot("", nil))

	return s, nil
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Publish pushes a snapshot to every connected browser
func (s *Server) Publish(snapshot *models.Snapshot) {
	payload, err := json.Marshal(views.NewBoard(snapshot))
	if err != nil {
		log.Printf("[board] failed to encode board: %v", err)
		return
	}

	s.hub.broadcast(payload)
}

// Run serves until the context is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
	}

	errs := make(chan error, 1)
	go func() {
		log.Printf("[board] listening on http://%s%s/", s.addr, s.prefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.hub.closeAll()

	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logf(format string, args ...any) {
	if s.verbose {
		log.Printf("[board] "+format, args...)
	}
}

func securityHeaders(w http.ResponseWriter) {
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self' ws: wss:")
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	securityHeaders(w)

	_, _ = w.Write(indexHTML)
	s.logf("SERVE: board page to %s", r.RemoteAddr)
}

func (s *Server) serveScript(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	securityHeaders(w)

	_, _ = w.Write(appJS)
}

func (s *Server) serveBoard(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(w)

	_, _ = w.Write(s.hub.latest())
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[board] upgrade error: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendSize),
	}

	s.hub.register(c)
	s.logf("CONNECT: %s (%d watching)", r.RemoteAddr, s.hub.count())

	go c.writePump()
	c.readPump(s.hub)
}

// serveQR encodes the board URL so a phone can open it
func (s *Server) serveQR(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	png, err := qrcode.Encode(s.boardURL(r), qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Server) boardURL(r *http.Request) string {
	if s.publicURL != "" {
		return s.publicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host + s.prefix + "/"
}

func (s *Server) serveHealthCheck(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ok\n"))
}
