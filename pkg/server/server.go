// Package server exposes the drawing store and the converter over HTTP.
package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/chazu/sewcustom/pkg/store"
	"github.com/chazu/sewcustom/pkg/viewer"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MaxBodyBytes limits request bodies.
const MaxBodyBytes = 16 << 20

const shutdownTimeout = 5 * time.Second

// Server routes the drawing pages and API onto the viewer backend.
type Server struct {
	app    *viewer.App
	store  *store.Store
	logger *zap.SugaredLogger
	router *httprouter.Router
}

// New creates a server backed by app.
func New(app *viewer.App, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		app:    app,
		store:  app.Store(),
		logger: logger,
		router: httprouter.New(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	pages := NewMiddlewareChain(WithRequestID, WithCORS)
	mc := pages.Extend(WithLogging(s.logger))

	for _, path := range []string{"/", "/sew.html"} {
		s.router.GET(path, pages.Then(s.page("sew.html")))
	}
	for _, name := range []string{"draw.html", "upload.html", "paste.html"} {
		s.router.GET("/"+name, pages.Then(s.page(name)))
	}
	s.router.GET("/test", mc.Then(s.handleTest))

	s.router.POST("/save_drawing", mc.Then(s.handleSave))
	s.router.GET("/list_drawings", mc.Then(s.handleList))
	s.router.POST("/upload_drawing", mc.Then(s.handleUpload))

	s.router.GET("/drawings/:name", mc.Then(s.handleDrawing))
	s.router.GET("/drawings/:name/preview.svg", mc.Then(s.handlePreview))
	s.router.GET("/drawings/:name/export/:format", mc.Then(s.handleExport))

	s.router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w.Header())
		w.WriteHeader(http.StatusNoContent)
	})
	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w.Header())
		writeError(w, http.StatusNotFound, errors.Errorf("no route for %s", r.URL.Path))
	})
}

// Handler returns the router with every route registered.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr joins host and port.
func Addr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "failed to serve on %s", addr)
	case <-ctx.Done():
	}

	s.logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down server")
	}
	return nil
}
