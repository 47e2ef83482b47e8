// Package api exposes the viewer pipeline over HTTP.
//
// Three endpoints, all taking DOT text as the request body:
//
//	POST /layout  -> laid-out SVG markup
//	POST /graph   -> parsed GraphData as JSON
//	POST /export  -> PNG rendered at export scale
//
// The /export endpoint accepts ?fancy=1 to rasterize the settled
// force-directed geometry instead of the native layout. Requests are tagged
// with a job id carried through the structured logs.
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/graphscope/pkg/cache"
	"github.com/matzehuels/graphscope/pkg/engine"
	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/graphio"
)

// MaxBodySize bounds the accepted DOT text size.
const MaxBodySize = 1 << 20 // 1 MiB

// Options configures a server.
type Options struct {
	// LayoutEngine is the layout algorithm name. Empty means "dot".
	LayoutEngine string

	// Cache is shared across requests. Nil disables caching.
	Cache cache.Cache

	Logger *log.Logger
}

// Server handles viewer API requests.
type Server struct {
	opts Options
}

// NewServer creates an API server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{opts: opts}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.jobID)

	r.Post("/layout", s.handleLayout)
	r.Post("/graph", s.handleGraph)
	r.Post("/export", s.handleExport)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// jobID tags every request with a uuid and logs its outcome timing.
func (s *Server) jobID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Job-ID", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.opts.Logger.Info("request",
			"job", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

// newEngine builds a per-request engine. Engines are single-goroutine, so
// each request gets its own; only the cache is shared.
func (s *Server) newEngine(fancy bool) *engine.Engine {
	return engine.New(engine.Options{
		LayoutEngine: s.opts.LayoutEngine,
		Fancy:        fancy,
		Cache:        s.opts.Cache,
		Logger:       s.opts.Logger,
	})
}

// readDOT reads and validates the request body.
func readDOT(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize))
	if err != nil {
		http.Error(w, "read request body: "+err.Error(), http.StatusBadRequest)
		return "", false
	}
	if len(body) == 0 {
		http.Error(w, "request body is empty, provide DOT text", http.StatusBadRequest)
		return "", false
	}
	return string(body), true
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	dot, ok := readDOT(w, r)
	if !ok {
		return
	}

	e := s.newEngine(false)
	defer e.Close()
	if err := e.LoadDescription(r.Context(), dot); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(e.SVG())
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	dot, ok := readDOT(w, r)
	if !ok {
		return
	}

	e := s.newEngine(false)
	defer e.Close()
	if err := e.LoadDescription(r.Context(), dot); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := graphio.WriteJSON(e.Graph(), w); err != nil {
		s.opts.Logger.Error("write graph response", "error", err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	dot, ok := readDOT(w, r)
	if !ok {
		return
	}
	fancy := r.URL.Query().Get("fancy") == "1"

	e := s.newEngine(fancy)
	defer e.Close()
	if err := e.LoadDescription(r.Context(), dot); err != nil {
		writeError(w, err)
		return
	}
	if fs := e.FancyScene(); fs != nil {
		fs.Settle()
	}

	png, err := e.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// writeError maps structured error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeLayoutFailed, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidMarkup:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}
	http.Error(w, errors.UserMessage(err), status)
}
