// Package api exposes the journey map service over HTTP.
//
// The API is a thin shell over pkg/store, pkg/canvas, and pkg/layout:
// handlers fetch, build, and render, while caching keeps repeated structure
// reads and SVG renders cheap. All responses are JSON except the rendered
// canvas artifact.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/journeykit/journeymap/pkg/cache"
	apperrors "github.com/journeykit/journeymap/pkg/errors"
	"github.com/journeykit/journeymap/pkg/store"
)

// Server handles journey map HTTP requests.
type Server struct {
	store  store.Store
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
	router chi.Router
}

// Option customizes a Server.
type Option func(*Server)

// WithCache sets the cache backend. Defaults to NullCache.
func WithCache(c cache.Cache) Option {
	return func(s *Server) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Server backed by the given store.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:  st,
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/journeys", func(r chi.Router) {
		r.Get("/{id}", s.handleGetJourney)
		r.Get("/{id}/structure", s.handleGetStructure)
		r.Get("/{id}/canvas.svg", s.handleGetCanvasSVG)
		r.Post("/reorder", s.handleReorder)
	})
	r.Get("/healthz", s.handleHealth)

	s.router = r
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

// requestLogger logs one line per request with method, path, status, and
// duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// statusForError maps domain error codes to HTTP status codes.
func statusForError(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, store.ErrUnknownID) {
		return http.StatusBadRequest
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeJourneyNotFound, apperrors.ErrCodeParentNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidOrder, apperrors.ErrCodeInvalidGraph:
		return http.StatusBadRequest
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeNetwork:
		return http.StatusBadGateway
	case apperrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
