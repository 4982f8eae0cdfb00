package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lazypower/curator/internal/curate"
	"github.com/lazypower/curator/internal/engine"
	"github.com/lazypower/curator/internal/llm"
	"github.com/lazypower/curator/internal/textedit"
)

// Server is the curator HTTP API server.
type Server struct {
	engine  *engine.Engine
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server over the given engine and version string.
func New(e *engine.Engine, version string) *Server {
	s := &Server{
		engine:  e,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/catalog", s.handleCatalog)
		r.Get("/memory/health", s.handleMemoryHealth)

		r.Post("/analysis/document", s.handleAnalyzeDocument)
		r.Post("/analysis/session", s.handleAnalyzeSession)
		r.Get("/analysis/session/can", s.handleCanAnalyzeSession)

		r.Post("/curation/remove", s.handleCurationRemove)
		r.Post("/curation/move", s.handleCurationMove)

		r.Get("/learnings", s.handleListLearnings)
		r.Post("/learnings/{learningID}/status", s.handleLearningStatus)
		r.Post("/learnings/{learningID}/promote", s.handleLearningPromote)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.engine.DB.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.engine.DB.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps domain sentinels onto HTTP statuses. Anything unrecognized
// is a 500. A partial move write carries a marker so the caller knows the
// content exists in both files and a retry is the fix.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, textedit.ErrInvalidRange):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, curate.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, llm.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, llm.ErrUnavailable), errors.Is(err, llm.ErrUnreachable):
		status = http.StatusServiceUnavailable
	}

	body := map[string]any{"error": err.Error()}
	if errors.Is(err, curate.ErrPartialWrite) {
		body["partial"] = true
	}
	writeJSON(w, status, body)
}
