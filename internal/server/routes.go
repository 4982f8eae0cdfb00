package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/curator/internal/analysis"
	"github.com/lazypower/curator/internal/store"
)

// projectPath pulls the required ?path= query parameter. Writes the error
// response itself when missing.
func projectPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path parameter required"})
		return "", false
	}
	return path, true
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	path, ok := projectPath(w, r)
	if !ok {
		return
	}

	sources, err := s.engine.ScanCatalog(path)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"path":    path,
		"count":   len(sources),
		"sources": sources,
	})
}

func (s *Server) handleMemoryHealth(w http.ResponseWriter, r *http.Request) {
	path, ok := projectPath(w, r)
	if !ok {
		return
	}

	health, err := s.engine.LoadHealth(path)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path required"})
		return
	}

	result, err := s.engine.RunDocumentAnalysis(r.Context(), req.Path)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCurationRemove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path  string `json:"path"`
		Lines []int  `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path required"})
		return
	}
	if len(req.Lines) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lines required"})
		return
	}

	result, err := s.engine.ApplyRemoval(r.Context(), req.Path, req.Lines)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCurationMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path       string `json:"path"`
		StartLine  int    `json:"start_line"`
		EndLine    int    `json:"end_line"`
		TargetFile string `json:"target_file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Path == "" || req.TargetFile == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path and target_file required"})
		return
	}

	result, err := s.engine.ApplyMove(r.Context(), req.Path, req.StartLine, req.EndLine, req.TargetFile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListLearnings(w http.ResponseWriter, r *http.Request) {
	path, ok := projectPath(w, r)
	if !ok {
		return
	}

	learnings, err := s.engine.LoadLearnings(path)
	if err != nil {
		writeError(w, err)
		return
	}
	if learnings == nil {
		learnings = []store.Learning{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"path":      path,
		"count":     len(learnings),
		"learnings": learnings,
	})
}

func (s *Server) handleLearningStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "learningID")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status required"})
		return
	}

	learning, err := s.engine.UpdateLearningStatus(id, req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, learning)
}

func (s *Server) handleLearningPromote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "learningID")

	var req struct {
		Path       string `json:"path"`
		TargetFile string `json:"target_file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Path == "" || req.TargetFile == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path and target_file required"})
		return
	}

	learning, err := s.engine.PromoteLearning(req.Path, id, req.TargetFile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, learning)
}

func (s *Server) handleAnalyzeSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path           string `json:"path"`
		TranscriptPath string `json:"transcript_path"`
		ProjectName    string `json:"project_name"`
		Language       string `json:"language"`
		Framework      string `json:"framework"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.TranscriptPath == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "transcript_path required"})
		return
	}

	result, fromCache, err := s.engine.GetSessionAnalysis(r.Context(), analysis.SessionRequest{
		ProjectPath:    req.Path,
		TranscriptPath: req.TranscriptPath,
		ProjectName:    req.ProjectName,
		Language:       req.Language,
		Framework:      req.Framework,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"from_cache": fromCache,
		"analysis":   result,
	})
}

func (s *Server) handleCanAnalyzeSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"can_analyze": s.engine.CanRunSessionAnalysis(),
	})
}
