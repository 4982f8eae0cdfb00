package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lazypower/curator/internal/engine"
	"github.com/lazypower/curator/internal/llm"
	"github.com/lazypower/curator/internal/store"
)

const docAnalysisJSON = `{
	"quality_score": 64,
	"sections": ["Build"],
	"suggestions": ["split rules out"],
	"lines_to_remove": [2],
	"lines_to_move": [{"start_line": 1, "end_line": 2, "target_file": ".claude/rules/build.md"}]
}`

func testServer(t *testing.T, client llm.Client) (*Server, *engine.Engine) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	e := engine.New(db, client, time.Minute)
	return New(e, "test"), e
}

func writeProject(t *testing.T, claudeMD string) string {
	t.Helper()
	dir := t.TempDir()
	if claudeMD != "" {
		if err := os.WriteFile(filepath.Join(dir, "CLAUDE.md"), []byte(claudeMD), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := testServer(t, nil)

	w := doJSON(t, s, "GET", "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body map[string]any
	decode(t, w, &body)
	if body["status"] != "ok" || body["db"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	s, _ := testServer(t, nil)
	dir := writeProject(t, "# Project\n")
	os.MkdirAll(filepath.Join(dir, ".claude", "rules"), 0755)
	os.WriteFile(filepath.Join(dir, ".claude", "rules", "style.md"), []byte("tabs\n"), 0644)

	w := doJSON(t, s, "GET", "/api/catalog?path="+dir, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Count   int `json:"count"`
		Sources []struct {
			Kind string `json:"kind"`
		} `json:"sources"`
	}
	decode(t, w, &body)
	if body.Count != 2 {
		t.Errorf("count = %d, want 2", body.Count)
	}
	if body.Sources[0].Kind != "primary-document" {
		t.Errorf("first source kind = %q", body.Sources[0].Kind)
	}
}

func TestCatalogMissingPath(t *testing.T) {
	s, _ := testServer(t, nil)

	if w := doJSON(t, s, "GET", "/api/catalog", nil); w.Code != http.StatusBadRequest {
		t.Errorf("no path: status = %d, want 400", w.Code)
	}
	if w := doJSON(t, s, "GET", "/api/catalog?path=/does/not/exist", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing project: status = %d, want 404", w.Code)
	}
}

func TestMemoryHealthEndpoint(t *testing.T) {
	s, _ := testServer(t, nil)
	dir := writeProject(t, "# Project\n\nShort and tidy.\n")

	w := doJSON(t, s, "GET", "/api/memory/health?path="+dir, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Score  int    `json:"primary_doc_score"`
		Rating string `json:"rating"`
	}
	decode(t, w, &body)
	if body.Rating != "excellent" {
		t.Errorf("rating = %q, score = %d", body.Rating, body.Score)
	}
}

func TestAnalyzeDocumentEndpoint(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: docAnalysisJSON, Provider: "mock"}}
	s, _ := testServer(t, mock)
	dir := writeProject(t, "a\nb\nc\n")

	w := doJSON(t, s, "POST", "/api/analysis/document", map[string]string{"path": dir})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		QualityScore int `json:"quality_score"`
		TotalLines   int `json:"total_lines"`
	}
	decode(t, w, &body)
	if body.QualityScore != 64 || body.TotalLines != 3 {
		t.Errorf("body = %+v", body)
	}
}

func TestAnalyzeDocumentNoLLM(t *testing.T) {
	s, _ := testServer(t, nil)
	dir := writeProject(t, "a\n")

	w := doJSON(t, s, "POST", "/api/analysis/document", map[string]string{"path": dir})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestAnalyzeDocumentRateLimited(t *testing.T) {
	mock := &llm.MockClient{Err: fmt.Errorf("anthropic: %w", llm.ErrRateLimited)}
	s, _ := testServer(t, mock)
	dir := writeProject(t, "a\n")

	w := doJSON(t, s, "POST", "/api/analysis/document", map[string]string{"path": dir})
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestCurationRemoveEndpoint(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: docAnalysisJSON, Provider: "mock"}}
	s, _ := testServer(t, mock)
	dir := writeProject(t, "a\nb\nc\nd\ne\n")

	w := doJSON(t, s, "POST", "/api/curation/remove", map[string]any{
		"path":  dir,
		"lines": []int{2, 4},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		LinesRemoved int `json:"lines_removed"`
	}
	decode(t, w, &body)
	if body.LinesRemoved != 2 {
		t.Errorf("lines_removed = %d", body.LinesRemoved)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "CLAUDE.md"))
	if string(data) != "a\nc\ne\n" {
		t.Errorf("document = %q", data)
	}
}

func TestCurationMoveEndpoint(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: docAnalysisJSON, Provider: "mock"}}
	s, _ := testServer(t, mock)
	dir := writeProject(t, "a\nb\nc\nd\ne\n")

	w := doJSON(t, s, "POST", "/api/curation/move", map[string]any{
		"path":        dir,
		"start_line":  2,
		"end_line":    4,
		"target_file": ".claude/rules/test.md",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	moved, err := os.ReadFile(filepath.Join(dir, ".claude", "rules", "test.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(moved) != "b\nc\nd\n" {
		t.Errorf("target = %q", moved)
	}
}

func TestCurationMoveInvalidRange(t *testing.T) {
	s, _ := testServer(t, nil)
	dir := writeProject(t, "a\nb\nc\n")

	w := doJSON(t, s, "POST", "/api/curation/move", map[string]any{
		"path":        dir,
		"start_line":  2,
		"end_line":    9,
		"target_file": "rules.md",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
}

func TestLearningsEndpoints(t *testing.T) {
	s, e := testServer(t, nil)
	dir := writeProject(t, "# Project\n")

	l, err := e.DB.InsertLearning(dir, "prefers table-driven tests", "patterns")
	if err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, s, "GET", "/api/learnings?path="+dir, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Count int `json:"count"`
	}
	decode(t, w, &list)
	if list.Count != 1 {
		t.Errorf("count = %d", list.Count)
	}

	w = doJSON(t, s, "POST", "/api/learnings/"+l.ID+"/status", map[string]string{"status": "verified"})
	if w.Code != http.StatusOK {
		t.Fatalf("status update = %d: %s", w.Code, w.Body.String())
	}
	var updated store.Learning
	decode(t, w, &updated)
	if updated.Status != store.StatusVerified {
		t.Errorf("status = %q", updated.Status)
	}

	w = doJSON(t, s, "POST", "/api/learnings/"+l.ID+"/status", map[string]string{"status": "bogus"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid status code = %d, want 400", w.Code)
	}

	w = doJSON(t, s, "POST", "/api/learnings/"+l.ID+"/promote", map[string]string{
		"path":        dir,
		"target_file": ".claude/rules/patterns.md",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("promote = %d: %s", w.Code, w.Body.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, ".claude", "rules", "patterns.md"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("promoted content not appended")
	}
}

const sessionAnalysisJSON = `{
	"summary": "Worked on the parser.",
	"recommendations": [{"type": "add-rule", "title": "Capture the fence rule", "priority": 1}]
}`

func TestSessionAnalysisEndpoints(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: sessionAnalysisJSON, Provider: "mock"}}
	s, _ := testServer(t, mock)
	dir := writeProject(t, "")

	transcript := filepath.Join(dir, "session.jsonl")
	lines := `{"type":"user","message":{"role":"user","content":"refactor the markdown parser to handle fenced blocks and nested lists correctly please"}}
{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Split it into a tokenize pass and a tree pass; fences are now handled before list nesting."}]}}
`
	if err := os.WriteFile(transcript, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, s, "GET", "/api/analysis/session/can", nil)
	var can map[string]bool
	decode(t, w, &can)
	if !can["can_analyze"] {
		t.Error("can_analyze false before any run")
	}

	w = doJSON(t, s, "POST", "/api/analysis/session", map[string]string{
		"path":            dir,
		"transcript_path": transcript,
		"project_name":    "parser",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		FromCache bool `json:"from_cache"`
		Analysis  struct {
			Summary string `json:"summary"`
		} `json:"analysis"`
	}
	decode(t, w, &body)
	if body.FromCache || body.Analysis.Summary == "" {
		t.Errorf("body = %+v", body)
	}

	// Inside the cooldown the cached result comes back and the retry gate
	// reports closed.
	w = doJSON(t, s, "POST", "/api/analysis/session", map[string]string{
		"path":            dir,
		"transcript_path": transcript,
	})
	decode(t, w, &body)
	if !body.FromCache {
		t.Error("second call not served from cache")
	}

	w = doJSON(t, s, "GET", "/api/analysis/session/can", nil)
	decode(t, w, &can)
	if can["can_analyze"] {
		t.Error("can_analyze true inside cooldown")
	}
}

func TestSessionAnalysisMissingTranscript(t *testing.T) {
	s, _ := testServer(t, nil)

	w := doJSON(t, s, "POST", "/api/analysis/session", map[string]string{"path": "/p"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
