package hooks

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// captureStdout replaces os.Stdout with a pipe, runs fn, then returns what was written.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func testClient(ts *httptest.Server) *Client {
	return &Client{http: ts.Client(), serverURL: ts.URL}
}

func TestHandleStartWithServer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		case "/api/memory/health":
			if r.URL.Query().Get("path") != "/work/project" {
				t.Errorf("path param = %q", r.URL.Query().Get("path"))
			}
			json.NewEncoder(w).Encode(map[string]any{
				"source_count":      3,
				"primary_doc_lines": 120,
				"primary_doc_score": 45,
				"estimated_tokens":  900,
				"budget_percent":    0.45,
				"active_learnings":  2,
				"rating":            "needs-attention",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	input := &HookInput{
		SessionID:     "test-001",
		CWD:           "/work/project",
		HookEventName: "SessionStart",
	}

	output := captureStdout(t, func() {
		handleStart(testClient(ts), input)
	})

	var parsed SessionStartOutput
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if parsed.HookSpecificOutput.HookEventName != "SessionStart" {
		t.Errorf("hookEventName = %q", parsed.HookSpecificOutput.HookEventName)
	}

	ctx := parsed.HookSpecificOutput.AdditionalContext
	if !strings.Contains(ctx, "Memory Health") {
		t.Errorf("context missing health block: %s", ctx)
	}
	if !strings.Contains(ctx, "45/100 (needs-attention)") {
		t.Errorf("context missing score: %s", ctx)
	}
	if !strings.Contains(ctx, "curator analyze") {
		t.Errorf("low rating should nudge toward curation: %s", ctx)
	}
	if !strings.Contains(ctx, "Active learnings awaiting review: 2") {
		t.Errorf("context missing learnings line: %s", ctx)
	}
}

func TestHandleStartEmptyOnServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	output := captureStdout(t, func() {
		handleStart(testClient(ts), &HookInput{CWD: "/work/project"})
	})

	var parsed SessionStartOutput
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if parsed.HookSpecificOutput.AdditionalContext != "" {
		t.Errorf("expected empty context, got %q", parsed.HookSpecificOutput.AdditionalContext)
	}
}

func TestHandleStartNoCWD(t *testing.T) {
	output := captureStdout(t, func() {
		handleStart(NewClient(), &HookInput{})
	})

	var parsed SessionStartOutput
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if parsed.HookSpecificOutput.AdditionalContext != "" {
		t.Errorf("expected empty context without cwd")
	}
}

func TestHandleEndPostsTranscript(t *testing.T) {
	var received map[string]string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analysis/session" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(map[string]any{"from_cache": false})
	}))
	defer ts.Close()

	handleEnd(testClient(ts), &HookInput{
		SessionID:      "test-001",
		CWD:            "/work/project",
		TranscriptPath: "/work/project/.claude/session.jsonl",
	})

	if received["transcript_path"] != "/work/project/.claude/session.jsonl" {
		t.Errorf("transcript_path = %q", received["transcript_path"])
	}
	if received["path"] != "/work/project" {
		t.Errorf("path = %q", received["path"])
	}
	if received["project_name"] != "project" {
		t.Errorf("project_name = %q", received["project_name"])
	}
}

func TestHandleEndNoTranscript(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	handleEnd(testClient(ts), &HookInput{CWD: "/work/project"})
	if called {
		t.Error("end hook posted without a transcript path")
	}
}

func TestHookInputParsing(t *testing.T) {
	raw := `{
		"session_id": "abc123",
		"transcript_path": "/path/to/transcript.jsonl",
		"cwd": "/working/dir",
		"hook_event_name": "SessionEnd",
		"reason": "exit"
	}`

	var input HookInput
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if input.SessionID != "abc123" {
		t.Errorf("SessionID = %q, want abc123", input.SessionID)
	}
	if input.TranscriptPath != "/path/to/transcript.jsonl" {
		t.Errorf("TranscriptPath = %q", input.TranscriptPath)
	}
	if input.Reason != "exit" {
		t.Errorf("Reason = %q", input.Reason)
	}
}

func TestSessionStartOutputFormat(t *testing.T) {
	output := captureStdout(t, func() {
		WriteSessionStartOutput("test context")
	})

	var parsed map[string]any
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	hookOutput, ok := parsed["hookSpecificOutput"].(map[string]any)
	if !ok {
		t.Fatal("missing hookSpecificOutput")
	}
	if hookOutput["hookEventName"] != "SessionStart" {
		t.Errorf("hookEventName = %v", hookOutput["hookEventName"])
	}
	if hookOutput["additionalContext"] != "test context" {
		t.Errorf("additionalContext = %v", hookOutput["additionalContext"])
	}
}

func TestClientHealthyFalseWhenDown(t *testing.T) {
	t.Setenv("CURATOR_URL", "http://127.0.0.1:1")
	client := NewClient()
	if client.Healthy() {
		t.Error("expected Healthy() = false when server is not running")
	}
}

func TestFormatHealthContextHealthy(t *testing.T) {
	ctx := formatHealthContext(1, 80, 400, 0.2, 0, 92, "excellent")
	if strings.Contains(ctx, "curator analyze") {
		t.Error("healthy document should not nudge toward curation")
	}
	if strings.Contains(ctx, "Active learnings") {
		t.Error("zero learnings should not render the learnings line")
	}
}
