package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleTranscript = `{"type":"user","message":{"role":"user","content":"please fix the failing test"}}
{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Looking at the test now."},{"type":"tool_use","name":"Bash"}]}}
{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","name":"Bash"},{"type":"tool_use","name":"Edit"}]}}
{"type":"user","message":{"role":"user","content":"no, don't add comments unless asked"}}
{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Understood, removing them."}]}}
not json at all
{"type":"system","message":{"role":"system","content":"<system-reminder>noise</system-reminder>"}}
{"type":"user","message":{"role":"user","content":"{\"looks\":\"like json\"}"}}
`

func TestParseLines(t *testing.T) {
	entries, err := ParseLines(sampleTranscript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2 user text entries, 3 assistant entries (one tool-only); system noise
	// and JSON-shaped user content dropped.
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5: %+v", len(entries), entries)
	}

	if CountUserMessages(entries) != 2 {
		t.Errorf("CountUserMessages = %d, want 2", CountUserMessages(entries))
	}

	toolOnly := entries[2]
	if toolOnly.Text != "" || len(toolOnly.Tools) != 2 {
		t.Errorf("tool-only entry = %+v, want empty text with 2 tools", toolOnly)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	if err := os.WriteFile(path, []byte(sampleTranscript), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("got %d entries, want 5", len(entries))
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Error("expected error for missing transcript")
	}
}

func TestCondense(t *testing.T) {
	entries, err := ParseLines(sampleTranscript)
	if err != nil {
		t.Fatal(err)
	}

	condensed := Condense(entries)

	if !strings.Contains(condensed, "[USER] please fix the failing test") {
		t.Errorf("missing first user message:\n%s", condensed)
	}
	if !strings.Contains(condensed, "don't add comments unless asked") {
		t.Errorf("missing correction:\n%s", condensed)
	}
	if !strings.Contains(condensed, "[TOOLS] Bash x2, Edit x1") {
		t.Errorf("missing tool summary:\n%s", condensed)
	}
}

func TestCondenseTruncatesMidAssistant(t *testing.T) {
	long := strings.Repeat("x", 2000)
	entries := []ParsedEntry{
		{Type: "user", Text: "start"},
		{Type: "assistant", Text: long},
		{Type: "assistant", Text: long},
		{Type: "assistant", Text: long},
	}

	condensed := Condense(entries)
	sections := strings.Split(condensed, "[ASSISTANT] ")
	if len(sections) != 4 {
		t.Fatalf("got %d assistant sections, want 3", len(sections)-1)
	}

	// First and last get 1000 chars, the middle one 200.
	if n := len(strings.TrimSpace(sections[1])); n != firstLastAssistantMax+3 {
		t.Errorf("first assistant length = %d, want %d", n, firstLastAssistantMax+3)
	}
	if n := len(strings.TrimSpace(sections[2])); n != midAssistantMax+3 {
		t.Errorf("mid assistant length = %d, want %d", n, midAssistantMax+3)
	}
}

func TestCondenseEmpty(t *testing.T) {
	if got := Condense(nil); got != "" {
		t.Errorf("Condense(nil) = %q, want empty", got)
	}
}
