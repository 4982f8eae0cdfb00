package hooks

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// handleStart fetches the project's memory health and injects a compact
// summary as session context. Any failure degrades to empty context — a hook
// must never block a session from starting.
func handleStart(client *Client, input *HookInput) {
	if input.CWD == "" {
		WriteSessionStartOutput("")
		return
	}

	params := url.Values{}
	params.Set("path", input.CWD)

	data, err := client.Get("/api/memory/health?" + params.Encode())
	if err != nil {
		WriteSessionStartOutput("")
		return
	}

	var health struct {
		SourceCount     int     `json:"source_count"`
		PrimaryDocLines int     `json:"primary_doc_lines"`
		PrimaryDocScore int     `json:"primary_doc_score"`
		EstimatedTokens int     `json:"estimated_tokens"`
		BudgetPercent   float64 `json:"budget_percent"`
		ActiveLearnings int     `json:"active_learnings"`
		Rating          string  `json:"rating"`
	}
	if err := json.Unmarshal(data, &health); err != nil {
		WriteSessionStartOutput("")
		return
	}

	WriteSessionStartOutput(formatHealthContext(
		health.SourceCount,
		health.PrimaryDocLines,
		health.EstimatedTokens,
		health.BudgetPercent,
		health.ActiveLearnings,
		health.PrimaryDocScore,
		health.Rating,
	))
}

// formatHealthContext renders the memory health block injected at session
// start.
func formatHealthContext(sources, primaryLines, tokens int, budget float64, activeLearnings, score int, rating string) string {
	var b strings.Builder
	b.WriteString("<curator>\n## Memory Health\n")
	fmt.Fprintf(&b, "Sources: %d (CLAUDE.md %d lines, ~%d tokens, %.2f%% of context)\n",
		sources, primaryLines, tokens, budget)
	fmt.Fprintf(&b, "Quality: %d/100 (%s)\n", score, rating)
	if activeLearnings > 0 {
		fmt.Fprintf(&b, "Active learnings awaiting review: %d\n", activeLearnings)
	}
	if rating == "needs-attention" || rating == "poor" {
		b.WriteString("CLAUDE.md needs curation — run `curator analyze` to see suggestions.\n")
	}
	b.WriteString("</curator>")
	return b.String()
}
