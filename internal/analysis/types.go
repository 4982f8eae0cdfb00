// Package analysis wraps the AI-backed critique operations: primary-document
// analysis with line-addressed remediation spans, and cooldown-gated session
// transcript analysis.
package analysis

import "time"

// MoveSuggestion identifies a 1-based inclusive line range that belongs in a
// different artifact. Line numbers refer to the document state at analysis
// time and go stale the moment the document is mutated.
type MoveSuggestion struct {
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	TargetFile string `json:"target_file"`
}

// DocAnalysis is the structured critique of the primary document.
type DocAnalysis struct {
	TotalLines      int              `json:"total_lines"`
	EstimatedTokens int              `json:"estimated_tokens"`
	QualityScore    int              `json:"quality_score"`
	Sections        []string         `json:"sections"`
	Suggestions     []string         `json:"suggestions"`
	LinesToRemove   []int            `json:"lines_to_remove"`
	LinesToMove     []MoveSuggestion `json:"lines_to_move"`
	AnalyzedAt      time.Time        `json:"analyzed_at"`
}

// Recommendation is one actionable item from a session retrospective.
type Recommendation struct {
	Type      string `json:"type"` // add-rule, update-claude-md, add-skill, remove-content, other
	Title     string `json:"title"`
	Rationale string `json:"rationale"`
	Detail    string `json:"detail"`
	Priority  int    `json:"priority"` // 1 (low) to 5 (critical)
}

// SessionAnalysis is the AI-derived session summary plus recommendations.
// Immutable once produced.
type SessionAnalysis struct {
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
	AnalyzedAt      time.Time        `json:"analyzed_at"`
}

// SessionRequest identifies the transcript to analyze and its project context.
type SessionRequest struct {
	ProjectPath    string `json:"project_path"`
	TranscriptPath string `json:"transcript_path"`
	ProjectName    string `json:"project_name"`
	Language       string `json:"language,omitempty"`
	Framework      string `json:"framework,omitempty"`
}
