package analysis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lazypower/curator/internal/llm"
	"github.com/lazypower/curator/internal/transcript"
)

const maxRecommendations = 5

// SessionAnalyzer runs the expensive transcript retrospective. Callers should
// go through Cache rather than invoking this directly.
type SessionAnalyzer struct {
	LLM llm.Client
}

// NewSessionAnalyzer creates a session analyzer.
func NewSessionAnalyzer(client llm.Client) *SessionAnalyzer {
	return &SessionAnalyzer{LLM: client}
}

// Analyze parses and condenses the transcript, then asks the LLM for a
// summary and memory-improvement recommendations.
func (a *SessionAnalyzer) Analyze(ctx context.Context, req SessionRequest) (*SessionAnalysis, error) {
	if a.LLM == nil {
		return nil, fmt.Errorf("session analysis: %w", llm.ErrUnavailable)
	}
	if req.TranscriptPath == "" {
		return nil, fmt.Errorf("no transcript path provided")
	}

	entries, err := transcript.ParseFile(req.TranscriptPath)
	if err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}

	condensed := transcript.Condense(entries)
	if len(condensed) < 100 {
		return nil, fmt.Errorf("transcript too short to analyze (%d chars condensed)", len(condensed))
	}

	prompt := llm.SessionAnalysisPrompt(condensed, req.ProjectName, req.Language, req.Framework)
	resp, err := a.LLM.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("session analysis llm: %w", err)
	}

	parsed, err := parseSessionAnalysis(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse session analysis: %w", err)
	}

	recs := parsed.Recommendations
	if len(recs) > maxRecommendations {
		log.Printf("analysis: capping %d recommendations to %d", len(recs), maxRecommendations)
		recs = recs[:maxRecommendations]
	}
	for i := range recs {
		recs[i].Priority = clampPriority(recs[i].Priority)
		if recs[i].Type == "" {
			recs[i].Type = "other"
		}
	}

	return &SessionAnalysis{
		Summary:         parsed.Summary,
		Recommendations: recs,
		AnalyzedAt:      time.Now(),
	}, nil
}
