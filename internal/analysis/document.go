package analysis

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/lazypower/curator/internal/docs"
	"github.com/lazypower/curator/internal/llm"
	"github.com/lazypower/curator/internal/textedit"
	"github.com/lazypower/curator/internal/tokens"
)

// DocumentAnalyzer produces a structured critique of the primary document.
// The LLM's remediation spans are advisory: anything outside the document's
// current bounds is dropped here rather than trusted downstream.
type DocumentAnalyzer struct {
	LLM  llm.Client
	Docs *docs.Store
}

// NewDocumentAnalyzer creates a document analyzer.
func NewDocumentAnalyzer(client llm.Client, store *docs.Store) *DocumentAnalyzer {
	return &DocumentAnalyzer{LLM: client, Docs: store}
}

// Analyze reads the project's primary document and asks the LLM for a
// critique. Local facts (line count, token estimate) are computed here, not
// taken from the model.
func (a *DocumentAnalyzer) Analyze(ctx context.Context, projectPath string) (*DocAnalysis, error) {
	if a.LLM == nil {
		return nil, fmt.Errorf("document analysis: %w", llm.ErrUnavailable)
	}

	doc, err := a.Docs.ReadPrimary(projectPath)
	if err != nil {
		return nil, fmt.Errorf("read primary document: %w", err)
	}
	if !doc.Exists {
		return nil, fmt.Errorf("primary document %s: %w", doc.Path, fs.ErrNotExist)
	}

	resp, err := a.LLM.Complete(ctx, llm.DocumentAnalysisPrompt(numberLines(doc.Content)))
	if err != nil {
		return nil, fmt.Errorf("document analysis llm: %w", err)
	}

	parsed, err := parseDocAnalysis(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse document analysis: %w", err)
	}

	totalLines := textedit.LineCount(doc.Content)

	result := &DocAnalysis{
		TotalLines:      totalLines,
		EstimatedTokens: tokens.Estimate(doc.Content),
		QualityScore:    clampScore(parsed.QualityScore),
		Sections:        parsed.Sections,
		Suggestions:     parsed.Suggestions,
		LinesToRemove:   validRemovals(parsed.LinesToRemove, totalLines),
		LinesToMove:     validMoves(parsed.LinesToMove, totalLines),
		AnalyzedAt:      time.Now(),
	}

	return result, nil
}

// numberLines prefixes each line with its 1-based number so the model's
// remediation spans address the same coordinates we validate against.
func numberLines(content string) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%4d  %s\n", i+1, line)
	}
	return b.String()
}

// validRemovals keeps in-bounds line numbers, deduplicated and sorted.
func validRemovals(lines []int, totalLines int) []int {
	seen := make(map[int]bool, len(lines))
	var valid []int
	for _, n := range lines {
		if n < 1 || n > totalLines {
			log.Printf("analysis: dropping out-of-bounds removal line %d (document has %d lines)", n, totalLines)
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		valid = append(valid, n)
	}
	sort.Ints(valid)
	return valid
}

// validMoves keeps well-formed in-bounds move suggestions with a target.
func validMoves(moves []MoveSuggestion, totalLines int) []MoveSuggestion {
	var valid []MoveSuggestion
	for _, m := range moves {
		if m.StartLine < 1 || m.EndLine < m.StartLine || m.EndLine > totalLines {
			log.Printf("analysis: dropping out-of-bounds move %d-%d (document has %d lines)", m.StartLine, m.EndLine, totalLines)
			continue
		}
		if m.TargetFile == "" {
			log.Printf("analysis: dropping move %d-%d with no target file", m.StartLine, m.EndLine)
			continue
		}
		valid = append(valid, m)
	}
	return valid
}
