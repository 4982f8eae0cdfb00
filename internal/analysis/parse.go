package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSONObject pulls a JSON object out of an LLM response that might be
// wrapped in markdown code fences or surrounding prose.
func extractJSONObject(content string) (string, error) {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		// Remove first and last lines (```json and ```)
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < 0 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}

	return content[start : end+1], nil
}

// docAnalysisResponse is the JSON shape the document-analysis prompt requests.
type docAnalysisResponse struct {
	QualityScore  int              `json:"quality_score"`
	Sections      []string         `json:"sections"`
	Suggestions   []string         `json:"suggestions"`
	LinesToRemove []int            `json:"lines_to_remove"`
	LinesToMove   []MoveSuggestion `json:"lines_to_move"`
}

func parseDocAnalysis(content string) (*docAnalysisResponse, error) {
	jsonStr, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var resp docAnalysisResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal document analysis: %w", err)
	}
	return &resp, nil
}

// sessionAnalysisResponse is the JSON shape the session-analysis prompt requests.
type sessionAnalysisResponse struct {
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

func parseSessionAnalysis(content string) (*sessionAnalysisResponse, error) {
	jsonStr, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var resp sessionAnalysisResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal session analysis: %w", err)
	}
	return &resp, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clampPriority(p int) int {
	if p < 1 {
		return 1
	}
	if p > 5 {
		return 5
	}
	return p
}
