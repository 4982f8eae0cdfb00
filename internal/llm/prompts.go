package llm

import "fmt"

// DocumentAnalysisPrompt generates the prompt for primary-document critique.
// The response is a single JSON object with a quality score, detected
// sections, free-text suggestions, and line-addressed remediation spans.
func DocumentAnalysisPrompt(numberedContent string) string {
	return fmt.Sprintf(`You are a memory-document curation system. Analyze this CLAUDE.md file for bloat, staleness, and misplaced content. Line numbers are shown as a prefix on each line.

DOCUMENT:
%s

Assess:
- Is content concise and high-signal, or padded and repetitive?
- Are there stale entries (references to finished work, outdated tooling)?
- Is there content that belongs in a narrower artifact (a rule file or skill file) instead of the primary document?

Rules:
- quality_score is 0-100: 80+ lean and current, 60-79 minor bloat, 40-59 needs curation, below 40 seriously bloated
- lines_to_remove lists 1-based line numbers judged redundant or stale
- lines_to_move lists inclusive 1-based ranges that belong in a different artifact; target_file is relative to the project root (e.g. ".claude/rules/testing.md")
- Never suggest overlapping ranges
- Return ONLY a JSON object, no other text

Return a JSON object:
{
  "quality_score": 72,
  "sections": ["Project Overview", "Build Commands"],
  "suggestions": ["free-text advice"],
  "lines_to_remove": [12, 13],
  "lines_to_move": [{"start_line": 40, "end_line": 55, "target_file": ".claude/rules/style.md"}]
}`, numberedContent)
}

// SessionAnalysisPrompt generates the prompt for session-transcript analysis:
// a summary plus prioritized recommendations for improving the project memory.
func SessionAnalysisPrompt(condensed, projectName, language, framework string) string {
	meta := ""
	if projectName != "" {
		meta += fmt.Sprintf("Project: %s\n", projectName)
	}
	if language != "" {
		meta += fmt.Sprintf("Language: %s\n", language)
	}
	if framework != "" {
		meta += fmt.Sprintf("Framework: %s\n", framework)
	}

	return fmt.Sprintf(`You are a session retrospective system. Review this coding session transcript and recommend improvements to the project's memory artifacts (CLAUDE.md, rule files, skill files).

%sTRANSCRIPT:
%s

Look for:
- Corrections the user gave that should become durable rules
- Repeated explanations that belong in CLAUDE.md
- Workflows worth capturing as a skill file
- Friction the assistant hit that better memory would have prevented

Rules:
- type is one of: add-rule, update-claude-md, add-skill, remove-content, other
- priority is 1 (low) to 5 (critical)
- At most 5 recommendations; fewer is better
- Return ONLY a JSON object, no other text

Return a JSON object:
{
  "summary": "two or three sentences on what the session accomplished",
  "recommendations": [{
    "type": "add-rule",
    "title": "short imperative title",
    "rationale": "why this matters",
    "detail": "the concrete content or change to apply",
    "priority": 3
  }]
}`, meta, condensed)
}
