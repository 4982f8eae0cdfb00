package transcript

import (
	"fmt"
	"sort"
	"strings"
)

const (
	firstLastAssistantMax = 1000
	midAssistantMax       = 200
)

// Condense reduces transcript entries to the content the retrospective
// analyzer needs:
// - ALL user messages (corrections and repeated explanations live here)
// - First + last assistant message: up to 1000 chars
// - Mid assistant messages: up to 200 chars + "..."
// - A tool-usage frequency line, since heavy repetition of one tool is a
//   signal that a skill file is missing
func Condense(entries []ParsedEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var userMsgs []ParsedEntry
	var assistantMsgs []ParsedEntry
	toolCounts := map[string]int{}

	for _, e := range entries {
		switch e.Type {
		case "user":
			if e.Text != "" {
				userMsgs = append(userMsgs, e)
			}
		case "assistant":
			if e.Text != "" {
				assistantMsgs = append(assistantMsgs, e)
			}
		}
		for _, name := range e.Tools {
			toolCounts[name]++
		}
	}

	var b strings.Builder

	for _, u := range userMsgs {
		b.WriteString("[USER] ")
		b.WriteString(u.Text)
		b.WriteString("\n\n")
	}

	for i, a := range assistantMsgs {
		limit := midAssistantMax
		if i == 0 || i == len(assistantMsgs)-1 {
			limit = firstLastAssistantMax
		}

		b.WriteString("[ASSISTANT] ")
		if len(a.Text) > limit {
			b.WriteString(a.Text[:limit])
			b.WriteString("...")
		} else {
			b.WriteString(a.Text)
		}
		b.WriteString("\n\n")
	}

	if line := toolSummary(toolCounts); line != "" {
		b.WriteString("[TOOLS] ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

// toolSummary renders tool usage as "Bash x12, Edit x5", most used first.
func toolSummary(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s x%d", name, counts[name]))
	}
	return strings.Join(parts, ", ")
}
