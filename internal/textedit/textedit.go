// Package textedit provides pure line-addressed splicing over document bodies.
// All line numbers are 1-based and inclusive.
package textedit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRange is returned when an extraction range does not fit the
// document. Ranges are never clamped — a clamped edit would silently diverge
// from the line numbers the caller computed against.
var ErrInvalidRange = errors.New("line range out of bounds")

// splitBody splits a document body into lines, remembering whether the body
// carried a trailing newline so joins can reproduce it.
func splitBody(body string) (lines []string, trailingNewline bool) {
	if strings.HasSuffix(body, "\n") {
		return strings.Split(strings.TrimSuffix(body, "\n"), "\n"), true
	}
	return strings.Split(body, "\n"), false
}

func joinBody(lines []string, trailingNewline bool) string {
	if len(lines) == 0 {
		return ""
	}
	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	}
	return out
}

// LineCount returns the number of lines in a document body.
func LineCount(body string) int {
	lines, _ := splitBody(body)
	return len(lines)
}

// RemoveLines drops every line whose 1-based index appears in lineNumbers,
// preserving the relative order of the rest. Numbers outside the document are
// ignored — removing nothing extra is the correct response to a stale
// suggestion, not an error.
func RemoveLines(body string, lineNumbers []int) string {
	if len(lineNumbers) == 0 {
		return body
	}

	drop := make(map[int]bool, len(lineNumbers))
	for _, n := range lineNumbers {
		drop[n] = true
	}

	src, nl := splitBody(body)
	kept := make([]string, 0, len(src))
	for i, line := range src {
		if drop[i+1] {
			continue
		}
		kept = append(kept, line)
	}

	return joinBody(kept, nl)
}

// ExtractRange removes lines start..end (inclusive) from the body and returns
// the remainder plus the extracted text. The extracted text always carries a
// trailing newline. Requires 1 <= start <= end <= line count; anything else
// is a caller error signaled as ErrInvalidRange.
func ExtractRange(body string, start, end int) (remainder, extracted string, err error) {
	src, nl := splitBody(body)

	if start < 1 || end < start || end > len(src) {
		return "", "", fmt.Errorf("extract lines %d-%d of %d-line document: %w",
			start, end, len(src), ErrInvalidRange)
	}

	extracted = strings.Join(src[start-1:end], "\n") + "\n"

	kept := make([]string, 0, len(src)-(end-start+1))
	kept = append(kept, src[:start-1]...)
	kept = append(kept, src[end:]...)

	return joinBody(kept, nl), extracted, nil
}
