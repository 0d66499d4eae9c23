// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clean

import (
	"strings"
	"unicode/utf8"
)

// minDedupLine is the trimmed rune length above which a line is checked
// for duplication. Shorter lines (list markers, headings, table rows)
// repeat legitimately.
const minDedupLine = 10

// minDedupParagraph is the trimmed rune length above which a paragraph is
// checked for duplication.
const minDedupParagraph = 50

// DedupLines removes repeated lines, keeping the first occurrence. Only
// lines longer than minDedupLine participate; short lines always survive.
func DedupLines(text string) string {
	lines := strings.Split(text, "\n")
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if utf8.RuneCountInString(strings.TrimSpace(line)) > minDedupLine {
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// DedupParagraphs removes repeated paragraphs, keeping the first
// occurrence. Paragraphs are blank-line delimited blocks; only blocks
// longer than minDedupParagraph participate.
func DedupParagraphs(text string) string {
	var chunks []string
	var cur []string

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				chunks = append(chunks, strings.Join(cur, "\n"))
				cur = nil
			}
			chunks = append(chunks, "")
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, "\n"))
	}

	seen := make(map[string]struct{}, len(chunks))
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if utf8.RuneCountInString(strings.TrimSpace(chunk)) > minDedupParagraph {
			if _, dup := seen[chunk]; dup {
				continue
			}
			seen[chunk] = struct{}{}
		}
		out = append(out, chunk)
	}
	return strings.Join(out, "\n")
}
