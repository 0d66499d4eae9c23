// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clean

import (
	"regexp"
	"strings"
)

var (
	// blankRunRe collapses runs of three or more newlines.
	blankRunRe = regexp.MustCompile(`\n{3,}`)
	// headingSpaceRe fixes headings missing the space after "#".
	headingSpaceRe = regexp.MustCompile(`(?m)^(#+)([^#\s])`)
	// listSpaceRe fixes list items missing the space after "-".
	listSpaceRe = regexp.MustCompile(`(?m)^(\s*)-([^\s])`)
	// controlRe strips control characters that survive PDF extraction.
	controlRe = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	// fragmentRe joins a broken line onto its continuation: the first line
	// does not end a sentence and the next starts lowercase.
	fragmentRe = regexp.MustCompile(`([^.\n!?])\n([a-z])`)
	// quoteSpaceRe fixes blockquotes missing the space after ">".
	quoteSpaceRe = regexp.MustCompile(`(?m)^(\s*>)([^>\s])`)
)

// Normalize repairs the formatting problems that heuristic structuring
// leaves behind: stray blank runs, glued Markdown markers, control
// characters, sentence fragments split across lines, and tables without
// separator rows.
func Normalize(text string) string {
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = headingSpaceRe.ReplaceAllString(text, "$1 $2")
	text = listSpaceRe.ReplaceAllString(text, "$1- $2")
	text = controlRe.ReplaceAllString(text, "")
	text = fragmentRe.ReplaceAllString(text, "$1 $2")
	text = quoteSpaceRe.ReplaceAllString(text, "$1 $2")
	return repairTables(text)
}

// repairTables inserts a Markdown separator row after the first row of any
// table that lacks one. A table row is a line with at least two pipes.
func repairTables(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	inTable := false

	for i, line := range lines {
		if strings.Count(line, "|") < 2 {
			inTable = false
			out = append(out, line)
			continue
		}

		if !inTable {
			inTable = true
			if i+1 < len(lines) {
				next := lines[i+1]
				if !strings.Contains(next, "---") && !strings.Contains(next, "|") {
					cols := strings.Count(line, "|") - 1
					out = append(out, line, "|"+strings.Repeat("---|", cols))
					continue
				}
			}
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}
