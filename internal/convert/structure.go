// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// numberedHeadingRe matches section numbering like "1.", "2.3", "4.1.2 ".
	numberedHeadingRe = regexp.MustCompile(`^(\d+(?:\.\d+)*\.?)\s+(.+)$`)
	// digitsRe counts the numeric components of a section number.
	digitsRe = regexp.MustCompile(`\d+`)
	// numberedListRe matches list numbering like "1. item" or "(1) item".
	numberedListRe = regexp.MustCompile(`^((?:\d+\.)|(?:\(\d+\)))\s+(.+)$`)
	// bulletListRe matches bullet markers normalised to "-".
	bulletListRe = regexp.MustCompile(`^([-•*])\s+(.+)$`)
)

// furnitureRes match lines that are page furniture rather than content:
// bare page numbers, running page headers, copyright notices, and site URLs.
var furnitureRes = []*regexp.Regexp{
	regexp.MustCompile(`\n\s*\d+\s*\n`),
	regexp.MustCompile(`(?i)\n.{0,10}page\s+\d+.{0,10}\n`),
	regexp.MustCompile(`(?i)\n.{0,30}copyright.{0,30}\n`),
	regexp.MustCompile(`(?i)\n.{0,30}all rights reserved.{0,30}\n`),
	regexp.MustCompile(`(?i)\n.{0,30}www\..{3,50}\..{2,5}.{0,30}\n`),
}

// headingKeywords are section names that mark a short line as a heading
// even without numbering.
var headingKeywords = []string{
	"abstract",
	"introduction",
	"overview",
	"background",
	"contents",
	"methods",
	"results",
	"discussion",
	"references",
	"conclusion",
	"summary",
	"acknowledgements",
	"appendix",
}

// classifyHeading reports whether line is a heading and returns it in
// Markdown form. Section numbering sets the level, one "#" per numeric
// component; unnumbered headings (all caps, or a known section keyword on a
// short line) become level two.
func classifyHeading(line string) (bool, string) {
	if m := numberedHeadingRe.FindStringSubmatch(line); m != nil {
		level := len(digitsRe.FindAllString(m[1], -1))
		if level > 6 {
			level = 6
		}
		return true, strings.Repeat("#", level) + " " + m[1] + " " + m[2]
	}

	if n := utf8.RuneCountInString(line); isAllCaps(line) && n > 3 && n < 50 {
		return true, "## " + line
	}

	if utf8.RuneCountInString(line) < 30 {
		lower := strings.ToLower(line)
		for _, kw := range headingKeywords {
			if strings.Contains(lower, kw) {
				return true, "## " + line
			}
		}
	}

	return false, line
}

// classifyListItem reports whether line is a list item and returns it in
// Markdown form. Numbered items keep their numbering; bullet markers are
// normalised to "-".
func classifyListItem(line string) (bool, string) {
	if m := numberedListRe.FindStringSubmatch(line); m != nil {
		return true, m[1] + " " + m[2]
	}
	if m := bulletListRe.FindStringSubmatch(line); m != nil {
		return true, "- " + m[2]
	}
	return false, line
}

// structureText classifies each line of text and reassembles the document:
// headings and list items stand alone, consecutive prose lines merge into
// paragraphs, and blank lines delimit paragraph boundaries. The heading
// check runs before the list check, so "1. Introduction" is a heading and
// only parenthesised numbering like "(1)" survives as a numbered list.
func structureText(text string) string {
	var out []string
	var para []string

	flush := func() {
		if len(para) > 0 {
			out = append(out, strings.Join(para, " "))
			para = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if line == "" {
			flush()
			out = append(out, "")
			continue
		}

		if ok, heading := classifyHeading(line); ok {
			flush()
			out = append(out, heading)
			continue
		}

		if ok, item := classifyListItem(line); ok {
			flush()
			out = append(out, item)
			continue
		}

		para = append(para, line)
	}
	flush()

	return strings.Join(out, "\n\n")
}

// stripFurniture removes page furniture from extracted text before
// structuring.
func stripFurniture(text string) string {
	text = furnitureRes[0].ReplaceAllString(text, "\n\n")
	for _, re := range furnitureRes[1:] {
		text = re.ReplaceAllString(text, "\n")
	}
	return text
}

// isAllCaps reports whether s contains at least one letter and no lowercase
// letters, the way an unnumbered section title is usually set.
func isAllCaps(s string) bool {
	hasUpper := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}
