// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"unicode"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// measureQuality computes extraction quality metrics over the joined text
// of a document (R3.2, R3.3).
func measureQuality(pages int, text string) types.Quality {
	q := types.Quality{
		Pages:          pages,
		PrintableRatio: printableRatio(text),
		WordlikeRatio:  wordlikeRatio(text),
	}
	if pages > 0 {
		q.CharsPerPage = float64(len([]rune(text))) / float64(pages)
	}
	return q
}

// printableRatio returns the share of runes that are printable text.
// Private Use Area glyphs, U+FFFD, and control characters other than
// whitespace count against it; they are the fingerprints of a broken
// font encoding.
func printableRatio(text string) float64 {
	total := 0
	printable := 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	if r >= 0xE000 && r <= 0xF8FF {
		return true
	}
	if r == 0xFFFD {
		return true
	}
	return r < 0x0020 && r != '\n' && r != '\r' && r != '\t'
}

// wordlikeRatio returns the share of whitespace-separated tokens with a
// plausible word length (2-15 runes).
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		if n := len([]rune(f)); n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}
