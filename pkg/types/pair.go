// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TrainingPair is one supervised (input, output) example derived from two
// consecutive paragraphs of cleaned Markdown. Per prd003-cleaning R4.1-R4.4.
type TrainingPair struct {
	// ID is a stable identifier for this pair, consistent across re-cleans
	// of unchanged content. Per R4.4.
	ID string `json:"id" yaml:"id"`

	// Seq is the zero-based position of the pair within its document.
	Seq int `json:"seq" yaml:"seq"`

	// Input is the prompt side of the example: a cleaned paragraph.
	Input string `json:"input" yaml:"input"`

	// Output is the completion side: the paragraph following Input.
	Output string `json:"output" yaml:"output"`
}

// PairSet holds the training pairs derived from a single document. Written
// to data/pairs/<doc>-pairs.yaml by the cleaning stage and ingested into the
// corpus index. Per prd003-cleaning R4.5, prd005-corpus-index R1.1.
type PairSet struct {
	// DocID identifies the source document.
	DocID string `json:"doc_id" yaml:"doc_id"`

	// Source is the cleaned Markdown file the pairs were derived from.
	Source string `json:"source" yaml:"source"`

	// CleanedAt is when the cleaning stage produced this set.
	CleanedAt time.Time `json:"cleaned_at" yaml:"cleaned_at"`

	// Structure summarizes the cleaned document's Markdown shape.
	Structure Structure `json:"structure" yaml:"structure"`

	// Pairs contains the derived training pairs in document order.
	Pairs []TrainingPair `json:"pairs" yaml:"pairs"`
}

// Structure counts the Markdown elements of a cleaned document, as reported
// by walking the parsed AST. Per prd003-cleaning R3.5.
type Structure struct {
	// Headings is the number of headings at any level.
	Headings int `json:"headings" yaml:"headings"`

	// ListItems is the number of list items.
	ListItems int `json:"list_items" yaml:"list_items"`

	// Paragraphs is the number of paragraph blocks.
	Paragraphs int `json:"paragraphs" yaml:"paragraphs"`
}
