// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the corpus-engine pipeline.
// Implements: prd001-extraction (Document, Quality, R3.1-R3.4);
//
//	prd006-fetch (Document, R2.2);
//	prd003-cleaning (TrainingPair, PairSet).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

import "time"

// ExtractionStatus indicates the state of PDF text extraction for a document.
// Per prd001-extraction R3.4.
type ExtractionStatus string

const (
	ExtractionNone    ExtractionStatus = "none"
	ExtractionDone    ExtractionStatus = "extracted"
	ExtractionPartial ExtractionStatus = "partial"
	ExtractionFailed  ExtractionStatus = "failed"
)

// Quality captures metrics about how well text extraction worked for a PDF.
// Per prd001-extraction R3.2: documents that are scans or use broken font
// encodings produce few or garbled characters; these metrics let later
// stages flag them instead of feeding noise into the training corpus.
type Quality struct {
	// Pages is the number of pages in the source PDF.
	Pages int `json:"pages" yaml:"pages"`

	// CharsPerPage is the mean number of extracted runes per page.
	CharsPerPage float64 `json:"chars_per_page" yaml:"chars_per_page"`

	// PrintableRatio is the fraction of extracted runes that are printable
	// (excluding Private Use Area runes, U+FFFD, and stray control bytes).
	PrintableRatio float64 `json:"printable_ratio" yaml:"printable_ratio"`

	// WordlikeRatio is the fraction of whitespace-separated tokens with a
	// plausible word length (2-15 runes).
	WordlikeRatio float64 `json:"wordlike_ratio" yaml:"wordlike_ratio"`
}

// LikelyScanned reports whether the PDF probably contains page images rather
// than a text layer. Extraction still succeeds, but the output is too sparse
// or too garbled to train on. Per prd001-extraction R3.3.
func (q Quality) LikelyScanned() bool {
	return q.CharsPerPage < 50 || q.PrintableRatio < 0.85
}

// Document holds metadata and file paths for one document moving through the
// pipeline. Per prd006-fetch R2.2 and prd001-extraction R3.1: source URL,
// local PDF path, extraction status and quality, and stage timestamps.
type Document struct {
	// ID is a slug derived from the source filename (e.g. "attention-is-all-you-need").
	ID string `json:"id" yaml:"id"`

	// SourceURL is the URL the PDF was fetched from. Empty for PDFs placed
	// in the raw directory by hand.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// PDFPath is the local filesystem path to the source PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// Title is the document title. Defaults to the filename stem; the
	// structuring stage uses it for the top-level Markdown heading.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// FetchedAt is when the PDF was downloaded. Zero for hand-placed PDFs.
	FetchedAt time.Time `json:"fetched_at,omitempty" yaml:"fetched_at,omitempty"`

	// ExtractedAt is when text extraction last ran for this document.
	ExtractedAt time.Time `json:"extracted_at,omitempty" yaml:"extracted_at,omitempty"`

	// ExtractionStatus tracks whether the PDF text has been extracted.
	ExtractionStatus ExtractionStatus `json:"extraction_status" yaml:"extraction_status"`

	// Quality holds extraction quality metrics. Populated by the extract stage.
	Quality Quality `json:"quality,omitempty" yaml:"quality,omitempty"`
}
