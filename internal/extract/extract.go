// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls raw text out of PDF pages with pluggable backends.
// Implements: prd001-extraction (R1-R4);
//
//	docs/ARCHITECTURE § Extraction.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

const (
	// rawDir is the subdirectory under the data base for source PDFs.
	rawDir = "raw"
	// textDir is the subdirectory under the data base for extracted text.
	textDir = "text"
	// metadataDir is the subdirectory under the data base for document records.
	metadataDir = "metadata"
)

// Backend extracts the text of each page of a PDF. Different backends
// (native, pdfcpu, pdftotext) implement this interface.
type Backend interface {
	// Name returns the backend name ("native", "pdfcpu", or "pdftotext").
	Name() string

	// Extract reads the PDF at path and returns one string per page.
	// A page whose text cannot be recovered yields an empty string at
	// its index; the document as a whole still succeeds.
	Extract(path string) ([]string, error)
}

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the total number of PDFs processed.
func (r BatchResult) Total() int {
	return r.Extracted + r.Skipped + r.Failed
}

// HasFailures reports whether any documents failed extraction.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ExtractDocument extracts the full text of a single PDF. Non-empty pages
// are joined with blank lines so the page boundary survives into the
// structuring stage (R1.3). It returns the joined text, quality metrics,
// and the extraction status: done when every page produced text, partial
// when some pages came back empty.
func ExtractDocument(b Backend, pdfPath string) (string, types.Quality, types.ExtractionStatus, error) {
	pages, err := b.Extract(pdfPath)
	if err != nil {
		return "", types.Quality{}, types.ExtractionFailed, err
	}

	var sb strings.Builder
	empty := 0
	for _, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			empty++
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(page)
	}

	text := sb.String()
	if text == "" {
		return "", types.Quality{}, types.ExtractionFailed,
			fmt.Errorf("no text content found in %s", filepath.Base(pdfPath))
	}

	status := types.ExtractionDone
	if empty > 0 {
		status = types.ExtractionPartial
	}

	return text, measureQuality(len(pages), text), status, nil
}

// ExtractBatch processes every PDF in dataDir/raw/, writing one text file
// per document to dataDir/text/ and updating the document metadata record.
// It prints per-file status to w, continues after individual failures, and
// returns a summary (R1.1, R1.4, R4.1-R4.3).
func ExtractBatch(b Backend, cfg types.ExtractConfig, w io.Writer) (BatchResult, error) {
	inDir := filepath.Join(cfg.DataDir, rawDir)
	outDir := filepath.Join(cfg.DataDir, textDir)

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return BatchResult{}, fmt.Errorf("reading raw directory %s: %w", inDir, err)
	}

	var result BatchResult
	found := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		found++

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		pdfPath := filepath.Join(inDir, entry.Name())
		outPath := filepath.Join(outDir, stem+".txt")

		if !cfg.Force {
			if _, err := os.Stat(outPath); err == nil {
				fmt.Fprintf(w, "skipped: %s (already exists)\n", stem)
				result.Skipped++
				continue
			}
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return result, fmt.Errorf("creating text directory: %w", err)
		}

		text, quality, status, err := ExtractDocument(b, pdfPath)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			updateMetadata(cfg.DataDir, stem, pdfPath, types.Quality{}, types.ExtractionFailed, w)
			result.Failed++
			continue
		}

		if err := os.WriteFile(outPath, []byte(text+"\n"), 0o644); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			result.Failed++
			continue
		}

		updateMetadata(cfg.DataDir, stem, pdfPath, quality, status, w)

		fmt.Fprintf(w, "extracted: %s (%d pages)\n", stem, quality.Pages)
		if status == types.ExtractionPartial {
			fmt.Fprintf(w, "  warning: %s: some pages produced no text\n", stem)
		}
		if quality.LikelyScanned() {
			fmt.Fprintf(w, "  warning: %s looks scanned (%.0f chars/page, %.2f printable); text may be unusable\n",
				stem, quality.CharsPerPage, quality.PrintableRatio)
		}
		result.Extracted++
	}

	if found == 0 {
		fmt.Fprintf(w, "no PDF files found in %s\n", inDir)
	}

	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		result.Extracted, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// updateMetadata upserts the document record for stem under dataDir/metadata/.
// Records created by the fetch stage are preserved; hand-placed PDFs get a
// fresh record. Metadata problems are warnings, not failures; the text
// output is the stage's real product (R3.1).
func updateMetadata(dataDir, stem, pdfPath string, q types.Quality, status types.ExtractionStatus, w io.Writer) {
	metaDir := filepath.Join(dataDir, metadataDir)
	path := filepath.Join(metaDir, stem+".yaml")

	doc := readDocument(path)
	if doc == nil {
		doc = &types.Document{ID: stem, PDFPath: pdfPath}
	}
	doc.ExtractedAt = time.Now().UTC()
	doc.ExtractionStatus = status
	doc.Quality = q

	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		fmt.Fprintf(w, "  warning: metadata update failed: %v\n", err)
		return
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		fmt.Fprintf(w, "  warning: metadata update failed: %v\n", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(w, "  warning: metadata update failed: %v\n", err)
	}
}

// readDocument reads a Document record from a YAML file. Returns nil if the
// file does not exist or cannot be parsed.
func readDocument(path string) *types.Document {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc types.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return &doc
}

// NewBackend constructs the extraction backend named by cfg.Backend.
// An empty backend selects native (R2.1, R2.2).
func NewBackend(backend types.ExtractionBackend) (Backend, error) {
	switch backend {
	case types.BackendNative, "":
		return NativeBackend{}, nil
	case types.BackendPdfcpu:
		return PdfcpuBackend{}, nil
	case types.BackendPdftotext:
		return NewPdftotextBackend()
	default:
		return nil, fmt.Errorf("unknown extraction backend %q: use native, pdfcpu, or pdftotext", backend)
	}
}
