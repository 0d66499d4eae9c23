// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns extracted plain text into structured Markdown.
// Implements: prd002-structuring (R1, R2, R3);
//
//	docs/ARCHITECTURE § Structuring.
package convert

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
	// textDir is the subdirectory under the data base for extracted text.
	textDir = "text"
	// markdownDir is the subdirectory under the data base for Markdown output.
	markdownDir = "markdown"
	// metadataDir is the subdirectory under the data base for document records.
	metadataDir = "metadata"
)

// BatchResult holds the outcome of a batch structuring run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any documents failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertDocument structures the plain text of one document into Markdown:
// page furniture is stripped, lines are classified as headings, list items,
// or paragraph text, and the document title becomes the top-level heading.
func ConvertDocument(title, text string) string {
	body := structureText(stripFurniture(text))
	return "# " + title + "\n\n" + body
}

// ConvertBatch structures every text file in dataDir/text/, writing one
// Markdown file per document to dataDir/markdown/. It prints per-file status
// to w, continues after individual failures, and returns a summary.
func ConvertBatch(cfg types.ConvertConfig, w io.Writer) (BatchResult, error) {
	inDir := filepath.Join(cfg.DataDir, textDir)
	outDir := filepath.Join(cfg.DataDir, markdownDir)

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return BatchResult{}, fmt.Errorf("reading text directory %s: %w", inDir, err)
	}

	var result BatchResult
	found := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		found++

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		inPath := filepath.Join(inDir, entry.Name())
		outPath := filepath.Join(outDir, stem+".md")

		if !cfg.Force {
			if _, err := os.Stat(outPath); err == nil {
				fmt.Fprintf(w, "skipped: %s (already exists)\n", stem)
				result.Skipped++
				continue
			}
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return result, fmt.Errorf("creating markdown directory: %w", err)
		}

		data, err := os.ReadFile(inPath)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			result.Failed++
			continue
		}

		md := ConvertDocument(documentTitle(cfg.DataDir, stem), string(data))
		content := addFrontmatter(stem, inPath, md)

		if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			result.Failed++
			continue
		}

		fmt.Fprintf(w, "converted: %s\n", stem)
		result.Converted++
	}

	if found == 0 {
		fmt.Fprintf(w, "no text files found in %s\n", inDir)
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// documentTitle returns the document title from its metadata record, falling
// back to the filename stem when no record or title exists.
func documentTitle(dataDir, stem string) string {
	data, err := os.ReadFile(filepath.Join(dataDir, metadataDir, stem+".yaml"))
	if err != nil {
		return stem
	}
	var doc types.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return stem
	}
	if doc.Title != "" {
		return doc.Title
	}
	return stem
}

// addFrontmatter prepends YAML frontmatter to the structured Markdown content.
func addFrontmatter(docID, sourcePath, body string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "doc_id: %q\n", docID)
	fmt.Fprintf(&b, "source_text: %q\n", sourcePath)
	fmt.Fprintf(&b, "converted_at: %q\n", ts)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}
