// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clean normalises structured Markdown and prepares training pairs.
// Implements: prd003-cleaning (R1-R5);
//
//	docs/ARCHITECTURE § Cleaning.
package clean

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

const (
	// markdownDir is the subdirectory under the data base for structured Markdown.
	markdownDir = "markdown"
	// cleanedDir is the subdirectory under the data base for cleaned Markdown.
	cleanedDir = "cleaned"
	// pairsDir is the subdirectory under the data base for per-document pair sets.
	pairsDir = "pairs"
	// trainingCSV is the aggregated training data file, written under the data base.
	trainingCSV = "training_data.csv"
	// cleanedPrefix marks cleaned output files.
	cleanedPrefix = "cleaned_"
)

// docMeta is the frontmatter the structuring stage wrote.
type docMeta struct {
	DocID      string `yaml:"doc_id"`
	SourceText string `yaml:"source_text"`
}

// BatchResult holds the outcome of a batch cleaning run.
type BatchResult struct {
	Cleaned int
	Skipped int
	Failed  int
	Pairs   int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Cleaned + r.Skipped + r.Failed
}

// HasFailures reports whether any documents failed cleaning.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// CleanDocument normalises a Markdown body and removes duplicated content.
// Normalisation runs first so that duplicates differing only in formatting
// noise still collapse.
func CleanDocument(body string) string {
	cleaned := Normalize(body)
	cleaned = DedupLines(cleaned)
	return DedupParagraphs(cleaned)
}

// CleanBatch cleans every Markdown file in dataDir/markdown/, writing
// cleaned_<stem>.md files to dataDir/cleaned/ and, unless pairs are turned
// off, a pair set per document to dataDir/pairs/ plus the aggregated
// dataDir/training_data.csv. Skipped documents contribute their previously
// generated pair sets to the CSV so it always covers the whole corpus.
func CleanBatch(cfg types.CleanConfig, w io.Writer) (BatchResult, error) {
	inDir := filepath.Join(cfg.DataDir, markdownDir)
	outDir := filepath.Join(cfg.DataDir, cleanedDir)

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return BatchResult{}, fmt.Errorf("reading markdown directory %s: %w", inDir, err)
	}

	var result BatchResult
	var allPairs []types.TrainingPair
	found := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			continue
		}
		found++

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		inPath := filepath.Join(inDir, entry.Name())
		outPath := filepath.Join(outDir, cleanedPrefix+stem+".md")
		pairPath := filepath.Join(cfg.DataDir, pairsDir, stem+"-pairs.yaml")

		if !cfg.Force {
			if _, err := os.Stat(outPath); err == nil {
				fmt.Fprintf(w, "skipped: %s (already exists)\n", stem)
				result.Skipped++
				if cfg.MakePairs {
					set, err := ReadPairSet(pairPath)
					if err != nil {
						fmt.Fprintf(w, "  warning: no pair set for %s; rerun with --force to regenerate\n", stem)
						continue
					}
					allPairs = append(allPairs, set.Pairs...)
				}
				continue
			}
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return result, fmt.Errorf("creating cleaned directory: %w", err)
		}

		raw, err := os.ReadFile(inPath)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			result.Failed++
			continue
		}

		var meta docMeta
		body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			result.Failed++
			continue
		}
		docID := meta.DocID
		if docID == "" {
			docID = stem
		}

		cleaned := CleanDocument(string(body))
		content := addFrontmatter(docID, meta.SourceText, cleaned)

		if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			result.Failed++
			continue
		}

		if !cfg.MakePairs {
			fmt.Fprintf(w, "cleaned: %s\n", stem)
			result.Cleaned++
			continue
		}

		pairs := BuildPairs(docID, cleaned)
		set := types.PairSet{
			DocID:     docID,
			Source:    outPath,
			CleanedAt: time.Now().UTC(),
			Structure: MeasureStructure(cleaned),
			Pairs:     pairs,
		}
		if err := WritePairSet(pairPath, set); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			result.Failed++
			continue
		}
		allPairs = append(allPairs, pairs...)

		fmt.Fprintf(w, "cleaned: %s (%d pairs)\n", stem, len(pairs))
		result.Cleaned++
	}

	if found == 0 {
		fmt.Fprintf(w, "no markdown files found in %s\n", inDir)
	}

	if cfg.MakePairs && result.Cleaned+result.Skipped > 0 {
		csvPath := filepath.Join(cfg.DataDir, trainingCSV)
		if err := WriteTrainingCSV(csvPath, allPairs); err != nil {
			return result, fmt.Errorf("writing training data: %w", err)
		}
		result.Pairs = len(allPairs)
		fmt.Fprintf(w, "training data: %s (%d pairs)\n", csvPath, len(allPairs))
	}

	fmt.Fprintf(w, "\nBatch summary: %d cleaned, %d skipped, %d failed (total: %d)\n",
		result.Cleaned, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// addFrontmatter prepends YAML frontmatter to the cleaned Markdown content.
func addFrontmatter(docID, sourcePath, body string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "doc_id: %q\n", docID)
	if sourcePath != "" {
		fmt.Fprintf(&b, "source_text: %q\n", sourcePath)
	}
	fmt.Fprintf(&b, "cleaned_at: %q\n", ts)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}
