// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clean

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

const sampleMarkdown = `---
doc_id: "doc1"
source_text: "data/text/doc1.txt"
converted_at: "2026-01-05T10:00:00Z"
---

# doc1

##Introduction

This paragraph contains enough text to form a pair input for training purposes.

This second paragraph is also long enough to serve as the output of the pair.

A third paragraph that the stride passes over entirely.

This fourth paragraph is passed over by the stride as well.

The fifth paragraph contains the input text of the second generated pair.

And the sixth paragraph carries the matching output text of the second pair.
`

// writeSample places a structured Markdown file under dataDir/markdown/.
func writeSample(t *testing.T, dataDir, name, content string) {
	t.Helper()
	dir := filepath.Join(dataDir, "markdown")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCleanBatch(t *testing.T) {
	dataDir := t.TempDir()
	writeSample(t, dataDir, "doc1.md", sampleMarkdown)

	var log bytes.Buffer
	result, err := CleanBatch(types.CleanConfig{DataDir: dataDir, MakePairs: true}, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Cleaned != 1 {
		t.Errorf("cleaned = %d, want 1", result.Cleaned)
	}
	if result.Pairs != 2 {
		t.Errorf("pairs = %d, want 2", result.Pairs)
	}
	if !strings.Contains(log.String(), "Batch summary:") {
		t.Error("batch output should contain summary line")
	}

	// Cleaned Markdown output.
	data, err := os.ReadFile(filepath.Join(dataDir, "cleaned", "cleaned_doc1.md"))
	if err != nil {
		t.Fatalf("reading cleaned output: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "---\n") {
		t.Error("cleaned output should start with frontmatter")
	}
	if !strings.Contains(content, `doc_id: "doc1"`) {
		t.Error("frontmatter should carry doc_id")
	}
	if !strings.Contains(content, "cleaned_at:") {
		t.Error("frontmatter should carry cleaned_at")
	}
	if !strings.Contains(content, "## Introduction") {
		t.Error("glued heading marker should be repaired")
	}
	if strings.Contains(content, "##Introduction") {
		t.Error("unrepaired heading marker survived")
	}

	// Per-document pair set.
	set, err := ReadPairSet(filepath.Join(dataDir, "pairs", "doc1-pairs.yaml"))
	if err != nil {
		t.Fatalf("reading pair set: %v", err)
	}
	if set.DocID != "doc1" {
		t.Errorf("pair set doc id = %q", set.DocID)
	}
	if len(set.Pairs) != 2 {
		t.Errorf("pair set pairs = %d, want 2", len(set.Pairs))
	}
	if set.Structure.Headings == 0 {
		t.Error("structure stats should count headings")
	}

	// Aggregated CSV.
	if _, err := os.Stat(filepath.Join(dataDir, "training_data.csv")); err != nil {
		t.Errorf("training CSV missing: %v", err)
	}
}

func TestCleanBatch_SkipReusesPairs(t *testing.T) {
	dataDir := t.TempDir()
	writeSample(t, dataDir, "doc1.md", sampleMarkdown)

	cfg := types.CleanConfig{DataDir: dataDir, MakePairs: true}
	var first bytes.Buffer
	if _, err := CleanBatch(cfg, &first); err != nil {
		t.Fatalf("first run: %v", err)
	}

	var second bytes.Buffer
	result, err := CleanBatch(cfg, &second)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if result.Skipped != 1 || result.Cleaned != 0 {
		t.Errorf("skipped = %d, cleaned = %d, want 1, 0", result.Skipped, result.Cleaned)
	}
	if result.Pairs != 2 {
		t.Errorf("pairs = %d, want 2 (reloaded from pair set)", result.Pairs)
	}
	if !strings.Contains(second.String(), "skipped: doc1") {
		t.Errorf("missing skip notice: %q", second.String())
	}
}

func TestCleanBatch_NoPairs(t *testing.T) {
	dataDir := t.TempDir()
	writeSample(t, dataDir, "doc1.md", sampleMarkdown)

	var log bytes.Buffer
	result, err := CleanBatch(types.CleanConfig{DataDir: dataDir}, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Cleaned != 1 {
		t.Errorf("cleaned = %d, want 1", result.Cleaned)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "pairs")); !os.IsNotExist(err) {
		t.Error("pairs directory should not be created")
	}
	if _, err := os.Stat(filepath.Join(dataDir, "training_data.csv")); !os.IsNotExist(err) {
		t.Error("training CSV should not be created")
	}
}

func TestCleanBatch_NoFrontmatter(t *testing.T) {
	dataDir := t.TempDir()
	writeSample(t, dataDir, "bare.md", "# bare\n\nJust a body with no frontmatter at all here.")

	var log bytes.Buffer
	result, err := CleanBatch(types.CleanConfig{DataDir: dataDir, MakePairs: true}, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Cleaned != 1 {
		t.Fatalf("cleaned = %d, want 1", result.Cleaned)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "cleaned", "cleaned_bare.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `doc_id: "bare"`) {
		t.Error("doc id should fall back to the filename stem")
	}
}

func TestCleanBatch_EmptyDir(t *testing.T) {
	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, "markdown"), 0o755); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	result, err := CleanBatch(types.CleanConfig{DataDir: dataDir, MakePairs: true}, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total() != 0 {
		t.Errorf("total = %d, want 0", result.Total())
	}
	if !strings.Contains(log.String(), "no markdown files found") {
		t.Error("expected notice about missing markdown files")
	}
}

func TestMeasureStructure(t *testing.T) {
	body := strings.Join([]string{
		"# Title",
		"",
		"First paragraph of prose.",
		"",
		"- item one",
		"- item two",
		"",
		"## Section",
		"",
		"Second paragraph of prose.",
	}, "\n")

	s := MeasureStructure(body)

	if s.Headings != 2 {
		t.Errorf("headings = %d, want 2", s.Headings)
	}
	if s.ListItems != 2 {
		t.Errorf("list items = %d, want 2", s.ListItems)
	}
	if s.Paragraphs != 2 {
		t.Errorf("paragraphs = %d, want 2", s.Paragraphs)
	}
}
