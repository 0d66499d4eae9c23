// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clean

import (
	"crypto/sha256"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// minPairText is the minimum rune length of both sides of a training pair.
const minPairText = 10

// paragraphSplitRe splits cleaned Markdown into paragraphs.
var paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

// BuildPairs slices a cleaned document into supervised training pairs. The
// document is split into paragraphs; every third paragraph becomes an input
// with its successor as the output, so consecutive pairs never share text.
// Pairs where either side is too short are dropped.
func BuildPairs(docID, text string) []types.TrainingPair {
	paragraphs := paragraphSplitRe.Split(text, -1)

	var pairs []types.TrainingPair
	for i := 0; i+1 < len(paragraphs); i += 3 {
		input := strings.TrimSpace(paragraphs[i])
		output := strings.TrimSpace(paragraphs[i+1])
		if utf8.RuneCountInString(input) <= minPairText || utf8.RuneCountInString(output) <= minPairText {
			continue
		}
		seq := len(pairs)
		pairs = append(pairs, types.TrainingPair{
			ID:     pairID(docID, seq, input, output),
			Seq:    seq,
			Input:  input,
			Output: output,
		})
	}
	return pairs
}

// pairID generates a deterministic ID from document ID, sequence number,
// and pair content. The ID is the first 12 hex characters of the SHA-256.
// The sequence keeps identical pairs within one document distinct.
func pairID(docID string, seq int, input, output string) string {
	h := sha256.New()
	h.Write([]byte(docID))
	fmt.Fprintf(h, "%d", seq)
	h.Write([]byte(input))
	h.Write([]byte(output))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// WritePairSet writes a document's pair set as YAML.
func WritePairSet(path string, set types.PairSet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating pairs directory: %w", err)
	}
	data, err := yaml.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshaling pair set: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing pair set: %w", err)
	}
	return nil
}

// ReadPairSet reads a document's pair set from YAML.
func ReadPairSet(path string) (types.PairSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.PairSet{}, fmt.Errorf("reading pair set: %w", err)
	}
	var set types.PairSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return types.PairSet{}, fmt.Errorf("parsing pair set %s: %w", path, err)
	}
	return set, nil
}

// WriteTrainingCSV writes the aggregated training pairs as a two-column
// input,output CSV, the format the fine-tuning stage consumes. The file is
// written to a temp file first and renamed into place so a crashed run
// never leaves a truncated CSV behind.
func WriteTrainingCSV(path string, pairs []types.TrainingPair) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".training-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cw := csv.NewWriter(tmpFile)
	writeErr := cw.Write([]string{"input", "output"})
	for _, p := range pairs {
		if writeErr != nil {
			break
		}
		writeErr = cw.Write([]string{p.Input, p.Output})
	}
	cw.Flush()
	if writeErr == nil {
		writeErr = cw.Error()
	}

	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing CSV: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
