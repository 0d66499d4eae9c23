// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds a training pair with document metadata for export.
type ExportEntry struct {
	ID       string `json:"id" yaml:"id"`
	DocID    string `json:"doc_id" yaml:"doc_id"`
	DocTitle string `json:"doc_title,omitempty" yaml:"doc_title,omitempty"`
	Seq      int    `json:"seq" yaml:"seq"`
	Input    string `json:"input" yaml:"input"`
	Output   string `json:"output" yaml:"output"`
}

const exportLimit = 100000

// ExportYAML writes the corpus to data/index/export.yaml. It supports the
// same filters as Search.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dataDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the corpus to data/index/export.json. It supports the
// same filters as Search.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dataDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportCSV writes the corpus to data/index/export.csv in the
// training_data.csv column format, so a filtered export can be fed to the
// fine-tuning stage directly. It supports the same filters as Search.
func (s *Store) ExportCSV(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write([]string{"input", "output"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Input, e.Output}); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}

	path := filepath.Join(s.dataDir, indexDir, "export.csv")
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	results, err := s.Search(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:       r.ID,
			DocID:    r.DocID,
			DocTitle: r.DocTitle,
			Seq:      r.Seq,
			Input:    r.Input,
			Output:   r.Output,
		}
	}

	return entries, nil
}
