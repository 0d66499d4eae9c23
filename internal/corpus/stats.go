// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
)

// LengthStats summarizes a rune-length distribution.
type LengthStats struct {
	Min int     `json:"min" yaml:"min"`
	Max int     `json:"max" yaml:"max"`
	Avg float64 `json:"avg" yaml:"avg"`
}

// DocStats holds per-document corpus counts.
type DocStats struct {
	DocID      string `json:"doc_id" yaml:"doc_id"`
	Title      string `json:"title,omitempty" yaml:"title,omitempty"`
	Pairs      int    `json:"pairs" yaml:"pairs"`
	Headings   int    `json:"headings" yaml:"headings"`
	ListItems  int    `json:"list_items" yaml:"list_items"`
	Paragraphs int    `json:"paragraphs" yaml:"paragraphs"`
}

// CorpusStats summarizes the indexed corpus: totals, pair length
// distribution, and the number of pairs whose input duplicates another
// pair's input. Duplicate inputs dilute fine-tuning batches, so the count
// is worth watching before training.
type CorpusStats struct {
	Documents       int         `json:"documents" yaml:"documents"`
	Pairs           int         `json:"pairs" yaml:"pairs"`
	PairsPerDoc     float64     `json:"pairs_per_doc" yaml:"pairs_per_doc"`
	InputLen        LengthStats `json:"input_len" yaml:"input_len"`
	OutputLen       LengthStats `json:"output_len" yaml:"output_len"`
	DuplicateInputs int         `json:"duplicate_inputs" yaml:"duplicate_inputs"`
	Docs            []DocStats  `json:"docs,omitempty" yaml:"docs,omitempty"`
}

// Stats computes corpus-wide counts and per-document breakdowns.
func (s *Store) Stats(ctx context.Context) (CorpusStats, error) {
	var st CorpusStats

	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM documents`,
	).Scan(&st.Documents); err != nil {
		return st, fmt.Errorf("counting documents: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*),
			COALESCE(MIN(input_len), 0), COALESCE(MAX(input_len), 0), COALESCE(AVG(input_len), 0),
			COALESCE(MIN(output_len), 0), COALESCE(MAX(output_len), 0), COALESCE(AVG(output_len), 0)
		FROM pairs`,
	).Scan(
		&st.Pairs,
		&st.InputLen.Min, &st.InputLen.Max, &st.InputLen.Avg,
		&st.OutputLen.Min, &st.OutputLen.Max, &st.OutputLen.Avg,
	); err != nil {
		return st, fmt.Errorf("summarizing pairs: %w", err)
	}

	if st.Documents > 0 {
		st.PairsPerDoc = float64(st.Pairs) / float64(st.Documents)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) - count(DISTINCT input) FROM pairs`,
	).Scan(&st.DuplicateInputs); err != nil {
		return st, fmt.Errorf("counting duplicate inputs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, pair_count, headings, list_items, paragraphs
		FROM documents ORDER BY id`)
	if err != nil {
		return st, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d DocStats
		if err := rows.Scan(
			&d.DocID, &d.Title, &d.Pairs, &d.Headings, &d.ListItems, &d.Paragraphs,
		); err != nil {
			return st, fmt.Errorf("scanning document row: %w", err)
		}
		st.Docs = append(st.Docs, d)
	}

	return st, rows.Err()
}
