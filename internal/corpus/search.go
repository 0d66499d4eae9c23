// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// QueryOptions holds parameters for corpus queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string, matched against pair
	// inputs and outputs.
	Query string

	// DocID filters by source document.
	DocID string

	// MinInputLen filters out pairs whose input is shorter than this
	// many runes.
	MinInputLen int

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.DocID == "" && q.MinInputLen == 0
}

// QueryResult is a TrainingPair with its source document attached.
type QueryResult struct {
	types.TrainingPair `yaml:",inline"`

	DocID    string `json:"doc_id" yaml:"doc_id"`
	DocTitle string `json:"doc_title,omitempty" yaml:"doc_title,omitempty"`
}

// Search queries the corpus with optional full-text search and structured
// filters. Results are ranked by relevance for full-text queries or sorted
// by document and sequence for structured-only queries.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT p.id, p.doc_id, p.seq, p.input, p.output, d.title
			FROM pairs_fts
			JOIN pairs p ON p.rowid = pairs_fts.rowid
			LEFT JOIN documents d ON p.doc_id = d.id
			WHERE pairs_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT p.id, p.doc_id, p.seq, p.input, p.output, d.title
			FROM pairs p
			LEFT JOIN documents d ON p.doc_id = d.id
			WHERE 1=1`)
	}

	if opts.DocID != "" {
		qb.WriteString(` AND p.doc_id = ?`)
		args = append(args, opts.DocID)
	}

	if opts.MinInputLen > 0 {
		qb.WriteString(` AND p.input_len >= ?`)
		args = append(args, opts.MinInputLen)
	}

	if useFTS {
		qb.WriteString(` ORDER BY pairs_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY p.doc_id, p.seq`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying corpus: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr    QueryResult
			title sql.NullString
		)

		if err := rows.Scan(
			&qr.ID, &qr.DocID, &qr.Seq, &qr.Input, &qr.Output, &title,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if title.Valid {
			qr.DocTitle = title.String
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}
