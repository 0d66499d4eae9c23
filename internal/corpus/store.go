// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists documents and training pairs in a searchable index.
// Implements: prd005-corpus-index (R1-R5);
//
//	docs/ARCHITECTURE § Corpus Index.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

const (
	pairsDir    = "pairs"
	indexDir    = "index"
	metadataDir = "metadata"
	dbFile      = "corpus.db"
)

// Store manages the corpus SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the corpus SQLite database at
// dataDir/index/corpus.db. It creates the schema if it does not exist.
func NewStore(cfg types.CorpusConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT,
			source_url TEXT,
			pdf_path TEXT,
			extraction_status TEXT,
			pages INTEGER,
			chars_per_page REAL,
			printable_ratio REAL,
			headings INTEGER,
			list_items INTEGER,
			paragraphs INTEGER,
			pair_count INTEGER,
			cleaned_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS pairs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			seq INTEGER NOT NULL,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			input_len INTEGER NOT NULL,
			output_len INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pairs_doc_id ON pairs(doc_id)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			doc_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='pairs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE pairs_fts USING fts5(input, output, content=pairs, content_rowid=rowid)`,
			`CREATE TRIGGER pairs_ai AFTER INSERT ON pairs BEGIN
				INSERT INTO pairs_fts(rowid, input, output) VALUES (new.rowid, new.input, new.output);
			END`,
			`CREATE TRIGGER pairs_ad AFTER DELETE ON pairs BEGIN
				INSERT INTO pairs_fts(pairs_fts, rowid, input, output) VALUES('delete', old.rowid, old.input, old.output);
			END`,
			`CREATE TRIGGER pairs_au AFTER UPDATE ON pairs BEGIN
				INSERT INTO pairs_fts(pairs_fts, rowid, input, output) VALUES('delete', old.rowid, old.input, old.output);
				INSERT INTO pairs_fts(rowid, input, output) VALUES (new.rowid, new.input, new.output);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a corpus indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of pair sets processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads pair set YAML files from dataDir/pairs/ and populates the
// database. It detects new, changed, and unchanged files for incremental
// updates. On success it writes export.yaml so the index always has a
// flat-file mirror.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	setDir := filepath.Join(s.dataDir, pairsDir)
	metaDir := filepath.Join(s.dataDir, metadataDir)

	entries, err := os.ReadDir(setDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading pairs directory %s: %w", setDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-pairs.yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		docID := strings.TrimSuffix(entry.Name(), "-pairs.yaml")
		filePath := filepath.Join(setDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		// Skip files unchanged since the last indexing run.
		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE doc_id = ?`, docID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", docID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		var set types.PairSet
		if err := yaml.Unmarshal(data, &set); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", docID, err)
			summary.Failed++
			continue
		}
		if set.DocID == "" {
			set.DocID = docID
		}

		doc := loadDocMetadata(metaDir, docID)

		if err := s.ingestPairSet(ctx, docID, &set, doc, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d pairs)\n", docID, len(set.Pairs))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d pairs)\n", docID, len(set.Pairs))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestPairSet(ctx context.Context, docID string, set *types.PairSet, doc *types.Document, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old pairs if updating.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pairs WHERE doc_id = ?`, docID); err != nil {
			return fmt.Errorf("deleting old pairs: %w", err)
		}
	}

	// Upsert the document record, joining fetch/extract metadata when the
	// record exists.
	title, sourceURL, pdfPath, status := "", "", "", ""
	pages := 0
	charsPerPage, printableRatio := 0.0, 0.0
	if doc != nil {
		title = doc.Title
		sourceURL = doc.SourceURL
		pdfPath = doc.PDFPath
		status = string(doc.ExtractionStatus)
		pages = doc.Quality.Pages
		charsPerPage = doc.Quality.CharsPerPage
		printableRatio = doc.Quality.PrintableRatio
	}
	cleanedAt := ""
	if !set.CleanedAt.IsZero() {
		cleanedAt = set.CleanedAt.UTC().Format(time.RFC3339)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, source_url, pdf_path, extraction_status,
			pages, chars_per_page, printable_ratio,
			headings, list_items, paragraphs, pair_count, cleaned_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, source_url=excluded.source_url,
			pdf_path=excluded.pdf_path, extraction_status=excluded.extraction_status,
			pages=excluded.pages, chars_per_page=excluded.chars_per_page,
			printable_ratio=excluded.printable_ratio, headings=excluded.headings,
			list_items=excluded.list_items, paragraphs=excluded.paragraphs,
			pair_count=excluded.pair_count, cleaned_at=excluded.cleaned_at`,
		docID, title, sourceURL, pdfPath, status,
		pages, charsPerPage, printableRatio,
		set.Structure.Headings, set.Structure.ListItems, set.Structure.Paragraphs,
		len(set.Pairs), cleanedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	// Insert pairs.
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO pairs (id, doc_id, seq, input, output, input_len, output_len)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, pair := range set.Pairs {
		_, err := stmt.ExecContext(ctx,
			pair.ID, docID, pair.Seq, pair.Input, pair.Output,
			utf8.RuneCountInString(pair.Input), utf8.RuneCountInString(pair.Output),
		)
		if err != nil {
			return fmt.Errorf("inserting pair %s: %w", pair.ID, err)
		}
	}

	// Update indexing status.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (doc_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		docID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// loadDocMetadata reads a Document record from metaDir/[docID].yaml.
// Returns nil if the file does not exist or cannot be parsed.
func loadDocMetadata(metaDir, docID string) *types.Document {
	path := filepath.Join(metaDir, docID+".yaml")
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
