// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge persists the paper library and serves full-text
// retrieval over it. Entries are added explicitly from search results;
// nothing in the search pipeline writes here on its own.
package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/internal/similarity"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "library.db"
)

// Store manages the paper library SQLite database.
type Store struct {
	db           *sql.DB
	knowledgeDir string
	maxResults   int
}

// NewStore opens or creates the library database at
// knowledgeDir/index/library.db, creating the schema if it does not exist.
func NewStore(cfg types.KnowledgeBaseConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.KnowledgeDir, indexDir)
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
		db:           db,
		knowledgeDir: cfg.KnowledgeDir,
		maxResults:   maxResults,
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
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			url TEXT,
			year TEXT,
			venue TEXT,
			authors TEXT,
			citations INTEGER,
			abstract TEXT,
			topics TEXT,
			query TEXT,
			added_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(year)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_venue ON papers(venue)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
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

// AddSummary holds counts from a library ingestion run.
type AddSummary struct {
	Added   int
	Skipped int
}

// Total returns the number of records processed.
func (s AddSummary) Total() int {
	return s.Added + s.Skipped
}

// Add stores search records in the library under fresh paper IDs. Records
// whose title already matches a stored paper are skipped, so re-adding an
// overlapping result set does not grow the library. The originating query
// is kept with each entry for provenance.
func (s *Store) Add(ctx context.Context, records []types.Record, query string, w io.Writer) (AddSummary, error) {
	existing, err := s.storedTitles(ctx)
	if err != nil {
		return AddSummary{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AddSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (id, title, url, year, venue, authors, citations, abstract, topics, query, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return AddSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var summary AddSummary

	for _, r := range records {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if strings.TrimSpace(r.Title) == "" {
			fmt.Fprintf(w, "skipped (untitled record)\n")
			summary.Skipped++
			continue
		}

		if similarity.IsDuplicate(r.Title, existing) {
			fmt.Fprintf(w, "skipped %s\n", r.Title)
			summary.Skipped++
			continue
		}

		id := "paper_" + uuid.NewString()
		topicsJSON, _ := json.Marshal(extractTopics(r.Title + ". " + r.Abstract))
		addedAt := time.Now().UTC().Format(time.RFC3339)

		_, err := stmt.ExecContext(ctx,
			id, r.Title, r.URL, r.Year, r.Venue, r.Authors, r.Citations,
			r.Abstract, string(topicsJSON), query, addedAt,
		)
		if err != nil {
			return summary, fmt.Errorf("inserting paper %s: %w", id, err)
		}

		fmt.Fprintf(w, "added   %s\n", r.Title)
		summary.Added++
		existing = append(existing, types.Record{Title: r.Title})
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing transaction: %w", err)
	}

	fmt.Fprintf(w, "\nadded: %d, skipped: %d\n", summary.Added, summary.Skipped)

	return summary, nil
}

// Count returns the number of papers in the library.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// storedTitles loads existing titles for duplicate checks on ingestion.
func (s *Store) storedTitles(ctx context.Context) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM papers`)
	if err != nil {
		return nil, fmt.Errorf("loading stored titles: %w", err)
	}
	defer rows.Close()

	var titles []types.Record
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		titles = append(titles, types.Record{Title: title})
	}
	return titles, rows.Err()
}
