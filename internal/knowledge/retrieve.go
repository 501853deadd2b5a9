// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// QueryOptions holds parameters for library queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string, matched against titles
	// and abstracts.
	Query string

	// Year filters by exact publication year.
	Year string

	// Venue filters by venue substring, case-insensitive.
	Venue string

	// Topic filters by an extracted topic label.
	Topic string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Year == "" && q.Venue == "" && q.Topic == ""
}

// Retrieve queries the library with optional full-text search and
// structured filters. Results are ranked by relevance for full-text
// queries; filter-only queries return the most recently added papers
// first.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.LibraryEntry, error) {
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
			`SELECT p.id, p.title, p.url, p.year, p.venue, p.authors,
				p.citations, p.abstract, p.topics, p.query, p.added_at,
				papers_fts.rank
			FROM papers_fts
			JOIN papers p ON p.rowid = papers_fts.rowid
			WHERE papers_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT p.id, p.title, p.url, p.year, p.venue, p.authors,
				p.citations, p.abstract, p.topics, p.query, p.added_at,
				0 AS rank
			FROM papers p
			WHERE 1=1`)
	}

	if opts.Year != "" {
		qb.WriteString(` AND p.year = ?`)
		args = append(args, opts.Year)
	}

	if opts.Venue != "" {
		qb.WriteString(` AND p.venue LIKE ?`)
		args = append(args, "%"+opts.Venue+"%")
	}

	if opts.Topic != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(p.topics) WHERE value = ?)`)
		args = append(args, strings.ToLower(opts.Topic))
	}

	if useFTS {
		qb.WriteString(` ORDER BY papers_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY p.added_at DESC, p.rowid DESC`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()

	var results []types.LibraryEntry
	for rows.Next() {
		var (
			entry      types.LibraryEntry
			topicsJSON sql.NullString
			queryStr   sql.NullString
			addedAt    sql.NullString
			rank       float64
		)

		if err := rows.Scan(
			&entry.ID, &entry.Title, &entry.URL, &entry.Year, &entry.Venue,
			&entry.Authors, &entry.Citations, &entry.Abstract,
			&topicsJSON, &queryStr, &addedAt, &rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if topicsJSON.Valid {
			json.Unmarshal([]byte(topicsJSON.String), &entry.Topics)
		}
		if queryStr.Valid {
			entry.Query = queryStr.String
		}
		if addedAt.Valid {
			if t, err := time.Parse(time.RFC3339, addedAt.String); err == nil {
				entry.AddedAt = t
			}
		}

		results = append(results, entry)
	}

	return results, rows.Err()
}
