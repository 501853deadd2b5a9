// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv Atom API. arXiv reports no citation counts,
// so its records always carry zero citations.
type ArxivSource struct {
	Client    *http.Client
	UserAgent string
}

// NewArxivSource builds a source from config. No API key is needed.
func NewArxivSource(cfg types.SearchConfig) *ArxivSource {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ArxivSource{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: cfg.UserAgent,
	}
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Search queries the arXiv API and returns normalized records.
func (s *ArxivSource) Search(ctx context.Context, query string, maxResults int) ([]types.Record, error) {
	q := arxivQuery(query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	url := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var records []types.Record
	for _, entry := range feed.Entries {
		records = append(records, entry.record())
	}
	return records, nil
}

// arxivQuery converts free text into the all-fields search_query form
// ("all:term+term"). arXiv expects plus-joined terms, not URL escapes.
func arxivQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}
	return "all:" + strings.Join(terms, "+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Summary    string        `xml:"summary"`
	Published  string        `xml:"published"`
	JournalRef string        `xml:"journal_ref"`
	Authors    []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

func (e arxivEntry) record() types.Record {
	var names []string
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	year := ""
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		year = strconv.Itoa(t.Year())
	}
	return types.Record{
		Title:     strings.TrimSpace(e.Title),
		URL:       strings.TrimSpace(e.ID),
		Year:      year,
		Venue:     strings.TrimSpace(e.JournalRef),
		Authors:   strings.Join(names, ", "),
		Citations: 0,
		Abstract:  strings.TrimSpace(e.Summary),
	}
}
