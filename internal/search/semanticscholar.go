// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,year,venue,authors,url,abstract,citationCount"

// SemanticScholarSource queries the Semantic Scholar Graph API. It is the
// primary source: its records carry every field of types.Record, so
// secondary results are cross-checked against it during enrichment.
type SemanticScholarSource struct {
	Client    *http.Client
	APIKey    string
	UserAgent string

	// limiter spaces requests to stay under the public API ceiling.
	// Nil means no limiting (bare structs in tests).
	limiter *rate.Limiter
}

// NewSemanticScholarSource builds a source from config. An API key raises
// the rate ceiling but is not required.
func NewSemanticScholarSource(cfg types.SearchConfig) *SemanticScholarSource {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SemanticScholarSource{
		Client:    &http.Client{Timeout: timeout},
		APIKey:    cfg.SemanticScholarAPIKey,
		UserAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Name returns the source identifier.
func (s *SemanticScholarSource) Name() string { return "semantic_scholar" }

// Search queries the paper search endpoint and returns normalized records.
func (s *SemanticScholarSource) Search(ctx context.Context, query string, maxResults int) ([]types.Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(maxResults)},
		"fields": {semanticFields},
	}
	reqURL := semanticAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	var records []types.Record
	for _, paper := range sr.Data {
		records = append(records, paper.record())
	}
	return records, nil
}

// Lookup resolves a title to its canonical record by searching with the
// title as the query and taking the top hit. The found flag is false when
// the API errors or returns nothing; callers decide what to fall back to.
func (s *SemanticScholarSource) Lookup(ctx context.Context, title string) (types.Record, bool) {
	records, err := s.Search(ctx, title, 1)
	if err != nil {
		zap.L().Debug("search: title lookup failed",
			zap.String("title", title),
			zap.Error(err))
		return types.Record{}, false
	}
	if len(records) == 0 {
		return types.Record{}, false
	}
	return records[0], true
}

func (s *SemanticScholarSource) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	Title         string           `json:"title"`
	Year          int              `json:"year"`
	Venue         string           `json:"venue"`
	URL           string           `json:"url"`
	Abstract      string           `json:"abstract"`
	CitationCount int              `json:"citationCount"`
	Authors       []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// record maps an API paper onto the normalized seven-field shape. Missing
// fields stay empty strings; a null year becomes "" rather than "0".
func (p semanticPaper) record() types.Record {
	var names []string
	for _, a := range p.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	year := ""
	if p.Year > 0 {
		year = strconv.Itoa(p.Year)
	}
	citations := p.CitationCount
	if citations < 0 {
		citations = 0
	}
	return types.Record{
		Title:     p.Title,
		URL:       p.URL,
		Year:      year,
		Venue:     p.Venue,
		Authors:   strings.Join(names, ", "),
		Citations: citations,
		Abstract:  p.Abstract,
	}
}
