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

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// scholarAPIBase is the SerpAPI search endpoint used for the Google Scholar
// engine. Declared as a var so tests can substitute an httptest server.
var scholarAPIBase = "https://serpapi.com/search.json"

// scholarPageCap is the largest page size the scholar engine serves.
const scholarPageCap = 20

// ScholarSource queries Google Scholar through SerpAPI. Scholar results are
// noisy (no year, no venue, authors as a display line), so the engine treats
// them as raw material for enrichment rather than finished records.
type ScholarSource struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
}

// NewScholarSource builds a source from config. SerpAPI rejects keyless
// requests, so callers should check cfg.SerpAPIKey before constructing.
func NewScholarSource(cfg types.SearchConfig) *ScholarSource {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ScholarSource{
		Client:    &http.Client{Timeout: timeout},
		APIKey:    cfg.SerpAPIKey,
		UserAgent: cfg.UserAgent,
	}
}

// Name returns the source identifier.
func (s *ScholarSource) Name() string { return "google_scholar" }

// Search pages through scholar results until the engine reports no further
// pages or the accumulated count reaches maxResults. Pagination follows the
// engine's own next-page URL: its query parameters are folded into the
// request parameters so the cursor never leaks past this adapter.
func (s *ScholarSource) Search(ctx context.Context, query string, maxResults int) ([]ScholarResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty scholar query")
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	num := maxResults
	if num > scholarPageCap {
		num = scholarPageCap
	}

	params := url.Values{
		"api_key": {s.APIKey},
		"engine":  {"google_scholar"},
		"q":       {query},
		"hl":      {"en"},
		"start":   {"0"},
		"num":     {strconv.Itoa(num)},
		"sort":    {"relevance"},
	}

	var results []ScholarResult
	for {
		page, next, err := s.fetchPage(ctx, params)
		if err != nil {
			return nil, err
		}
		results = append(results, page...)

		if next == "" || len(results) >= maxResults {
			break
		}
		nextURL, err := url.Parse(next)
		if err != nil {
			break
		}
		for key, vals := range nextURL.Query() {
			if len(vals) > 0 {
				params.Set(key, vals[0])
			}
		}
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func (s *ScholarSource) fetchPage(ctx context.Context, params url.Values) ([]ScholarResult, string, error) {
	reqURL := scholarAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, "", fmt.Errorf("scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr scholarResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, "", fmt.Errorf("parsing scholar response: %w", err)
	}

	page := make([]ScholarResult, 0, len(sr.Organic))
	for _, o := range sr.Organic {
		page = append(page, o.result())
	}
	return page, sr.Pagination.Next, nil
}

// ScholarResult is one raw organic result from the scholar engine. Only the
// fields the pipeline reads are decoded.
type ScholarResult struct {
	Title string
	Link  string
	// Summary is the publication_info display line, e.g.
	// "J Smith, A Jones - Nature, 2021 - nature.com".
	Summary string
	CitedBy int
	Snippet string
}

// Fallback builds the best-effort record used when the primary source cannot
// resolve this result. Scholar results carry no year or venue, so those stay
// empty and the authors field holds the raw display line.
func (r ScholarResult) Fallback() types.Record {
	return types.Record{
		Title:     r.Title,
		URL:       r.Link,
		Authors:   r.Summary,
		Citations: r.CitedBy,
		Abstract:  r.Snippet,
	}
}

// SerpAPI JSON structures.
type scholarResponse struct {
	Organic    []scholarOrganic  `json:"organic_results"`
	Pagination scholarPagination `json:"serpapi_pagination"`
}

type scholarPagination struct {
	Next string `json:"next"`
}

type scholarOrganic struct {
	Title           string             `json:"title"`
	Link            string             `json:"link"`
	Snippet         string             `json:"snippet"`
	PublicationInfo scholarPubInfo     `json:"publication_info"`
	InlineLinks     scholarInlineLinks `json:"inline_links"`
}

type scholarPubInfo struct {
	Summary string `json:"summary"`
}

type scholarInlineLinks struct {
	CitedBy scholarCitedBy `json:"cited_by"`
}

type scholarCitedBy struct {
	Total int `json:"total"`
}

func (o scholarOrganic) result() ScholarResult {
	cited := o.InlineLinks.CitedBy.Total
	if cited < 0 {
		cited = 0
	}
	return ScholarResult{
		Title:   o.Title,
		Link:    o.Link,
		Summary: o.PublicationInfo.Summary,
		CitedBy: cited,
		Snippet: o.Snippet,
	}
}
