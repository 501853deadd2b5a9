// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleScholarPage = `{
  "organic_results": [
    {
      "title": "Scaling Laws for Neural Language Models",
      "link": "https://scholar.example/scaling",
      "snippet": "We study empirical scaling laws.",
      "publication_info": {"summary": "J Kaplan, S McCandlish - arXiv, 2020 - arxiv.org"},
      "inline_links": {"cited_by": {"total": 4521}}
    }
  ]
}`

func TestScholarSourceSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("engine") != "google_scholar" {
			t.Errorf("engine = %q, want google_scholar", q.Get("engine"))
		}
		if q.Get("api_key") != "test-key" {
			t.Errorf("api_key = %q", q.Get("api_key"))
		}
		if q.Get("hl") != "en" || q.Get("sort") != "relevance" {
			t.Errorf("unexpected params: hl=%q sort=%q", q.Get("hl"), q.Get("sort"))
		}
		if q.Get("num") != "5" {
			t.Errorf("num = %q, want 5", q.Get("num"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleScholarPage)
	}))
	defer ts.Close()

	old := scholarAPIBase
	scholarAPIBase = ts.URL
	defer func() { scholarAPIBase = old }()

	s := &ScholarSource{Client: ts.Client(), APIKey: "test-key"}
	results, err := s.Search(context.Background(), "scaling laws", 5)
	if err != nil {
		t.Fatalf("ScholarSource.Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	r := results[0]
	if r.Title != "Scaling Laws for Neural Language Models" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.Link != "https://scholar.example/scaling" {
		t.Errorf("Link = %q", r.Link)
	}
	if r.Summary != "J Kaplan, S McCandlish - arXiv, 2020 - arxiv.org" {
		t.Errorf("Summary = %q", r.Summary)
	}
	if r.CitedBy != 4521 {
		t.Errorf("CitedBy = %d, want 4521", r.CitedBy)
	}
	if r.Snippet != "We study empirical scaling laws." {
		t.Errorf("Snippet = %q", r.Snippet)
	}
}

func TestScholarSourcePagination(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")

		switch q.Get("start") {
		case "0":
			resp := map[string]any{
				"organic_results": []map[string]any{
					{"title": "Paper 1"},
					{"title": "Paper 2"},
				},
				"serpapi_pagination": map[string]any{
					// The engine hands back a fully-formed next URL; only
					// its query parameters matter to the client.
					"next": "https://serpapi.com/search.json?start=2&cursor=abc",
				},
			}
			json.NewEncoder(w).Encode(resp)
		case "2":
			// Folded parameters from the next URL must coexist with the
			// originals.
			if q.Get("cursor") != "abc" {
				t.Errorf("cursor = %q, want abc", q.Get("cursor"))
			}
			if q.Get("api_key") != "test-key" || q.Get("q") != "transformers" {
				t.Errorf("original params lost: api_key=%q q=%q", q.Get("api_key"), q.Get("q"))
			}
			resp := map[string]any{
				"organic_results": []map[string]any{
					{"title": "Paper 3"},
				},
			}
			json.NewEncoder(w).Encode(resp)
		default:
			t.Errorf("unexpected start = %q", q.Get("start"))
		}
	}))
	defer ts.Close()

	old := scholarAPIBase
	scholarAPIBase = ts.URL
	defer func() { scholarAPIBase = old }()

	s := &ScholarSource{Client: ts.Client(), APIKey: "test-key"}
	results, err := s.Search(context.Background(), "transformers", 5)
	if err != nil {
		t.Fatalf("ScholarSource.Search: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[2].Title != "Paper 3" {
		t.Errorf("results[2].Title = %q", results[2].Title)
	}
}

func TestScholarSourceStopsAtMaxResults(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		resp := map[string]any{
			"organic_results": []map[string]any{
				{"title": "Paper 1"},
				{"title": "Paper 2"},
				{"title": "Paper 3"},
			},
			"serpapi_pagination": map[string]any{
				"next": "https://serpapi.com/search.json?start=3",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	old := scholarAPIBase
	scholarAPIBase = ts.URL
	defer func() { scholarAPIBase = old }()

	s := &ScholarSource{Client: ts.Client()}
	results, err := s.Search(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("ScholarSource.Search: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (max reached after first page)", calls)
	}
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2 (truncated to max)", len(results))
	}
}

func TestScholarSourceHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "Invalid API key"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	old := scholarAPIBase
	scholarAPIBase = ts.URL
	defer func() { scholarAPIBase = old }()

	s := &ScholarSource{Client: ts.Client(), APIKey: "bad"}
	_, err := s.Search(context.Background(), "q", 5)
	if err == nil || !strings.Contains(err.Error(), "HTTP 401") {
		t.Errorf("expected HTTP 401 error, got: %v", err)
	}
}

func TestScholarSourceEmptyQuery(t *testing.T) {
	s := &ScholarSource{Client: http.DefaultClient}
	if _, err := s.Search(context.Background(), "  ", 5); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestScholarFallbackRecord(t *testing.T) {
	r := ScholarResult{
		Title:   "Some Paper",
		Link:    "https://scholar.example/p",
		Summary: "A Author, B Author - Venue, 2019",
		CitedBy: 12,
		Snippet: "Abstract text.",
	}
	rec := r.Fallback()

	if rec.Title != "Some Paper" || rec.URL != "https://scholar.example/p" {
		t.Errorf("Fallback = %+v", rec)
	}
	if rec.Authors != "A Author, B Author - Venue, 2019" {
		t.Errorf("Authors = %q", rec.Authors)
	}
	if rec.Citations != 12 || rec.Abstract != "Abstract text." {
		t.Errorf("Fallback = %+v", rec)
	}
	if rec.Year != "" || rec.Venue != "" {
		t.Errorf("year/venue should stay empty, got %+v", rec)
	}
}
