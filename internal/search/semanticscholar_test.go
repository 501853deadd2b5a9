// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleSemanticJSON = `{
  "total": 2,
  "offset": 0,
  "data": [
    {
      "title": "Attention Is All You Need",
      "year": 2017,
      "venue": "NeurIPS",
      "url": "https://www.semanticscholar.org/paper/attention",
      "abstract": "We propose a new architecture.",
      "citationCount": 90000,
      "authors": [
        {"authorId": "1", "name": "Ashish Vaswani"},
        {"authorId": "2", "name": "Noam Shazeer"}
      ]
    },
    {
      "title": "An Unpublished Draft",
      "year": null,
      "venue": "",
      "url": "https://www.semanticscholar.org/paper/draft",
      "abstract": "",
      "citationCount": 0,
      "authors": []
    }
  ]
}`

func TestSemanticScholarSourceSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("fields") != semanticFields {
			t.Errorf("fields = %q, want %q", q.Get("fields"), semanticFields)
		}
		if q.Get("limit") != "7" {
			t.Errorf("limit = %q, want 7", q.Get("limit"))
		}
		if r.Header.Get("x-api-key") != "s2-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleSemanticJSON)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	s := &SemanticScholarSource{Client: ts.Client(), APIKey: "s2-key"}
	records, err := s.Search(context.Background(), "attention", 7)
	if err != nil {
		t.Fatalf("SemanticScholarSource.Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	r0 := records[0]
	if r0.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", r0.Title)
	}
	if r0.Year != "2017" {
		t.Errorf("Year = %q, want 2017", r0.Year)
	}
	if r0.Venue != "NeurIPS" {
		t.Errorf("Venue = %q", r0.Venue)
	}
	if r0.Authors != "Ashish Vaswani, Noam Shazeer" {
		t.Errorf("Authors = %q", r0.Authors)
	}
	if r0.Citations != 90000 {
		t.Errorf("Citations = %d", r0.Citations)
	}

	// Null year must become the empty string, never "0".
	r1 := records[1]
	if r1.Year != "" {
		t.Errorf("null year mapped to %q, want empty", r1.Year)
	}
	if r1.Authors != "" {
		t.Errorf("empty author list mapped to %q, want empty", r1.Authors)
	}
}

func TestSemanticScholarSourceEmptyQuery(t *testing.T) {
	s := &SemanticScholarSource{Client: http.DefaultClient}
	if _, err := s.Search(context.Background(), "   ", 5); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestSemanticScholarSourceHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	s := &SemanticScholarSource{Client: ts.Client()}
	_, err := s.Search(context.Background(), "attention", 5)
	if err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("expected HTTP 500 error, got: %v", err)
	}
}

func TestSemanticScholarLookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("limit = %q, want 1", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleSemanticJSON)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	s := &SemanticScholarSource{Client: ts.Client()}
	rec, ok := s.Lookup(context.Background(), "Attention Is All You Need")
	if !ok {
		t.Fatal("Lookup should find the paper")
	}
	if rec.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", rec.Title)
	}
}

func TestSemanticScholarLookupMiss(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total": 0, "offset": 0, "data": []}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	s := &SemanticScholarSource{Client: ts.Client()}
	if _, ok := s.Lookup(context.Background(), "Nonexistent Paper"); ok {
		t.Error("Lookup should report not found for empty data")
	}
}

func TestSemanticScholarLookupErrorIsMiss(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	s := &SemanticScholarSource{Client: ts.Client()}
	if _, ok := s.Lookup(context.Background(), "Any Paper"); ok {
		t.Error("Lookup should swallow API errors and report not found")
	}
}
