// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries academic APIs and merges their results into a
// single normalized list. The primary source returns complete records;
// scholar results arrive raw and are upgraded by the enrichment pass
// before they join the output.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Source searches a single academic API and returns normalized records.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]types.Record, error)
}

// RawSource searches the scholar engine and returns raw results that still
// need enrichment before joining normalized output.
type RawSource interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]ScholarResult, error)
}

// Engine aggregates the primary source with enriched scholar results. A nil
// Secondary disables enrichment and the engine serves primary results alone.
type Engine struct {
	Primary   Source
	Secondary RawSource
	Lookup    TitleLookup
	Workers   int
	Out       io.Writer
}

// NewEngine wires an engine from config. The primary source doubles as the
// title lookup for enrichment. The scholar secondary is attached only when
// enrichment is enabled and a SerpAPI key is present.
func NewEngine(cfg types.SearchConfig, w io.Writer) *Engine {
	primary := NewSemanticScholarSource(cfg)
	e := &Engine{
		Primary: primary,
		Lookup:  primary,
		Workers: cfg.EnrichWorkers,
		Out:     w,
	}
	if cfg.EnrichSecondary {
		if cfg.SerpAPIKey != "" {
			e.Secondary = NewScholarSource(cfg)
		} else {
			zap.L().Debug("search: secondary source disabled, no serpapi key")
		}
	}
	return e
}

// Search returns primary records followed by enriched scholar records, in
// source order. It never fails: a source error becomes a warning on the
// engine's writer and the remaining sources still contribute. The returned
// slice is never nil. maxResults caps each source independently; zero or
// negative asks for nothing and returns an empty list without touching any
// source.
func (e *Engine) Search(ctx context.Context, query string, maxResults int) []types.Record {
	out := []types.Record{}
	if maxResults <= 0 {
		return out
	}

	primary, err := e.Primary.Search(ctx, query, maxResults)
	if err != nil {
		e.warnSource(e.Primary.Name(), err)
		primary = nil
	}
	out = append(out, primary...)

	if e.Secondary == nil {
		return out
	}

	raw, err := e.Secondary.Search(ctx, query, maxResults)
	if err != nil {
		e.warnSource(e.Secondary.Name(), err)
		return out
	}
	return append(out, Enrich(ctx, raw, primary, e.Lookup, e.Workers)...)
}

func (e *Engine) warnSource(name string, err error) {
	w := e.Out
	if w == nil {
		w = io.Discard
	}
	fmt.Fprintf(w, "warning: source %s failed: %v\n", name, err)
	zap.L().Warn("search: source failed",
		zap.String("source", name),
		zap.Error(err))
}

// FormatTable writes records as a human-readable table to w.
func FormatTable(records []types.Record, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Cites", "Venue")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, r := range records {
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-6d  %s\n",
			i+1, truncate(r.Title, 60), formatAuthors(r.Authors), r.Year, r.Citations, r.Venue)
	}

	fmt.Fprintf(w, "\n%d results\n", len(records))
}

// FormatScoredTable writes ranked records with their blended scores.
func FormatScoredTable(scored []types.ScoredRecord, w io.Writer) {
	if len(scored) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-4s  %-6s  %-6s  %s\n",
		"Rank", "Title", "Year", "Cites", "Score", "Venue")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, s := range scored {
		fmt.Fprintf(w, "%-4d  %-60s  %-4s  %-6d  %-6.3f  %s\n",
			i+1, truncate(s.Title, 60), s.Year, s.Citations, s.RelevanceScore, s.Venue)
	}

	fmt.Fprintf(w, "\n%d results\n", len(scored))
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(records []types.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// FormatScoredJSON writes ranked records as indented JSON to w.
func FormatScoredJSON(scored []types.ScoredRecord, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(scored)
}

// formatAuthors reduces a comma-joined author list to a short display form.
// Scholar fallback lines ("J Smith, A Jones - Nature, 2021") are trimmed at
// the first dash segment.
func formatAuthors(authors string) string {
	parts := strings.Split(authors, ",")
	first := strings.TrimSpace(parts[0])
	if i := strings.Index(first, " - "); i >= 0 {
		first = first[:i]
	}
	if len(parts) > 1 {
		return truncate(first, 14) + " et al."
	}
	return truncate(first, 20)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
