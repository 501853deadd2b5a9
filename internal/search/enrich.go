// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/similarity"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// defaultEnrichWorkers bounds concurrent title lookups during enrichment.
const defaultEnrichWorkers = 5

// Enrichment delay bounds. Each lookup sleeps a random duration in this
// range so concurrent workers do not hammer the primary API in lockstep.
// Vars so tests can zero them.
var (
	enrichDelayMin = 800 * time.Millisecond
	enrichDelayMax = 1500 * time.Millisecond
)

// TitleLookup resolves a paper title to its canonical record. The found
// flag is false when the backing source errors or has no match; enrichment
// treats both the same way and falls back to the raw result.
type TitleLookup interface {
	Lookup(ctx context.Context, title string) (types.Record, bool)
}

// Enrich upgrades raw scholar results to full records. Results whose titles
// duplicate a record already in primary are dropped first; each survivor is
// then resolved against lookup by at most workers goroutines. A resolution
// is adopted only when the returned title matches the scholar title at or
// above the duplicate threshold, otherwise the raw result's fallback record
// is used. Output order matches input order regardless of which lookups
// finish first, and one failed lookup never disturbs the others.
func Enrich(ctx context.Context, raw []ScholarResult, primary []types.Record, lookup TitleLookup, workers int) []types.Record {
	if workers <= 0 {
		workers = defaultEnrichWorkers
	}

	var unique []ScholarResult
	for _, r := range raw {
		if !similarity.IsDuplicate(r.Title, primary) {
			unique = append(unique, r)
		}
	}
	if len(unique) == 0 {
		return nil
	}
	if dropped := len(raw) - len(unique); dropped > 0 {
		zap.L().Debug("search: dropped duplicate scholar results",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(unique)))
	}

	// Fixed-size output with index-addressed slots keeps ordering stable
	// under concurrency.
	enriched := make([]types.Record, len(unique))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, r := range unique {
		wg.Add(1)
		go func(i int, r ScholarResult) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				enriched[i] = r.Fallback()
				return
			}
			defer func() { <-sem }()
			enriched[i] = enrichOne(ctx, r, lookup)
		}(i, r)
	}
	wg.Wait()
	return enriched
}

// enrichOne resolves a single scholar result. The throttle runs before the
// lookup so even a saturated pool spreads its requests out.
func enrichOne(ctx context.Context, r ScholarResult, lookup TitleLookup) types.Record {
	throttle(ctx)
	if ctx.Err() != nil {
		return r.Fallback()
	}
	rec, ok := lookup.Lookup(ctx, r.Title)
	if ok && similarity.Ratio(rec.Title, r.Title) >= similarity.DuplicateThreshold {
		return rec
	}
	if ok {
		zap.L().Debug("search: lookup hit rejected as too dissimilar",
			zap.String("scholar_title", r.Title),
			zap.String("lookup_title", rec.Title))
	}
	return r.Fallback()
}

func throttle(ctx context.Context) {
	span := enrichDelayMax - enrichDelayMin
	delay := enrichDelayMin
	if span > 0 {
		delay += time.Duration(rand.Int63n(int64(span) + 1))
	}
	if delay <= 0 {
		return
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
