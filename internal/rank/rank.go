// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders search results by relevance to the query. Each record
// gets a hybrid similarity score (dense embeddings blended with TF-IDF), a
// citation score, and a recency score, combined into a single relevance
// score used for the final ordering.
package rank

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Similarity blend weights: dense embeddings carry most of the signal,
// TF-IDF the rest.
const (
	semanticWeight = 0.75
	lexicalWeight  = 1 - semanticWeight
)

// Relevance blend weights.
const (
	similarityWeight = 0.6
	citationWeight   = 0.25
	recencyWeight    = 0.15
)

// Ranker scores and orders records. The zero value is not usable; construct
// with NewRanker.
type Ranker struct {
	Embedder Embedder

	// Now supplies the clock for recency scoring. Tests pin it.
	Now func() time.Time
}

// NewRanker builds a ranker around an embedder.
func NewRanker(embedder Embedder) *Ranker {
	return &Ranker{Embedder: embedder, Now: time.Now}
}

// Rank returns the records ordered by descending relevance to the query,
// each carrying its component scores. The input is not modified. Ranking
// never fails: if the embedder is unreachable the semantic channel drops to
// zero and lexical similarity carries the ordering alone. Records with
// equal relevance keep their input order.
func (r *Ranker) Rank(ctx context.Context, query string, records []types.Record) []types.ScoredRecord {
	scored := make([]types.ScoredRecord, 0, len(records))
	if len(records) == 0 {
		return scored
	}

	docs := make([]string, len(records))
	for i, rec := range records {
		docs[i] = rec.Title + ". " + rec.Abstract
	}

	semantic := r.semanticSimilarities(ctx, query, docs)
	lexical := lexicalSimilarities(query, docs)
	year := r.Now().Year()

	for i, rec := range records {
		s := types.ScoredRecord{Record: rec}
		s.SimilarityScore = semanticWeight*semantic[i] + lexicalWeight*lexical[i]
		s.CitationScore = math.Log1p(float64(rec.Citations) / 10)
		s.RecencyScore = recencyScore(rec.Year, year)
		s.RelevanceScore = similarityWeight*s.SimilarityScore +
			citationWeight*s.CitationScore +
			recencyWeight*s.RecencyScore
		scored = append(scored, s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})
	return scored
}

// semanticSimilarities embeds the query and documents in one batch and
// returns the cosine similarity of each document to the query. On embedder
// failure every similarity is zero and the caller's lexical channel has to
// carry the ranking.
func (r *Ranker) semanticSimilarities(ctx context.Context, query string, docs []string) []float64 {
	sims := make([]float64, len(docs))

	texts := make([]string, 0, len(docs)+1)
	texts = append(texts, query)
	texts = append(texts, docs...)

	vecs, err := r.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		zap.L().Warn("rank: embedder unavailable, semantic scores zeroed",
			zap.String("model", r.Embedder.ModelName()),
			zap.Error(err))
		return sims
	}

	qvec := vecs[0]
	for i, vec := range vecs[1:] {
		sims[i] = cosine(qvec, vec)
	}
	return sims
}

// recencyScore favours recent publications: this year scores 1.0 and each
// year of age shaves the denominator. Records with no usable year score 0
// so unknown ages are never mistaken for fresh ones.
func recencyScore(yearField string, currentYear int) float64 {
	if yearField == "" {
		return 0
	}
	year, err := strconv.Atoi(yearField)
	if err != nil {
		return 0
	}
	age := currentYear - year
	if age < 0 {
		// Venues sometimes post-date proceedings; treat the future as now.
		age = 0
	}
	return 1 / (1 + 0.1*float64(age))
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dp, na, nb float64
	for i := range a {
		dp += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dp / (math.Sqrt(na) * math.Sqrt(nb))
}
