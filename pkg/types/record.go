// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-assistant pipeline.
package types

// Record is the canonical unit flowing through the retrieval pipeline.
// Every source adapter maps its native response onto exactly these seven
// fields before the record leaves the adapter; missing fields carry their
// documented empty value, never a sentinel.
type Record struct {
	// Title is the paper title. It is the sole identity key for
	// deduplication and enrichment matching; no other identifier is
	// assumed stable across sources.
	Title string `json:"title" yaml:"title"`

	// URL points at the source's landing page for the paper. May be empty.
	URL string `json:"url" yaml:"url"`

	// Year is the publication year as a string. Empty means unknown.
	Year string `json:"year" yaml:"year"`

	// Venue is the journal or conference name. May be empty.
	Venue string `json:"venue" yaml:"venue"`

	// Authors is the comma-joined display form of the author list. May be empty.
	Authors string `json:"authors" yaml:"authors"`

	// Citations is the citation count. Sources that omit or garble the
	// count normalize it to 0 here so scoring can treat it uniformly.
	Citations int `json:"citations" yaml:"citations"`

	// Abstract is the paper abstract or snippet. May be empty.
	Abstract string `json:"abstract" yaml:"abstract"`
}

// ScoredRecord is a Record augmented with ranking scores. The embedded
// Record fields are copied, never mutated in place.
type ScoredRecord struct {
	Record `yaml:",inline"`

	// SimilarityScore combines semantic and lexical similarity to the query.
	SimilarityScore float64 `json:"similarity_score" yaml:"similarity_score"`

	// CitationScore is log-scaled citation weight, always >= 0.
	CitationScore float64 `json:"citation_score" yaml:"citation_score"`

	// RecencyScore is in (0,1] for known years (1 = current year) and 0
	// when the year is unknown.
	RecencyScore float64 `json:"recency_score" yaml:"recency_score"`

	// RelevanceScore is the weighted blend of the three scores above and
	// the sort key for ranked output.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}
