// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// LibraryEntry is a paper saved into the knowledge base. Entries come from
// search results the researcher explicitly keeps; the search pipeline itself
// never writes them.
type LibraryEntry struct {
	// ID is the library identifier, "paper_" followed by a UUID.
	ID string `json:"id" yaml:"id"`

	// Record carries the paper's bibliographic fields.
	Record `yaml:",inline"`

	// Topics are lowercase topic labels attached at ingest time.
	Topics []string `json:"topics,omitempty" yaml:"topics,omitempty"`

	// Query is the search query that produced this entry, for provenance.
	Query string `json:"query,omitempty" yaml:"query,omitempty"`

	// AddedAt is the ingestion timestamp.
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}
