// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// QueryFile is the on-disk representation of a search query and its results.
// The researcher can save a search to a file and rank or import it later
// without re-querying APIs. The ranked section is filled in only after a
// ranking pass.
type QueryFile struct {
	Query      string               `yaml:"query"`
	MaxResults int                  `yaml:"max_results"`
	Results    []types.Record       `yaml:"results"`
	Ranked     []types.ScoredRecord `yaml:"ranked,omitempty"`
	Summary    QuerySummary         `yaml:"summary"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// NewQueryFile bundles a finished search for saving.
func NewQueryFile(query string, maxResults int, records []types.Record) *QueryFile {
	return &QueryFile{
		Query:      query,
		MaxResults: maxResults,
		Results:    records,
		Summary: QuerySummary{
			Total:     len(records),
			Timestamp: time.Now().UTC(),
		},
	}
}

// Save writes the query file as YAML.
func (qf *QueryFile) Save(path string) error {
	data, err := yaml.Marshal(qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
