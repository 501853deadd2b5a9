// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	// DefaultEmbedderBaseURL is the local Ollama daemon.
	DefaultEmbedderBaseURL = "http://localhost:11434"

	// DefaultEmbedderModel is the default embedding model.
	DefaultEmbedderModel = "nomic-embed-text"

	// embedConcurrency bounds concurrent embedding requests in a batch.
	embedConcurrency = 4
)

// Embedder turns text into dense vectors for semantic similarity.
type Embedder interface {
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch returns embeddings in the same order as the input texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// ModelName identifies the model for logging.
	ModelName() string
}

// OllamaEmbedder computes embeddings through a local Ollama daemon.
type OllamaEmbedder struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

// NewOllamaEmbedder builds an embedder from config, filling in defaults for
// anything unset.
func NewOllamaEmbedder(cfg types.RankConfig) *OllamaEmbedder {
	baseURL := cfg.EmbedderBaseURL
	if baseURL == "" {
		baseURL = DefaultEmbedderBaseURL
	}
	model := cfg.EmbedderModel
	if model == "" {
		model = DefaultEmbedderModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OllamaEmbedder{
		BaseURL: baseURL,
		Model:   model,
		Client:  &http.Client{Timeout: timeout},
	}
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed requests a single embedding.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.Model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedder request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedder returned HTTP %d: %s", resp.StatusCode, msg)
	}

	var er ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing embedder response: %w", err)
	}
	if len(er.Embedding) == 0 {
		return nil, fmt.Errorf("embedder returned an empty vector")
	}
	return er.Embedding, nil
}

// EmbedBatch embeds texts concurrently, preserving input order. The first
// failure cancels the remaining requests.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	vecs := make([][]float64, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			vec, err := e.Embed(ctx, text)
			if err != nil {
				return fmt.Errorf("embedding text %d: %w", i, err)
			}
			vecs[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vecs, nil
}

// ModelName identifies the model for logging.
func (e *OllamaEmbedder) ModelName() string { return e.Model }

var _ Embedder = (*OllamaEmbedder)(nil)
