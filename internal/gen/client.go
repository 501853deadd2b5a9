// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gen

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/responses"
	"github.com/openai/openai-go/v2/shared"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultModel = "gpt-4o-mini"

// Backend abstracts the Generative AI API so tests can supply a mock.
// Implementations take a rendered prompt and return the model's text.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIBackend completes prompts through the OpenAI Responses API.
type OpenAIBackend struct {
	client openai.Client
	model  string
}

var _ Backend = (*OpenAIBackend)(nil)

// NewOpenAIBackend builds a backend from generation config. An empty model
// falls back to the default.
func NewOpenAIBackend(cfg types.AIConfig) *OpenAIBackend {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAIBackend{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
	}
}

// Complete sends the prompt and returns the aggregated output text.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ChatModel(b.model),
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}

	text := resp.OutputText()
	if text == "" {
		return "", fmt.Errorf("OpenAI API returned empty output")
	}
	return text, nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the backend with exponential backoff.
func callWithRetry(ctx context.Context, backend Backend, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := backend.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
