package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-assistant/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the retrieval stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results per search (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits
	// on the primary source.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// SerpAPIKey authenticates the scholar source. Without it the
	// secondary source is skipped and searches run primary-only.
	SerpAPIKey string `json:"serpapi_key,omitempty" yaml:"serpapi_key,omitempty"`

	// EnrichSecondary controls whether scholar results are cross-checked
	// against the primary source (default true).
	EnrichSecondary bool `json:"enrich_secondary" yaml:"enrich_secondary"`

	// EnrichWorkers bounds the enrichment worker pool (default 5).
	EnrichWorkers int `json:"enrich_workers" yaml:"enrich_workers"`
}

// RankConfig holds settings for the ranking stage.
type RankConfig struct {
	HTTPConfig `yaml:",inline"`

	// EmbedderBaseURL is the base URL of the embedding service
	// (default "http://localhost:11434").
	EmbedderBaseURL string `json:"embedder_base_url" yaml:"embedder_base_url"`

	// EmbedderModel is the embedding model name (default "nomic-embed-text").
	EmbedderModel string `json:"embedder_model" yaml:"embedder_model"`
}

// KnowledgeBaseConfig holds settings for the paper library.
type KnowledgeBaseConfig struct {
	// KnowledgeDir is the base directory for the library (contains index/).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// GenerationConfig holds settings for idea generation and drafting.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// OutputDir is the directory for generated drafts (e.g. "output/drafts/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// IdeaCount is the default number of research ideas to generate (default 3).
	IdeaCount int `json:"idea_count" yaml:"idea_count"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Search        SearchConfig        `json:"search" yaml:"search"`
	Rank          RankConfig          `json:"rank" yaml:"rank"`
	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base" yaml:"knowledge_base"`
	Generation    GenerationConfig    `json:"generation" yaml:"generation"`
}
