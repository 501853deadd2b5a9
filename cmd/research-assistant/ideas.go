package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/gen"
	"github.com/pdiddy/research-assistant/internal/knowledge"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var ideasCmd = &cobra.Command{
	Use:   "ideas [topic]",
	Short: "Generate research ideas for a topic",
	Long: `Ideas asks the generation model for novel research directions on a topic.
When the knowledge base holds papers matching the topic, they ground the
prompt and each idea names the library papers it builds on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIdeas,
}

func runIdeas(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")

	backend, cfg, err := generationBackend(cmd)
	if err != nil {
		return err
	}
	if count, _ := cmd.Flags().GetInt("count"); count > 0 {
		cfg.IdeaCount = count
	}

	papers := contextPapers(cmd, topic)

	ideas, err := gen.GenerateIdeas(context.Background(), backend, topic, papers, cfg)
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ideas)
	}

	for i, idea := range ideas {
		if i > 0 {
			fmt.Println()
		}
		if idea.Title != "" {
			fmt.Printf("Idea %d: %s\n", i+1, idea.Title)
		} else {
			fmt.Printf("Idea %d:\n", i+1)
		}
		if idea.Summary != "" {
			fmt.Printf("  %s\n", idea.Summary)
		}
		if len(idea.Sources) > 0 {
			fmt.Printf("  Sources: %s\n", strings.Join(idea.Sources, "; "))
		}
		if idea.Rationale != "" {
			fmt.Printf("  Rationale: %s\n", idea.Rationale)
		}
	}
	return nil
}

// contextPapers pulls library papers matching the topic to ground the
// prompt. A missing library or a failed lookup is not an error; ideas
// still generate, just without local grounding.
func contextPapers(cmd *cobra.Command, topic string) []types.LibraryEntry {
	knowledgeDir, _ := cmd.Flags().GetString("knowledge-dir")
	if knowledgeDir == "" {
		knowledgeDir = viper.GetString("knowledge_base.knowledge_dir")
	}
	if knowledgeDir == "" {
		knowledgeDir = "knowledge"
	}
	if _, err := os.Stat(knowledgeDir); os.IsNotExist(err) {
		return nil
	}

	store, err := knowledge.NewStore(types.KnowledgeBaseConfig{KnowledgeDir: knowledgeDir})
	if err != nil {
		zap.L().Debug("ideas: library open failed", zap.Error(err))
		return nil
	}
	defer store.Close()

	papers, err := store.Retrieve(context.Background(), knowledge.QueryOptions{Query: topic})
	if err != nil {
		zap.L().Debug("ideas: library lookup failed", zap.Error(err))
		return nil
	}
	return papers
}

// --- generation helpers (shared with draft) ---

// generationBackend builds the AI backend for a generation command, failing
// fast when no API key is configured.
func generationBackend(cmd *cobra.Command) (gen.Backend, types.GenerationConfig, error) {
	cfg := generationConfigFromFlags(cmd)
	if cfg.APIKey == "" {
		return nil, cfg, fmt.Errorf("OpenAI API key required: add .secrets/openai-api-key or pass --openai-api-key")
	}
	return gen.NewOpenAIBackend(cfg.AIConfig), cfg, nil
}

// generationConfigFromFlags builds the generation config from flags, config
// file values, and loaded secrets.
func generationConfigFromFlags(cmd *cobra.Command) types.GenerationConfig {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("generation.model")
	}
	apiKey, _ := cmd.Flags().GetString("openai-api-key")

	return types.GenerationConfig{
		AIConfig: types.AIConfig{
			Model:      model,
			APIKey:     secretDefault("openai-api-key", apiKey),
			MaxRetries: viper.GetInt("generation.max_retries"),
		},
		OutputDir: viper.GetString("generation.output_dir"),
		IdeaCount: viper.GetInt("generation.idea_count"),
	}
}

func init() {
	ideasCmd.Flags().Int("count", 0, "number of ideas to generate (default 3)")
	ideasCmd.Flags().String("model", "", "AI model identifier (default gpt-4o-mini)")
	ideasCmd.Flags().String("openai-api-key", "", "OpenAI API key (default: .secrets/openai-api-key)")
	ideasCmd.Flags().String("knowledge-dir", "", "library directory for grounding papers (default knowledge)")
	ideasCmd.Flags().Bool("json", false, "output ideas as JSON")

	rootCmd.AddCommand(ideasCmd)
}
