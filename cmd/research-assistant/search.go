package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/rank"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search academic APIs for papers matching a query",
	Long: `Search queries academic APIs for papers matching a research question.
The default run aggregates the primary source with Google Scholar results,
drops cross-source duplicates by title, and enriches the scholar hits with
full metadata. Use --source to query a single source directly.

Results print as a table; --json and --csl switch the format, --rank orders
results by relevance, and --save writes a query file that rank and
knowledge add can reuse without re-querying the APIs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	cfg := searchConfigFromFlags(cmd)

	source, _ := cmd.Flags().GetString("source")
	engine, err := buildEngine(cfg, source, os.Stderr)
	if err != nil {
		return err
	}

	ctx := context.Background()
	records := engine.Search(ctx, query, cfg.MaxResults)

	doRank, _ := cmd.Flags().GetBool("rank")
	var scored []types.ScoredRecord
	if doRank {
		ranker := rank.NewRanker(rank.NewOllamaEmbedder(rankConfigFromFlags(cmd)))
		scored = ranker.Rank(ctx, query, records)
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		qf := search.NewQueryFile(query, cfg.MaxResults, records)
		qf.Ranked = scored
		if err := qf.Save(savePath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved query file: %s\n", savePath)
	}

	return writeSearchOutput(cmd, records, scored, doRank)
}

// buildEngine assembles the engine for the requested source. The default
// aggregates the primary source with enriched scholar results; a named
// source runs alone.
func buildEngine(cfg types.SearchConfig, source string, w io.Writer) (*search.Engine, error) {
	switch source {
	case "", "all":
		return search.NewEngine(cfg, w), nil
	case "semantic-scholar":
		primary := search.NewSemanticScholarSource(cfg)
		return &search.Engine{Primary: primary, Lookup: primary, Out: w}, nil
	case "arxiv":
		return &search.Engine{Primary: search.NewArxivSource(cfg), Out: w}, nil
	default:
		return nil, fmt.Errorf("unknown source %q: use all, semantic-scholar, or arxiv", source)
	}
}

func writeSearchOutput(cmd *cobra.Command, records []types.Record, scored []types.ScoredRecord, ranked bool) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	cslOut, _ := cmd.Flags().GetBool("csl")

	switch {
	case cslOut && ranked:
		return search.FormatCSL(scoredToRecords(scored), os.Stdout)
	case cslOut:
		return search.FormatCSL(records, os.Stdout)
	case jsonOut && ranked:
		return search.FormatScoredJSON(scored, os.Stdout)
	case jsonOut:
		return search.FormatJSON(records, os.Stdout)
	case ranked:
		search.FormatScoredTable(scored, os.Stdout)
	default:
		search.FormatTable(records, os.Stdout)
	}
	return nil
}

func scoredToRecords(scored []types.ScoredRecord) []types.Record {
	records := make([]types.Record, len(scored))
	for i, s := range scored {
		records[i] = s.Record
	}
	return records
}

// searchConfigFromFlags builds the retrieval config from flags, config file
// values, and loaded secrets. Flags win; API keys fall back to .secrets/.
func searchConfigFromFlags(cmd *cobra.Command) types.SearchConfig {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults == 0 {
		maxResults = viper.GetInt("search.max_results")
	}
	if maxResults == 0 {
		maxResults = 10
	}

	semKey, _ := cmd.Flags().GetString("semantic-scholar-api-key")
	serpKey, _ := cmd.Flags().GetString("serpapi-api-key")
	noEnrich, _ := cmd.Flags().GetBool("no-enrich")
	workers, _ := cmd.Flags().GetInt("enrich-workers")
	if workers == 0 {
		workers = viper.GetInt("search.enrich_workers")
	}
	userAgent := viper.GetString("search.user_agent")
	if userAgent == "" {
		userAgent = "research-assistant/" + version
	}

	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("search.timeout"),
			UserAgent: userAgent,
		},
		MaxResults:            maxResults,
		SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", semKey),
		SerpAPIKey:            secretDefault("serpapi-api-key", serpKey),
		EnrichSecondary:       !noEnrich,
		EnrichWorkers:         workers,
	}
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "maximum results per source (default 10)")
	searchCmd.Flags().String("source", "all", "source to query: all, semantic-scholar, or arxiv")
	searchCmd.Flags().Bool("rank", false, "order results by relevance to the query")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as CSL-YAML for Pandoc")
	searchCmd.Flags().String("save", "", "write a query file with the results")
	searchCmd.Flags().Bool("no-enrich", false, "skip the Google Scholar secondary source")
	searchCmd.Flags().Int("enrich-workers", 0, "enrichment worker pool size (default 5)")
	searchCmd.Flags().String("semantic-scholar-api-key", "", "Semantic Scholar API key (default: .secrets/semantic-scholar-api-key)")
	searchCmd.Flags().String("serpapi-api-key", "", "SerpAPI key for Google Scholar (default: .secrets/serpapi-api-key)")
	searchCmd.Flags().String("embedder-url", "", "embedding service base URL for --rank (default http://localhost:11434)")
	searchCmd.Flags().String("embedder-model", "", "embedding model for --rank (default nomic-embed-text)")

	rootCmd.AddCommand(searchCmd)
}
