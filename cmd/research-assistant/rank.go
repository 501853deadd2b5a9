package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/rank"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank [query]",
	Short: "Rank saved search results by relevance",
	Long: `Rank orders the results of a saved query file by blended relevance:
semantic and lexical similarity to the query, citation weight, and recency.
The query defaults to the one stored in the file; pass a different one as
an argument to rank against it instead.

Ranked results print as a table; --write stores them back into the query
file for later runs.`,
	RunE: runRank,
}

func runRank(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	if from == "" {
		return fmt.Errorf("--from query file required: run search --save first")
	}

	qf, err := search.ReadQueryFile(from)
	if err != nil {
		return err
	}

	query := qf.Query
	if len(args) > 0 {
		query = strings.Join(args, " ")
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query file %s has no query: pass one as an argument", from)
	}

	ranker := rank.NewRanker(rank.NewOllamaEmbedder(rankConfigFromFlags(cmd)))
	scored := ranker.Rank(context.Background(), query, qf.Results)

	if write, _ := cmd.Flags().GetBool("write"); write {
		qf.Ranked = scored
		if err := qf.Save(from); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Updated query file: %s\n", from)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	cslOut, _ := cmd.Flags().GetBool("csl")
	switch {
	case cslOut:
		return search.FormatCSL(scoredToRecords(scored), os.Stdout)
	case jsonOut:
		return search.FormatScoredJSON(scored, os.Stdout)
	default:
		search.FormatScoredTable(scored, os.Stdout)
	}
	return nil
}

// rankConfigFromFlags builds the ranking config from flags with config file
// fallbacks. The embedder itself fills in defaults for anything left unset.
func rankConfigFromFlags(cmd *cobra.Command) types.RankConfig {
	baseURL, _ := cmd.Flags().GetString("embedder-url")
	if baseURL == "" {
		baseURL = viper.GetString("rank.embedder_base_url")
	}
	model, _ := cmd.Flags().GetString("embedder-model")
	if model == "" {
		model = viper.GetString("rank.embedder_model")
	}

	return types.RankConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout: viper.GetDuration("rank.timeout"),
		},
		EmbedderBaseURL: baseURL,
		EmbedderModel:   model,
	}
}

func init() {
	rankCmd.Flags().String("from", "", "query file to rank (from search --save)")
	rankCmd.Flags().Bool("write", false, "store the ranked list back into the query file")
	rankCmd.Flags().Bool("json", false, "output ranked results as JSON")
	rankCmd.Flags().Bool("csl", false, "output ranked results as CSL-YAML for Pandoc")
	rankCmd.Flags().String("embedder-url", "", "embedding service base URL (default http://localhost:11434)")
	rankCmd.Flags().String("embedder-model", "", "embedding model (default nomic-embed-text)")

	rootCmd.AddCommand(rankCmd)
}
