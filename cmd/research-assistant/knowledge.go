// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/knowledge"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the paper library (add, retrieve, export)",
	Long: `Knowledge manages a local SQLite library of papers kept from past
searches. Use subcommands to add saved search results, query the library
with full-text search and filters, or export it.`,
}

// --- add subcommand ---

var knowledgeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add saved search results to the library",
	Long: `Add ingests the results of a saved query file into the library.
Records whose titles closely match an existing entry are skipped, so
re-adding an overlapping search is safe.`,
	RunE: runKnowledgeAdd,
}

func runKnowledgeAdd(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	if from == "" {
		return fmt.Errorf("--from query file required: run search --save first")
	}

	qf, err := search.ReadQueryFile(from)
	if err != nil {
		return err
	}

	store, err := knowledge.NewStore(knowledgeConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Add(context.Background(), qf.Results, qf.Query, os.Stdout)
	return err
}

// --- retrieve subcommand ---

var knowledgeRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the library with full-text search and filters",
	Long: `Retrieve searches the library using full-text search over titles and
abstracts, structured filters (year, venue, topic), or a combination of
both. Without a query, filtered results come back newest first.`,
	RunE: runKnowledgeRetrieve,
}

func runKnowledgeRetrieve(cmd *cobra.Command, args []string) error {
	store, err := knowledge.NewStore(knowledgeConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --year, --venue, or --topic")
	}

	entries, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(entries, jsonOutput)
}

func formatRetrieveOutput(entries []types.LibraryEntry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-50s  %-4s  %-6s  %-20s  %s\n",
		"Rank", "Title", "Year", "Cites", "Venue", "Topics")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, e := range entries {
		title := e.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		venue := e.Venue
		if len(venue) > 20 {
			venue = venue[:17] + "..."
		}
		topics := strings.Join(e.Topics, ", ")
		if len(topics) > 20 {
			topics = topics[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-50s  %-4s  %-6d  %-20s  %s\n",
			i+1, title, e.Year, e.Citations, venue, topics)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(entries))
	return nil
}

// --- export subcommand ---

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library to YAML or JSON",
	Long: `Export writes the full library (or a filtered subset) to an export
file under the library's index directory. Supports the same filter flags
as retrieve for partial exports.`,
	RunE: runKnowledgeExport,
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := knowledge.NewStore(knowledgeConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), opts)
	case "json":
		path, err = store.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func knowledgeConfig(cmd *cobra.Command) types.KnowledgeBaseConfig {
	knowledgeDir, _ := cmd.Flags().GetString("knowledge-dir")
	if knowledgeDir == "" {
		knowledgeDir = viper.GetString("knowledge_base.knowledge_dir")
	}
	if knowledgeDir == "" {
		knowledgeDir = "knowledge"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults == 0 {
		maxResults = viper.GetInt("knowledge_base.max_results")
	}

	return types.KnowledgeBaseConfig{
		KnowledgeDir: knowledgeDir,
		MaxResults:   maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) knowledge.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	year, _ := cmd.Flags().GetString("year")
	venue, _ := cmd.Flags().GetString("venue")
	topic, _ := cmd.Flags().GetString("topic")
	limit, _ := cmd.Flags().GetInt("limit")

	return knowledge.QueryOptions{
		Query:      queryText,
		Year:       year,
		Venue:      venue,
		Topic:      topic,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	knowledgeCmd.PersistentFlags().String("knowledge-dir", "", "base directory for the library (default knowledge, contains index/)")
	knowledgeCmd.PersistentFlags().Int("max-results", 0, "default maximum number of query results (default 20)")

	// Add flags.
	knowledgeAddCmd.Flags().String("from", "", "query file to ingest (from search --save)")

	// Retrieve flags.
	knowledgeRetrieveCmd.Flags().String("query", "", "full-text search query")
	knowledgeRetrieveCmd.Flags().String("year", "", "filter by publication year")
	knowledgeRetrieveCmd.Flags().String("venue", "", "filter by venue substring")
	knowledgeRetrieveCmd.Flags().String("topic", "", "filter by topic label")
	knowledgeRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	knowledgeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	knowledgeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	knowledgeExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	knowledgeExportCmd.Flags().String("year", "", "filter by publication year for partial export")
	knowledgeExportCmd.Flags().String("venue", "", "filter by venue substring for partial export")
	knowledgeExportCmd.Flags().String("topic", "", "filter by topic label for partial export")
	knowledgeExportCmd.Flags().Int("limit", 0, "maximum entries to export (0 = all)")

	// Wire subcommands.
	knowledgeCmd.AddCommand(knowledgeAddCmd)
	knowledgeCmd.AddCommand(knowledgeRetrieveCmd)
	knowledgeCmd.AddCommand(knowledgeExportCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
