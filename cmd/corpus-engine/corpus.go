// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/corpus"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the corpus index (store, search, stats, export)",
	Long: `Corpus manages a local SQLite index built from cleaned training pairs.
Use subcommands to ingest pair sets, search them, inspect corpus
statistics, or export.`,
}

// --- store subcommand ---

var corpusStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest cleaned training pairs into the corpus index",
	Long: `Store reads pair set YAML files from data/pairs/, ingests them into a
SQLite database with FTS5 indexing, and writes an export file. Unchanged
documents are skipped on subsequent runs.`,
	RunE: runCorpusStore,
}

func runCorpusStore(cmd *cobra.Command, args []string) error {
	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var corpusSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the corpus with full-text search and filters",
	Long: `Search queries the corpus index using FTS5 full-text search over pair
text, structured filters (document, minimum input length), or a
combination of both.`,
	RunE: runCorpusSearch,
}

func runCorpusSearch(cmd *cobra.Command, args []string) error {
	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --doc, or --min-input-len")
	}

	results, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []corpus.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-44s  %-44s  %s\n",
		"Rank", "Input", "Output", "Document")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		input := r.Input
		if len(input) > 44 {
			input = input[:41] + "..."
		}
		output := r.Output
		if len(output) > 44 {
			output = output[:41] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-44s  %-44s  %s\n", i+1, input, output, r.DocID)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- stats subcommand ---

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Long: `Stats reports document and pair counts, pair length distributions, the
number of duplicate inputs, and a per-document breakdown.`,
	RunE: runCorpusStats,
}

func runCorpusStats(cmd *cobra.Command, args []string) error {
	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatStatsOutput(stats, jsonOutput)
}

func formatStatsOutput(stats corpus.CorpusStats, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(os.Stdout, "Documents:        %d\n", stats.Documents)
	fmt.Fprintf(os.Stdout, "Pairs:            %d (%.1f per document)\n", stats.Pairs, stats.PairsPerDoc)
	fmt.Fprintf(os.Stdout, "Input length:     min %d, max %d, avg %.1f\n",
		stats.InputLen.Min, stats.InputLen.Max, stats.InputLen.Avg)
	fmt.Fprintf(os.Stdout, "Output length:    min %d, max %d, avg %.1f\n",
		stats.OutputLen.Min, stats.OutputLen.Max, stats.OutputLen.Avg)
	fmt.Fprintf(os.Stdout, "Duplicate inputs: %d\n", stats.DuplicateInputs)

	if len(stats.Docs) == 0 {
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n%-28s  %-36s  %6s  %9s  %6s  %11s\n",
		"Document", "Title", "Pairs", "Headings", "Lists", "Paragraphs")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 106))
	for _, d := range stats.Docs {
		doc := d.DocID
		if len(doc) > 28 {
			doc = doc[:25] + "..."
		}
		title := d.Title
		if len(title) > 36 {
			title = title[:33] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-28s  %-36s  %6d  %9d  %6d  %11d\n",
			doc, title, d.Pairs, d.Headings, d.ListItems, d.Paragraphs)
	}
	return nil
}

// --- export subcommand ---

var corpusExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the corpus index to YAML, JSON, or CSV",
	Long: `Export writes the full corpus (or a filtered subset) to
data/index/export.yaml, export.json, or export.csv. The CSV format matches
training_data.csv so a filtered export can feed fine-tuning directly.
Supports the same filter flags as search for partial exports.`,
	RunE: runCorpusExport,
}

func runCorpusExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := corpusConfig(cmd)
	store, err := corpus.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	indexDir := filepath.Join(cfg.DataDir, "index")

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(indexDir, "export.yaml"))
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(indexDir, "export.json"))
	case "csv":
		if err := store.ExportCSV(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(indexDir, "export.csv"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json, or csv", format)
	}

	return nil
}

// --- shared helpers ---

func corpusConfig(cmd *cobra.Command) types.CorpusConfig {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.CorpusConfig{
		DataDir:    dataDir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) corpus.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	docID, _ := cmd.Flags().GetString("doc")
	minInputLen, _ := cmd.Flags().GetInt("min-input-len")
	limit, _ := cmd.Flags().GetInt("limit")

	return corpus.QueryOptions{
		Query:       queryText,
		DocID:       docID,
		MinInputLen: minInputLen,
		MaxResults:  limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	corpusCmd.PersistentFlags().String("data-dir", defaultDataDir, "base data directory (contains pairs/, index/)")
	corpusCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Search flags.
	corpusSearchCmd.Flags().String("query", "", "full-text search query")
	corpusSearchCmd.Flags().String("doc", "", "filter by document ID")
	corpusSearchCmd.Flags().Int("min-input-len", 0, "minimum input length in runes")
	corpusSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	corpusSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Stats flags.
	corpusStatsCmd.Flags().Bool("json", false, "output statistics as JSON")

	// Export flags.
	corpusExportCmd.Flags().String("format", "yaml", "export format: yaml, json, or csv")
	corpusExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	corpusExportCmd.Flags().String("doc", "", "filter by document ID for partial export")
	corpusExportCmd.Flags().Int("min-input-len", 0, "minimum input length for partial export")
	corpusExportCmd.Flags().Int("limit", 0, "maximum pairs to export (0 = all)")

	// Wire subcommands.
	corpusCmd.AddCommand(corpusStoreCmd)
	corpusCmd.AddCommand(corpusSearchCmd)
	corpusCmd.AddCommand(corpusStatsCmd)
	corpusCmd.AddCommand(corpusExportCmd)

	rootCmd.AddCommand(corpusCmd)
}
