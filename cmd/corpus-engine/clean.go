package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/clean"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean Markdown and derive training pairs",
	Long: `Clean normalises the Markdown in data/markdown/, removes duplicated
lines and paragraphs, and writes cleaned documents to data/cleaned/. It
derives (input, output) training pairs per document into data/pairs/ and
aggregates them into data/training_data.csv. Documents whose cleaned
output already exists are skipped unless --force is given.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().String("data-dir", defaultDataDir, "base data directory")
	cleanCmd.Flags().Bool("no-pairs", false, "skip training pair derivation and training_data.csv")
	cleanCmd.Flags().Bool("force", false, "re-clean documents whose cleaned output already exists")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	noPairs, _ := cmd.Flags().GetBool("no-pairs")
	force, _ := cmd.Flags().GetBool("force")

	cfg := types.CleanConfig{
		DataDir:   dataDir,
		MakePairs: !noPairs,
		Force:     force,
	}

	result, err := clean.CleanBatch(cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed cleaning", result.Failed)
	}
	return nil
}
