package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/convert"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Structure extracted text into Markdown",
	Long: `Convert transforms the plain text in data/text/ into structured Markdown
in data/markdown/: page furniture is stripped and lines are classified as
headings, list items, or paragraph text. Documents whose Markdown output
already exists are skipped unless --force is given.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("data-dir", defaultDataDir, "base data directory")
	convertCmd.Flags().Bool("force", false, "re-convert documents whose Markdown output already exists")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	force, _ := cmd.Flags().GetBool("force")

	cfg := types.ConvertConfig{
		DataDir: dataDir,
		Force:   force,
	}

	result, err := convert.ConvertBatch(cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}
