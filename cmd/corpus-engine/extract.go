package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/extract"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract raw text from downloaded PDFs",
	Long: `Extract reads each PDF in data/raw/ and writes its plain text to
data/text/, one file per document, with per-document quality metrics
recorded in the metadata. Documents whose text output already exists are
skipped unless --force is given.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("backend", "native", "extraction backend: native, pdfcpu, or pdftotext")
	extractCmd.Flags().String("data-dir", defaultDataDir, "base data directory")
	extractCmd.Flags().Bool("force", false, "re-extract documents whose text output already exists")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	backend, _ := cmd.Flags().GetString("backend")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	force, _ := cmd.Flags().GetBool("force")

	cfg := types.ExtractConfig{
		Backend: types.ExtractionBackend(backend),
		DataDir: dataDir,
		Force:   force,
	}

	b, err := extract.NewBackend(cfg.Backend)
	if err != nil {
		return err
	}

	result, err := extract.ExtractBatch(b, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", result.Failed)
	}
	return nil
}
