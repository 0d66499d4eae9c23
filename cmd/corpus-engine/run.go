package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/clean"
	"github.com/pdiddy/corpus-engine/internal/convert"
	"github.com/pdiddy/corpus-engine/internal/corpus"
	"github.com/pdiddy/corpus-engine/internal/extract"
	"github.com/pdiddy/corpus-engine/internal/finetune"
	"github.com/pdiddy/corpus-engine/internal/secrets"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the document pipeline end to end",
	Long: `Run executes the document stages in sequence against one data
directory: extract, convert, clean, and corpus store. Fetch stays separate
so the pipeline can re-run offline. Pass --finetune to continue into
fine-tuning after the corpus is built, or --no-store to stop after
cleaning.

Stages skip work whose output already exists, so re-running after adding
PDFs only processes the new documents.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("data-dir", defaultDataDir, "base data directory")
	runCmd.Flags().String("backend", "native", "extraction backend: native, pdfcpu, or pdftotext")
	runCmd.Flags().Bool("force", false, "reprocess documents whose outputs already exist")
	runCmd.Flags().Bool("no-store", false, "skip the corpus store stage")
	runCmd.Flags().Bool("finetune", false, "fine-tune after the corpus is built")
	runCmd.Flags().String("model", "", "base model for --finetune (default THUDM/chatglm2-6b)")
	runCmd.Flags().String("test-prompt", "", "smoke-test prompt for --finetune")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	backend, _ := cmd.Flags().GetString("backend")
	force, _ := cmd.Flags().GetBool("force")
	noStore, _ := cmd.Flags().GetBool("no-store")
	doFinetune, _ := cmd.Flags().GetBool("finetune")

	out := os.Stdout
	ctx := context.Background()
	failures := 0

	fmt.Fprintln(out, "==> extract")
	b, err := extract.NewBackend(types.ExtractionBackend(backend))
	if err != nil {
		return err
	}
	exResult, err := extract.ExtractBatch(b, types.ExtractConfig{
		Backend: types.ExtractionBackend(backend),
		DataDir: dataDir,
		Force:   force,
	}, out)
	if err != nil {
		return err
	}
	failures += exResult.Failed

	fmt.Fprintln(out, "\n==> convert")
	cvResult, err := convert.ConvertBatch(types.ConvertConfig{
		DataDir: dataDir,
		Force:   force,
	}, out)
	if err != nil {
		return err
	}
	failures += cvResult.Failed

	fmt.Fprintln(out, "\n==> clean")
	clResult, err := clean.CleanBatch(types.CleanConfig{
		DataDir:   dataDir,
		MakePairs: true,
		Force:     force,
	}, out)
	if err != nil {
		return err
	}
	failures += clResult.Failed

	if !noStore {
		fmt.Fprintln(out, "\n==> corpus store")
		store, err := corpus.NewStore(types.CorpusConfig{DataDir: dataDir})
		if err != nil {
			return err
		}
		summary, err := store.Ingest(ctx, out)
		store.Close()
		if err != nil {
			return err
		}
		failures += summary.Failed
	}

	if doFinetune {
		fmt.Fprintln(out, "\n==> finetune")
		model, _ := cmd.Flags().GetString("model")
		testPrompt, _ := cmd.Flags().GetString("test-prompt")
		cfg := types.FinetuneConfig{
			ModelName:  model,
			DataDir:    dataDir,
			TestPrompt: testPrompt,
			APIKey:     secretDefault(secrets.TrainerAPIKey, ""),
		}
		trainer, err := finetune.NewTrainer(cfg, out)
		if err != nil {
			return err
		}
		if _, err := finetune.Run(ctx, trainer, cfg, out); err != nil {
			return err
		}
	}

	if failures > 0 {
		return fmt.Errorf("pipeline completed with %d failure(s)", failures)
	}
	return nil
}
