package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/finetune"
	"github.com/pdiddy/corpus-engine/internal/secrets"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var finetuneCmd = &cobra.Command{
	Use:   "finetune",
	Short: "Fine-tune a causal language model on the training data",
	Long: `Finetune hands data/training_data.csv to a trainer backend: a local
container image (docker or podman) or a remote training service. The
trained checkpoint lands in the output directory along with job and
result records. A --test-prompt runs one generation through the trained
model as a smoke test.

The remote backend reads its API key from .secrets/trainer-api-key.`,
	RunE: runFinetune,
}

func init() {
	finetuneCmd.Flags().String("backend", "container", "trainer backend: container or remote")
	finetuneCmd.Flags().String("model", "", "base model to fine-tune (default THUDM/chatglm2-6b)")
	finetuneCmd.Flags().String("data-dir", defaultDataDir, "base data directory (contains training_data.csv)")
	finetuneCmd.Flags().String("output-dir", "", "directory for the fine-tuned checkpoint (default models/finetuned_model)")
	finetuneCmd.Flags().Float64("learning-rate", 0, "optimizer learning rate (default 5e-5)")
	finetuneCmd.Flags().Int("epochs", 0, "number of training epochs (default 3)")
	finetuneCmd.Flags().Int("batch-size", 0, "per-device batch size (default 8)")
	finetuneCmd.Flags().Int("max-seq-len", 0, "tokenizer truncation length (default 512)")
	finetuneCmd.Flags().String("test-prompt", "", "prompt for a post-training smoke generation")
	finetuneCmd.Flags().String("image", "", "trainer container image (default corpus-trainer:latest)")
	finetuneCmd.Flags().String("endpoint", "", "training service base URL (remote backend)")
	finetuneCmd.Flags().Duration("timeout", 0, "HTTP request timeout for the remote backend (default 60s)")

	rootCmd.AddCommand(finetuneCmd)
}

func runFinetune(cmd *cobra.Command, args []string) error {
	cfg := finetuneConfigFromFlags(cmd)

	trainer, err := finetune.NewTrainer(cfg, os.Stdout)
	if err != nil {
		return err
	}

	_, err = finetune.Run(context.Background(), trainer, cfg, os.Stdout)
	return err
}

func finetuneConfigFromFlags(cmd *cobra.Command) types.FinetuneConfig {
	backend, _ := cmd.Flags().GetString("backend")
	model, _ := cmd.Flags().GetString("model")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	learningRate, _ := cmd.Flags().GetFloat64("learning-rate")
	epochs, _ := cmd.Flags().GetInt("epochs")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	maxSeqLen, _ := cmd.Flags().GetInt("max-seq-len")
	testPrompt, _ := cmd.Flags().GetString("test-prompt")
	image, _ := cmd.Flags().GetString("image")
	endpoint, _ := cmd.Flags().GetString("endpoint")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	return types.FinetuneConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Backend:      types.TrainerBackend(backend),
		ModelName:    model,
		DataDir:      dataDir,
		OutputDir:    outputDir,
		LearningRate: learningRate,
		Epochs:       epochs,
		BatchSize:    batchSize,
		MaxSeqLen:    maxSeqLen,
		TestPrompt:   testPrompt,
		Image:        image,
		Endpoint:     endpoint,
		APIKey:       secretDefault(secrets.TrainerAPIKey, ""),
	}
}
