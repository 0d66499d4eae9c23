// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package finetune delegates causal-LM fine-tuning to an external trainer.
// Implements: prd004-finetuning (R1-R5);
//
//	docs/ARCHITECTURE § Fine-tuning.
//
// The package prepares a job spec from the aggregated training data and
// hands it to a Trainer backend: a local container image or a remote
// training service. Tokenization, optimization, and checkpointing happen
// inside the backend; this side owns data preparation, job bookkeeping,
// and the post-training smoke test.
package finetune

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-engine/internal/container"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

const (
	trainingCSV = "training_data.csv"
	jobFile     = "job.yaml"
	resultFile  = "result.yaml"

	defaultModelName    = "THUDM/chatglm2-6b"
	defaultOutputDir    = "models/finetuned_model"
	defaultLearningRate = 5e-5
	defaultEpochs       = 3
	defaultBatchSize    = 8
	defaultMaxSeqLen    = 512
	defaultPrompt       = "Input: {input}\nOutput: {output}"
)

// Job describes one fine-tuning run. Serialized to OutputDir/job.yaml for
// the trainer backend.
type Job struct {
	ModelName      string                 `json:"model_name" yaml:"model_name"`
	TrainingCSV    string                 `json:"training_csv" yaml:"training_csv"`
	OutputDir      string                 `json:"output_dir" yaml:"output_dir"`
	LearningRate   float64                `json:"learning_rate" yaml:"learning_rate"`
	Epochs         int                    `json:"epochs" yaml:"epochs"`
	BatchSize      int                    `json:"batch_size" yaml:"batch_size"`
	MaxSeqLen      int                    `json:"max_seq_len" yaml:"max_seq_len"`
	PromptTemplate string                 `json:"prompt_template" yaml:"prompt_template"`
	Generation     types.GenerationConfig `json:"generation" yaml:"generation"`
}

// Result records the outcome of a fine-tuning run. Written to
// OutputDir/result.yaml.
type Result struct {
	Backend     string    `json:"backend" yaml:"backend"`
	ModelName   string    `json:"model_name" yaml:"model_name"`
	ModelPath   string    `json:"model_path" yaml:"model_path"`
	RemoteJobID string    `json:"remote_job_id,omitempty" yaml:"remote_job_id,omitempty"`
	Pairs       int       `json:"pairs" yaml:"pairs"`
	TrainedAt   time.Time `json:"trained_at" yaml:"trained_at"`
	TestPrompt  string    `json:"test_prompt,omitempty" yaml:"test_prompt,omitempty"`
	TestOutput  string    `json:"test_output,omitempty" yaml:"test_output,omitempty"`
}

// Trainer runs fine-tuning jobs and generates from the resulting model.
type Trainer interface {
	// Name identifies the backend for logs and the run result.
	Name() string

	// Train fine-tunes the base model on the job's training data.
	Train(ctx context.Context, job Job) (Result, error)

	// Generate produces a continuation for prompt using the most
	// recently trained model.
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewTrainer builds the trainer selected by cfg.Backend. The container
// backend (the default) streams training logs to log.
func NewTrainer(cfg types.FinetuneConfig, log io.Writer) (Trainer, error) {
	switch cfg.Backend {
	case types.TrainerRemote:
		return NewRemoteTrainer(cfg), nil
	case types.TrainerContainer, "":
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewContainerTrainer(rt, cfg, log)
	default:
		return nil, fmt.Errorf("unknown trainer backend %q", cfg.Backend)
	}
}

// Run fine-tunes a model on the aggregated training data: it verifies the
// training CSV, writes the job spec, trains, then smoke-tests the result
// with a single generation. The run outcome is written to
// OutputDir/result.yaml.
func Run(ctx context.Context, trainer Trainer, cfg types.FinetuneConfig, w io.Writer) (Result, error) {
	cfg = withDefaults(cfg)

	csvPath := filepath.Join(cfg.DataDir, trainingCSV)
	pairs, err := countTrainingPairs(csvPath)
	if err != nil {
		return Result{}, err
	}
	if pairs == 0 {
		return Result{}, fmt.Errorf("training data %s has no pairs", csvPath)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating output directory: %w", err)
	}

	job := Job{
		ModelName:      cfg.ModelName,
		TrainingCSV:    csvPath,
		OutputDir:      cfg.OutputDir,
		LearningRate:   cfg.LearningRate,
		Epochs:         cfg.Epochs,
		BatchSize:      cfg.BatchSize,
		MaxSeqLen:      cfg.MaxSeqLen,
		PromptTemplate: cfg.PromptTemplate,
		Generation:     cfg.Generation,
	}
	if err := writeJob(job); err != nil {
		return Result{}, err
	}

	fmt.Fprintf(w, "training %s on %d pairs via %s (lr %g, epochs %d, batch %d)\n",
		cfg.ModelName, pairs, trainer.Name(), cfg.LearningRate, cfg.Epochs, cfg.BatchSize)

	result, err := trainer.Train(ctx, job)
	if err != nil {
		return Result{}, fmt.Errorf("training failed: %w", err)
	}
	result.Backend = trainer.Name()
	result.ModelName = cfg.ModelName
	result.Pairs = pairs
	result.TrainedAt = time.Now().UTC()
	if result.ModelPath == "" {
		result.ModelPath = cfg.OutputDir
	}
	fmt.Fprintf(w, "model written to %s\n", result.ModelPath)

	if cfg.TestPrompt != "" {
		output, err := trainer.Generate(ctx, cfg.TestPrompt)
		if err != nil {
			return Result{}, fmt.Errorf("test generation failed: %w", err)
		}
		result.TestPrompt = cfg.TestPrompt
		result.TestOutput = output
		fmt.Fprintf(w, "\ntest prompt: %s\ntest output: %s\n", cfg.TestPrompt, output)
	}

	if err := writeResult(cfg.OutputDir, result); err != nil {
		fmt.Fprintf(w, "  warning: result write failed: %v\n", err)
	}

	return result, nil
}

func withDefaults(cfg types.FinetuneConfig) types.FinetuneConfig {
	if cfg.ModelName == "" {
		cfg.ModelName = defaultModelName
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = defaultLearningRate
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = defaultEpochs
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = defaultMaxSeqLen
	}
	if cfg.PromptTemplate == "" {
		cfg.PromptTemplate = defaultPrompt
	}
	if cfg.Generation.MaxNewTokens <= 0 {
		cfg.Generation.MaxNewTokens = 256
	}
	if cfg.Generation.TopK <= 0 {
		cfg.Generation.TopK = 50
	}
	if cfg.Generation.TopP <= 0 {
		cfg.Generation.TopP = 0.95
	}
	if cfg.Generation.Temperature <= 0 {
		cfg.Generation.Temperature = 0.7
	}
	if cfg.Generation.NoRepeatNgram <= 0 {
		cfg.Generation.NoRepeatNgram = 2
	}
	return cfg
}

// countTrainingPairs verifies the training CSV exists, has the expected
// header, and counts its data rows.
func countTrainingPairs(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("training data not found at %s (run the clean stage first)", path)
		}
		return 0, fmt.Errorf("opening training data: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("reading training data header: %w", err)
	}
	if len(header) != 2 || header[0] != "input" || header[1] != "output" {
		return 0, fmt.Errorf("unexpected training data header %v in %s", header, path)
	}

	pairs := 0
	for {
		if _, err := r.Read(); err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("parsing training data: %w", err)
		}
		pairs++
	}
	return pairs, nil
}

func writeJob(job Job) error {
	data, err := yaml.Marshal(&job)
	if err != nil {
		return fmt.Errorf("marshaling job spec: %w", err)
	}
	path := filepath.Join(job.OutputDir, jobFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing job spec: %w", err)
	}
	return nil
}

func writeResult(outputDir string, result Result) error {
	data, err := yaml.Marshal(&result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(filepath.Join(outputDir, resultFile), data, 0o644)
}
