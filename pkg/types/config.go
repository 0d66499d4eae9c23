package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "corpus-engine/0.1"). Per prd006-fetch R4.2.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the fetch stage.
// Per prd006-fetch R1.3, R4.1-R4.3.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// DataDir is the base data directory (contains raw/, metadata/).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// ExtractionBackend identifies the PDF text extraction library or tool.
// Per prd001-extraction R2.1.
type ExtractionBackend string

const (
	BackendNative    ExtractionBackend = "native"
	BackendPdfcpu    ExtractionBackend = "pdfcpu"
	BackendPdftotext ExtractionBackend = "pdftotext"
)

// ExtractConfig holds settings for the extraction stage.
// Per prd001-extraction R2.1-R2.3.
type ExtractConfig struct {
	// Backend selects the extraction tool: native, pdfcpu, or pdftotext.
	Backend ExtractionBackend `json:"backend" yaml:"backend"`

	// DataDir is the base data directory (contains raw/, text/, metadata/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Force re-extracts documents whose text output already exists.
	Force bool `json:"force" yaml:"force"`
}

// ConvertConfig holds settings for the structuring stage.
// Per prd002-structuring R1.2.
type ConvertConfig struct {
	// DataDir is the base data directory (contains text/, markdown/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Force re-converts documents whose Markdown output already exists.
	Force bool `json:"force" yaml:"force"`
}

// CleanConfig holds settings for the cleaning stage.
// Per prd003-cleaning R1.2, R4.6.
type CleanConfig struct {
	// DataDir is the base data directory (contains markdown/, cleaned/, pairs/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MakePairs controls whether training pairs are derived and
	// training_data.csv is written (default true).
	MakePairs bool `json:"make_pairs" yaml:"make_pairs"`

	// Force re-cleans documents whose cleaned output already exists.
	Force bool `json:"force" yaml:"force"`
}

// CorpusConfig holds settings for the corpus index stage.
// Per prd005-corpus-index R1.2, R2.3.
type CorpusConfig struct {
	// DataDir is the base data directory (contains pairs/, index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// TrainerBackend identifies how the fine-tuning stage runs the trainer.
// Per prd004-finetuning R2.1.
type TrainerBackend string

const (
	TrainerContainer TrainerBackend = "container"
	TrainerRemote    TrainerBackend = "remote"
)

// GenerationConfig holds sampling parameters for the post-training smoke
// generation. Per prd004-finetuning R5.2.
type GenerationConfig struct {
	// MaxNewTokens caps the generated continuation length (default 256).
	MaxNewTokens int `json:"max_new_tokens" yaml:"max_new_tokens"`

	// TopK restricts sampling to the k most likely tokens (default 50).
	TopK int `json:"top_k" yaml:"top_k"`

	// TopP restricts sampling to the smallest nucleus exceeding p (default 0.95).
	TopP float64 `json:"top_p" yaml:"top_p"`

	// Temperature scales the sampling distribution (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// NoRepeatNgram forbids repeating n-grams of this size (default 2).
	NoRepeatNgram int `json:"no_repeat_ngram" yaml:"no_repeat_ngram"`
}

// FinetuneConfig holds settings for the fine-tuning stage.
// Per prd004-finetuning R1.1-R1.4, R3.1-R3.5.
type FinetuneConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the trainer: container or remote.
	Backend TrainerBackend `json:"backend" yaml:"backend"`

	// ModelName is the base model to fine-tune (name or path understood by
	// the trainer, e.g. "THUDM/chatglm2-6b").
	ModelName string `json:"model_name" yaml:"model_name"`

	// DataDir is the base data directory (contains training_data.csv).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// OutputDir is where the trainer writes the fine-tuned checkpoint
	// (default "models/finetuned_model").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// LearningRate is the optimizer learning rate (default 5e-5).
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`

	// Epochs is the number of training epochs (default 3).
	Epochs int `json:"epochs" yaml:"epochs"`

	// BatchSize is the per-device training batch size (default 8).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxSeqLen is the tokenizer truncation length (default 512).
	MaxSeqLen int `json:"max_seq_len" yaml:"max_seq_len"`

	// PromptTemplate renders a pair into one training text. {input} and
	// {output} are substituted (default "Input: {input}\nOutput: {output}").
	PromptTemplate string `json:"prompt_template" yaml:"prompt_template"`

	// TestPrompt is sent through the fine-tuned model after training as a
	// smoke test. Empty skips the test.
	TestPrompt string `json:"test_prompt,omitempty" yaml:"test_prompt,omitempty"`

	// Image is the trainer container image (container backend).
	Image string `json:"image,omitempty" yaml:"image,omitempty"`

	// Endpoint is the training service base URL (remote backend).
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// APIKey authenticates against the training service (remote backend).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed service calls
	// (default 3, remote backend).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Generation holds sampling parameters for the smoke generation.
	Generation GenerationConfig `json:"generation" yaml:"generation"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Extract  ExtractConfig  `json:"extract" yaml:"extract"`
	Convert  ConvertConfig  `json:"convert" yaml:"convert"`
	Clean    CleanConfig    `json:"clean" yaml:"clean"`
	Corpus   CorpusConfig   `json:"corpus" yaml:"corpus"`
	Finetune FinetuneConfig `json:"finetune" yaml:"finetune"`
}
