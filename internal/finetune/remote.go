// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finetune

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/corpus-engine/internal/httputil"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

// RemotePollInterval is the wait between job status checks. Tests override
// this to avoid real sleeps.
var RemotePollInterval = 10 * time.Second

// Terminal job states reported by the training service. Any other status
// means the job is still queued or running.
const (
	jobSucceeded = "succeeded"
	jobFailed    = "failed"
)

// RemoteTrainer submits fine-tuning jobs to an HTTP training service and
// polls until they reach a terminal state. The service holds the GPUs; this
// side holds the data.
type RemoteTrainer struct {
	client     *http.Client
	endpoint   string
	apiKey     string
	userAgent  string
	maxRetries int

	// modelID is the service-side id of the last trained model, used by
	// Generate.
	modelID string
}

// NewRemoteTrainer builds a trainer for the training service at
// cfg.Endpoint, authenticating with cfg.APIKey when set.
func NewRemoteTrainer(cfg types.FinetuneConfig) *RemoteTrainer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RemoteTrainer{
		client:     &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		maxRetries: maxRetries,
	}
}

func (t *RemoteTrainer) Name() string { return "remote" }

type remoteSubmitRequest struct {
	Job          Job    `json:"job"`
	TrainingData string `json:"training_data"`
}

type remoteJobStatus struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	ModelID string `json:"model_id"`
	Error   string `json:"error"`
}

type remoteGenerateRequest struct {
	ModelID string `json:"model_id"`
	Prompt  string `json:"prompt"`
}

type remoteGenerateResponse struct {
	Output string `json:"output"`
}

// Train uploads the training data with the job spec, then polls the job
// until it succeeds or fails.
func (t *RemoteTrainer) Train(ctx context.Context, job Job) (Result, error) {
	if t.endpoint == "" {
		return Result{}, fmt.Errorf("remote trainer requires an endpoint")
	}

	data, err := os.ReadFile(job.TrainingCSV)
	if err != nil {
		return Result{}, fmt.Errorf("reading training data: %w", err)
	}

	resp, err := t.do(ctx, http.MethodPost, t.endpoint+"/v1/jobs", remoteSubmitRequest{
		Job:          job,
		TrainingData: string(data),
	})
	if err != nil {
		return Result{}, fmt.Errorf("submitting job: %w", err)
	}

	var submitted remoteJobStatus
	if err := decodeResponse(resp, &submitted); err != nil {
		return Result{}, err
	}
	if submitted.ID == "" {
		return Result{}, fmt.Errorf("training service did not return a job id")
	}

	final, err := t.pollJob(ctx, submitted.ID)
	if err != nil {
		return Result{}, err
	}

	t.modelID = final.ModelID
	return Result{
		ModelPath:   final.ModelID,
		RemoteJobID: submitted.ID,
	}, nil
}

// pollJob checks job status until the service reports a terminal state.
func (t *RemoteTrainer) pollJob(ctx context.Context, jobID string) (remoteJobStatus, error) {
	url := t.endpoint + "/v1/jobs/" + jobID
	for {
		resp, err := t.do(ctx, http.MethodGet, url, nil)
		if err != nil {
			return remoteJobStatus{}, fmt.Errorf("polling job %s: %w", jobID, err)
		}

		var status remoteJobStatus
		if err := decodeResponse(resp, &status); err != nil {
			return remoteJobStatus{}, err
		}

		switch status.Status {
		case jobSucceeded:
			return status, nil
		case jobFailed:
			return remoteJobStatus{}, fmt.Errorf("remote job %s failed: %s", jobID, status.Error)
		}

		select {
		case <-ctx.Done():
			return remoteJobStatus{}, ctx.Err()
		case <-time.After(RemotePollInterval):
		}
	}
}

// Generate asks the service to run a prompt through the last trained model.
func (t *RemoteTrainer) Generate(ctx context.Context, prompt string) (string, error) {
	if t.modelID == "" {
		return "", fmt.Errorf("no fine-tuned model available; train first")
	}

	resp, err := t.do(ctx, http.MethodPost, t.endpoint+"/v1/generate", remoteGenerateRequest{
		ModelID: t.modelID,
		Prompt:  prompt,
	})
	if err != nil {
		return "", fmt.Errorf("requesting generation: %w", err)
	}

	var gen remoteGenerateResponse
	if err := decodeResponse(resp, &gen); err != nil {
		return "", err
	}
	return gen.Output, nil
}

// do sends a request with auth headers, retrying on 429/503 via httputil.
func (t *RemoteTrainer) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	return httputil.DoWithRetry(ctx, t.client, req, t.maxRetries)
}

// decodeResponse closes the body and decodes a 2xx JSON response into v.
func decodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("training service returned HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing training service response: %w", err)
	}
	return nil
}
