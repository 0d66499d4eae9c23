// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finetune

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

func init() {
	// Poll fast in tests.
	RemotePollInterval = time.Millisecond
}

func remoteJob(t *testing.T) Job {
	t.Helper()
	path := writeTrainingCSV(t, t.TempDir(),
		"what is attention,a weighting over input tokens")
	return Job{ModelName: "distilgpt2", TrainingCSV: path}
}

func TestRemoteTrainerTrain(t *testing.T) {
	var (
		polls     int
		submitted remoteSubmitRequest
		gotAuth   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/jobs":
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
				t.Errorf("decoding submit request: %v", err)
			}
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprint(w, `{"id":"job-7","status":"queued"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/jobs/job-7":
			polls++
			if polls < 3 {
				fmt.Fprint(w, `{"id":"job-7","status":"running"}`)
				return
			}
			fmt.Fprint(w, `{"id":"job-7","status":"succeeded","model_id":"model-42"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	trainer := NewRemoteTrainer(types.FinetuneConfig{
		Endpoint: srv.URL,
		APIKey:   "tk_secret",
	})

	result, err := trainer.Train(context.Background(), remoteJob(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RemoteJobID != "job-7" {
		t.Errorf("RemoteJobID = %q, want %q", result.RemoteJobID, "job-7")
	}
	if result.ModelPath != "model-42" {
		t.Errorf("ModelPath = %q, want %q", result.ModelPath, "model-42")
	}
	if polls != 3 {
		t.Errorf("polls = %d, want %d", polls, 3)
	}
	if gotAuth != "Bearer tk_secret" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if submitted.Job.ModelName != "distilgpt2" {
		t.Errorf("submitted model = %q", submitted.Job.ModelName)
	}
	if !strings.Contains(submitted.TrainingData, "input,output") {
		t.Errorf("training data not uploaded: %q", submitted.TrainingData)
	}
}

func TestRemoteTrainerTrainFailedJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"id":"job-9","status":"queued"}`)
			return
		}
		fmt.Fprint(w, `{"id":"job-9","status":"failed","error":"loss exploded"}`)
	}))
	defer srv.Close()

	trainer := NewRemoteTrainer(types.FinetuneConfig{Endpoint: srv.URL})
	_, err := trainer.Train(context.Background(), remoteJob(t))
	if err == nil {
		t.Fatal("expected error for failed job")
	}
	if !strings.Contains(err.Error(), "job-9") || !strings.Contains(err.Error(), "loss exploded") {
		t.Errorf("error = %v, want job id and service error", err)
	}
}

func TestRemoteTrainerMissingJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	trainer := NewRemoteTrainer(types.FinetuneConfig{Endpoint: srv.URL})
	_, err := trainer.Train(context.Background(), remoteJob(t))
	if err == nil {
		t.Fatal("expected error for missing job id")
	}
	if !strings.Contains(err.Error(), "job id") {
		t.Errorf("error = %v, want job id complaint", err)
	}
}

func TestRemoteTrainerSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"error":"unsupported base model"}`)
	}))
	defer srv.Close()

	trainer := NewRemoteTrainer(types.FinetuneConfig{Endpoint: srv.URL})
	_, err := trainer.Train(context.Background(), remoteJob(t))
	if err == nil {
		t.Fatal("expected error for rejected submission")
	}
	if !strings.Contains(err.Error(), "HTTP 422") {
		t.Errorf("error = %v, want HTTP status", err)
	}
	if !strings.Contains(err.Error(), "unsupported base model") {
		t.Errorf("error = %v, want response excerpt", err)
	}
}

func TestRemoteTrainerRequiresEndpoint(t *testing.T) {
	trainer := NewRemoteTrainer(types.FinetuneConfig{})
	_, err := trainer.Train(context.Background(), remoteJob(t))
	if err == nil {
		t.Fatal("expected error for missing endpoint")
	}
	if !strings.Contains(err.Error(), "endpoint") {
		t.Errorf("error = %v, want endpoint complaint", err)
	}
}

func TestRemoteTrainerMissingTrainingFile(t *testing.T) {
	trainer := NewRemoteTrainer(types.FinetuneConfig{Endpoint: "http://localhost:1"})
	_, err := trainer.Train(context.Background(), Job{TrainingCSV: "/does/not/exist.csv"})
	if err == nil {
		t.Fatal("expected error for missing training file")
	}
	if !strings.Contains(err.Error(), "reading training data") {
		t.Errorf("error = %v", err)
	}
}

func TestRemoteTrainerCancelledDuringPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"id":"job-1","status":"queued"}`)
			return
		}
		fmt.Fprint(w, `{"id":"job-1","status":"running"}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	trainer := NewRemoteTrainer(types.FinetuneConfig{Endpoint: srv.URL})
	if _, err := trainer.Train(ctx, remoteJob(t)); err == nil {
		t.Fatal("expected error when context expires mid-poll")
	}
}

func TestRemoteTrainerGenerate(t *testing.T) {
	var genReq remoteGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/jobs":
			fmt.Fprint(w, `{"id":"job-1","status":"queued"}`)
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/jobs/"):
			fmt.Fprint(w, `{"id":"job-1","status":"succeeded","model_id":"model-42"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/v1/generate":
			if err := json.NewDecoder(r.Body).Decode(&genReq); err != nil {
				t.Errorf("decoding generate request: %v", err)
			}
			fmt.Fprint(w, `{"output":"a weighting over input tokens"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	trainer := NewRemoteTrainer(types.FinetuneConfig{Endpoint: srv.URL})
	if _, err := trainer.Train(context.Background(), remoteJob(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := trainer.Generate(context.Background(), "what is attention")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a weighting over input tokens" {
		t.Errorf("Generate() = %q", got)
	}
	if genReq.ModelID != "model-42" {
		t.Errorf("generate model = %q, want %q", genReq.ModelID, "model-42")
	}
	if genReq.Prompt != "what is attention" {
		t.Errorf("generate prompt = %q", genReq.Prompt)
	}
}

func TestRemoteTrainerGenerateWithoutModel(t *testing.T) {
	trainer := NewRemoteTrainer(types.FinetuneConfig{Endpoint: "http://localhost:1"})
	_, err := trainer.Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error before training")
	}
	if !strings.Contains(err.Error(), "train first") {
		t.Errorf("error = %v", err)
	}
}

func TestRemoteTrainerTrimsEndpointSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/jobs" && !strings.HasPrefix(r.URL.Path, "/v1/jobs/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"id":"job-1","status":"queued"}`)
			return
		}
		fmt.Fprint(w, `{"id":"job-1","status":"succeeded","model_id":"m"}`)
	}))
	defer srv.Close()

	trainer := NewRemoteTrainer(types.FinetuneConfig{Endpoint: srv.URL + "/"})
	if _, err := trainer.Train(context.Background(), remoteJob(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemoteTrainerName(t *testing.T) {
	if got := NewRemoteTrainer(types.FinetuneConfig{}).Name(); got != "remote" {
		t.Errorf("Name() = %q, want %q", got, "remote")
	}
}
