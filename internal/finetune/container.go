// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finetune

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdiddy/corpus-engine/internal/container"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

const defaultImage = "corpus-trainer:latest"

// Container filesystem contract: the data directory is mounted at /data
// and the model output directory at /model. The trainer entrypoint reads
// /model/job.yaml and /data/training_data.csv, and writes the fine-tuned
// checkpoint under /model.
const (
	containerDataDir  = "/data"
	containerModelDir = "/model"
)

// ContainerTrainer runs the trainer image locally via docker or podman.
type ContainerTrainer struct {
	rt        container.Runtime
	image     string
	dataDir   string
	outputDir string
	log       io.Writer
}

// NewContainerTrainer verifies the trainer image exists locally and
// returns a trainer bound to it. Training logs stream to log.
func NewContainerTrainer(rt container.Runtime, cfg types.FinetuneConfig, log io.Writer) (*ContainerTrainer, error) {
	cfg = withDefaults(cfg)

	image := cfg.Image
	if image == "" {
		image = defaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, err
	}

	return &ContainerTrainer{
		rt:        rt,
		image:     image,
		dataDir:   cfg.DataDir,
		outputDir: cfg.OutputDir,
		log:       log,
	}, nil
}

func (t *ContainerTrainer) Name() string {
	return "container/" + t.rt.Name()
}

func (t *ContainerTrainer) mounts() ([]container.Mount, error) {
	dataAbs, err := filepath.Abs(t.dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	modelAbs, err := filepath.Abs(t.outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory: %w", err)
	}
	return []container.Mount{
		{Host: dataAbs, Container: containerDataDir},
		{Host: modelAbs, Container: containerModelDir},
	}, nil
}

// Train runs the image's train command against the mounted data and model
// directories.
func (t *ContainerTrainer) Train(ctx context.Context, job Job) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	mounts, err := t.mounts()
	if err != nil {
		return Result{}, err
	}

	opts := container.RunOptions{
		Mounts: mounts,
		Args:   []string{"train", "--job", containerModelDir + "/" + jobFile},
		Stdout: t.log,
	}
	if err := t.rt.Run(t.image, opts); err != nil {
		return Result{}, err
	}

	return Result{ModelPath: t.outputDir}, nil
}

// Generate pipes the prompt to the image's generate command and returns
// the model's continuation.
func (t *ContainerTrainer) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mounts, err := t.mounts()
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	opts := container.RunOptions{
		Mounts: mounts,
		Args:   []string{"generate", "--job", containerModelDir + "/" + jobFile},
		Stdin:  strings.NewReader(prompt),
		Stdout: &out,
	}
	if err := t.rt.Run(t.image, opts); err != nil {
		return "", err
	}

	return strings.TrimSpace(out.String()), nil
}
