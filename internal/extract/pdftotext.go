// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

const binPdftotext = "pdftotext"

// commandRunner abstracts command execution for testing.
type commandRunner interface {
	LookPath(file string) (string, error)
	Output(name string, args ...string) ([]byte, error)
}

// osRunner is the production runner backed by os/exec.
type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osRunner) Output(name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// PdftotextBackend shells out to the poppler pdftotext binary. Use it when
// both pure-Go backends choke on a file.
type PdftotextBackend struct {
	runner commandRunner
}

// NewPdftotextBackend creates the backend, verifying that pdftotext is on
// PATH before returning.
func NewPdftotextBackend() (*PdftotextBackend, error) {
	return newPdftotextBackend(osRunner{})
}

func newPdftotextBackend(r commandRunner) (*PdftotextBackend, error) {
	if _, err := r.LookPath(binPdftotext); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binPdftotext, err)
	}
	return &PdftotextBackend{runner: r}, nil
}

// Name returns "pdftotext".
func (*PdftotextBackend) Name() string { return "pdftotext" }

// Extract runs pdftotext with layout preservation and splits its output on
// the form feeds the tool writes between pages.
func (b *PdftotextBackend) Extract(path string) ([]string, error) {
	out, err := b.runner.Output(binPdftotext, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("running %s on %s: %w", binPdftotext, path, err)
	}

	pages := strings.Split(string(out), "\f")
	// pdftotext terminates the final page with a form feed too.
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	if len(pages) == 0 || (len(pages) == 1 && strings.TrimSpace(pages[0]) == "") {
		return nil, fmt.Errorf("%s produced no output for %s", binPdftotext, path)
	}
	return pages, nil
}
