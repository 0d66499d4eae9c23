// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"errors"
	"testing"
)

// fakeRunner implements commandRunner for testing.
type fakeRunner struct {
	lookPathErr error
	output      []byte
	outputErr   error
	gotArgs     []string
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if f.lookPathErr != nil {
		return "", f.lookPathErr
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeRunner) Output(name string, args ...string) ([]byte, error) {
	f.gotArgs = append([]string{name}, args...)
	return f.output, f.outputErr
}

func TestNewPdftotextBackend_NotInstalled(t *testing.T) {
	_, err := newPdftotextBackend(&fakeRunner{lookPathErr: errors.New("not found")})
	if err == nil {
		t.Fatal("expected error when pdftotext is missing")
	}
}

func TestPdftotextBackend_Extract(t *testing.T) {
	runner := &fakeRunner{output: []byte("page one\ftwo\nlines\f")}
	b, err := newPdftotextBackend(runner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pages, err := b.Extract("doc.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if pages[0] != "page one" {
		t.Errorf("page 1 = %q", pages[0])
	}
	if pages[1] != "two\nlines" {
		t.Errorf("page 2 = %q", pages[1])
	}

	if len(runner.gotArgs) == 0 || runner.gotArgs[0] != "pdftotext" {
		t.Errorf("expected pdftotext invocation, got %v", runner.gotArgs)
	}
}

func TestPdftotextBackend_CommandFailure(t *testing.T) {
	runner := &fakeRunner{outputErr: errors.New("exit status 1")}
	b, err := newPdftotextBackend(runner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.Extract("doc.pdf"); err == nil {
		t.Fatal("expected error from failing command")
	}
}

func TestPdftotextBackend_EmptyOutput(t *testing.T) {
	b, err := newPdftotextBackend(&fakeRunner{output: []byte("")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.Extract("doc.pdf"); err == nil {
		t.Fatal("expected error for empty output")
	}
}
