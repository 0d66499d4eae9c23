// Package fetch downloads source PDFs and creates metadata records.
// Implements: prd006-fetch (R1-R5);
//
//	docs/ARCHITECTURE § Fetch.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Documents  []*types.Document
}

// Total returns the total number of URLs processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchDocument downloads a single PDF and writes its metadata record. If
// the PDF already exists on disk, it skips the download. The skipped
// return value indicates whether the download was skipped.
func FetchDocument(client *http.Client, rawURL string, cfg types.FetchConfig, w io.Writer) (doc *types.Document, skipped bool, err error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, false, fmt.Errorf("not an http(s) URL: %q", rawURL)
	}

	slug := Slug(rawURL)
	pdfPath := filepath.Join(cfg.DataDir, rawDir, slug+".pdf")
	metaPath := filepath.Join(cfg.DataDir, metadataDir, slug+".yaml")

	// Skip if the PDF already exists (R2.4).
	if _, err := os.Stat(pdfPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		d, readErr := readMetadata(metaPath)
		if readErr != nil {
			d = &types.Document{ID: slug, SourceURL: rawURL, PDFPath: pdfPath}
		}
		return d, true, nil
	}

	// Create directories (R2.3).
	for _, dir := range []string{
		filepath.Join(cfg.DataDir, rawDir),
		filepath.Join(cfg.DataDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "downloading: %s (%s)\n", slug, u.Host)

	// Download PDF to temp file, rename on success (R2.5).
	if err := downloadFile(client, rawURL, pdfPath, cfg); err != nil {
		return nil, false, fmt.Errorf("downloading %s: %w", slug, err)
	}

	// Build the Document record (R2.2).
	d := &types.Document{
		ID:               slug,
		SourceURL:        rawURL,
		PDFPath:          pdfPath,
		FetchedAt:        time.Now().UTC(),
		ExtractionStatus: types.ExtractionNone,
	}

	// Write metadata YAML (R5.1).
	if err := writeMetadata(d, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}

	return d, false, nil
}

// FetchBatch processes multiple URLs, printing per-item status and
// returning a summary. It continues after individual failures (R3.1) and
// applies a delay between consecutive downloads (R4.1).
func FetchBatch(client *http.Client, urls []string, cfg types.FetchConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, rawURL := range urls {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		doc, wasSkipped, err := FetchDocument(client, rawURL, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", rawURL, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Documents = append(result.Documents, doc)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// downloadFile fetches url to destPath using a temporary file (R2.5).
// It sets User-Agent (R4.2) and requests PDF via Accept header.
// The HTTP client handles redirect following.
func downloadFile(client *http.Client, url, destPath string, cfg types.FetchConfig) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// writeMetadata writes a Document record to a YAML file (R5.1).
func writeMetadata(doc *types.Document, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// readMetadata reads a Document record from a YAML file.
func readMetadata(path string) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc types.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
