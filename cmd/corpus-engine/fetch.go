package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpus-engine/internal/fetch"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "corpus-engine/0.1"
	defaultDataDir   = "data"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [urls...]",
	Short: "Download source PDFs into the data directory",
	Long: `Fetch downloads PDF documents from the given URLs (or a URL list file)
into data/raw/ and creates metadata records in data/metadata/. Existing
documents are skipped.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	fetchCmd.Flags().String("data-dir", defaultDataDir, "base data directory")
	fetchCmd.Flags().String("url-file", "", "file with one PDF URL per line (# comments allowed)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	urls := args
	urlFile, _ := cmd.Flags().GetString("url-file")
	if urlFile != "" {
		fromFile, err := fetch.ReadURLList(urlFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("provide one or more PDF URLs or --url-file")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	dataDir, _ := cmd.Flags().GetString("data-dir")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay: delay,
		DataDir:       dataDir,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	result := fetch.FetchBatch(client, urls, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d download(s) failed", result.Failed)
	}
	return nil
}
