// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// slugPattern matches runs of characters that are unsafe in filenames.
var slugPattern = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Slug returns a filesystem-safe filename stem for a download URL, derived
// from the final path segment. URLs without a usable segment get a hash
// slug instead.
func Slug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return urlHashSlug(rawURL)
	}
	base := strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
	base = slugPattern.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")
	if base == "" || base == "/" {
		return urlHashSlug(rawURL)
	}
	return base
}

func urlHashSlug(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return fmt.Sprintf("url-%x", h[:8])
}

// ReadURLList parses a URL list file: one URL per line, blank lines and
// #-comment lines ignored (R1.2).
func ReadURLList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}

	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, nil
}
