// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// NativeBackend extracts text with the pure-Go pdf reader. It is the
// default: no external binary, good results on digitally-produced PDFs.
type NativeBackend struct{}

// Name returns "native".
func (NativeBackend) Name() string { return "native" }

// Extract returns the plain text of each page. Pages the reader cannot
// decode come back as empty strings rather than failing the document.
func (NativeBackend) Extract(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	if total == 0 {
		return nil, fmt.Errorf("%s has no pages", path)
	}

	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
