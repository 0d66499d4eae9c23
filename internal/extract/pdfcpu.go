// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PdfcpuBackend extracts text by parsing page content streams with pdfcpu.
// It copes with some files the native reader rejects, at the cost of cruder
// line reconstruction.
type PdfcpuBackend struct{}

// Name returns "pdfcpu".
func (PdfcpuBackend) Name() string { return "pdfcpu" }

// Extract returns the text of each page reconstructed from its content
// stream. Pages whose stream cannot be read yield empty strings.
func (PdfcpuBackend) Extract(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if ctx.PageCount == 0 {
		return nil, fmt.Errorf("%s has no pages", path)
	}

	pages := make([]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pages = append(pages, pageStreamText(ctx, pageNr))
	}
	return pages, nil
}

// pageStreamText returns the text of one page, or "" when its content
// stream cannot be read.
func pageStreamText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return streamText(data)
}

// literalRe matches PDF string literals, including escaped parentheses.
var literalRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)

// streamText walks the content stream operators that carry text: Tj and TJ
// show strings, ' shows a string on a fresh line, Td/TD/T* move the text
// cursor to a new line.
func streamText(data []byte) string {
	var sb strings.Builder
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasSuffix(line, "Tj"), strings.HasSuffix(line, "TJ"):
			for _, m := range literalRe.FindAllStringSubmatch(line, -1) {
				sb.WriteString(decodeLiteral(m[1]))
			}
		case strings.HasSuffix(line, "'") && strings.Contains(line, "("):
			for _, m := range literalRe.FindAllStringSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodeLiteral(m[1]))
			}
		case strings.HasSuffix(line, "Td"), strings.HasSuffix(line, "TD"), line == "T*":
			sb.WriteByte('\n')
		}
	}
	return tidyLines(sb.String())
}

// decodeLiteral resolves the escape sequences a PDF string literal may
// carry, including octal byte escapes.
func decodeLiteral(raw string) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// tidyLines collapses runs of spaces within each line and drops empty
// lines, keeping the line structure the operators implied.
func tidyLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
