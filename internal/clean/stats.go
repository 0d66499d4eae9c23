// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clean

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// MeasureStructure parses a cleaned Markdown body and counts its structural
// elements. The counts go into the pair set metadata and the corpus index,
// where they separate well-structured documents from extraction mush.
func MeasureStructure(body string) types.Structure {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader([]byte(body)))

	var s types.Structure
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Heading:
			s.Headings++
		case *ast.ListItem:
			s.ListItems++
		case *ast.Paragraph:
			s.Paragraphs++
		}
		return ast.WalkContinue, nil
	})
	return s
}
