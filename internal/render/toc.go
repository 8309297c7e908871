package render

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/starford/ansuz/internal/slug"
)

// assignHeadingIDs walks doc, assigns a collision-resistant anchor id to
// every heading, and returns the level-2/3 entries in document order.
// Level 1 is reserved for the document title and levels below 3 would
// only clutter navigation, so neither appears in the TOC — but every
// heading still gets an anchor.
func assignHeadingIDs(doc ast.Node, src []byte) []Heading {
	seen := make(map[string]int)
	var toc []Heading

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		txt := headingText(h, src)
		id := anchorID(txt, seen)
		h.SetAttributeString("id", []byte(id))

		if h.Level == 2 || h.Level == 3 {
			toc = append(toc, Heading{ID: id, Text: txt, Level: h.Level})
		}
		return ast.WalkSkipChildren, nil
	})
	return toc
}

// headingText collects the plain text of a heading's inline children.
func headingText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
		case *ast.CodeSpan, *ast.Emphasis, *ast.Link:
			b.WriteString(headingText(c, src))
		}
	}
	return strings.TrimSpace(b.String())
}

// anchorID slugifies text through the shared slugger and suffixes
// duplicates so ids stay unique within one document.
func anchorID(text string, seen map[string]int) string {
	base := slug.Make(text)
	if base == "" {
		base = "section"
	}
	n := seen[base]
	seen[base]++
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n+1)
}
