package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Admonition is a callout block produced from the `> [!TYPE] text` quote
// syntax. Name is the lower-cased recognized type ("note", "tip", ...).
type Admonition struct {
	ast.BaseBlock
	Name string
}

var kindAdmonition = ast.NewNodeKind("Admonition")

// Kind implements ast.Node.
func (n *Admonition) Kind() ast.NodeKind { return kindAdmonition }

// Dump implements ast.Node.
func (n *Admonition) Dump(src []byte, level int) {
	ast.DumpHelper(n, src, level, map[string]string{"Name": n.Name}, nil)
}

// admonitionIcons maps recognized callout types to their icon glyphs.
// A blockquote with an unrecognized type renders as an ordinary quote.
var admonitionIcons = map[string]string{
	"note":    "ℹ",
	"tip":     "💡",
	"warning": "⚠",
	"danger":  "🔥",
}

var admonitionMarker = regexp.MustCompile(`^\[!([A-Z]+)\][ \t]*`)

// admonitionTransformer rewrites `> [!TYPE]` blockquotes into Admonition
// nodes after parsing, stripping the marker from the text.
type admonitionTransformer struct{}

var _ gparser.ASTTransformer = (*admonitionTransformer)(nil)

func (t *admonitionTransformer) Transform(doc *ast.Document, reader text.Reader, _ gparser.Context) {
	source := reader.Source()

	var quotes []*ast.Blockquote
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if bq, ok := n.(*ast.Blockquote); ok && entering {
			quotes = append(quotes, bq)
		}
		return ast.WalkContinue, nil
	})

	for _, bq := range quotes {
		name, ok := calloutName(bq, source)
		if !ok {
			continue
		}
		ad := &Admonition{Name: name}
		for c := bq.FirstChild(); c != nil; {
			next := c.NextSibling()
			ad.AppendChild(ad, c)
			c = next
		}
		parent := bq.Parent()
		parent.ReplaceChild(parent, bq, ad)
	}
}

// calloutName inspects the first source line of a blockquote's opening
// paragraph for a `[!TYPE]` marker. A recognized marker is stripped so it
// never renders; anything else leaves the quote untouched.
func calloutName(bq *ast.Blockquote, source []byte) (string, bool) {
	para, ok := bq.FirstChild().(*ast.Paragraph)
	if !ok || para.Lines().Len() == 0 {
		return "", false
	}
	line := para.Lines().At(0)

	m := admonitionMarker.FindSubmatch(line.Value(source))
	if m == nil {
		return "", false
	}
	name := strings.ToLower(string(m[1]))
	if _, known := admonitionIcons[name]; !known {
		return "", false
	}

	stripMarker(para, line.Start+len(m[0]))
	return name, true
}

// stripMarker drops the paragraph's leading inline text up to cut, the
// source offset just past the marker. The inline parser splits the marker
// across Text nodes (the "[" opens as a link bracket), so the prefix is
// consumed node by node rather than trimmed from a single segment.
func stripMarker(para *ast.Paragraph, cut int) {
	for c := para.FirstChild(); c != nil; {
		txt, ok := c.(*ast.Text)
		if !ok || txt.Segment.Start >= cut {
			return
		}
		if txt.Segment.Stop <= cut {
			next := c.NextSibling()
			para.RemoveChild(para, c)
			c = next
			continue
		}
		seg := txt.Segment
		seg.Start = cut
		txt.Segment = seg
		return
	}
}

// admonitionRenderer emits the classed wrapper around an admonition's
// children, which render through the default node renderers.
type admonitionRenderer struct{}

var _ renderer.NodeRenderer = (*admonitionRenderer)(nil)

func (r *admonitionRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(kindAdmonition, r.render)
}

func (r *admonitionRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Admonition)
	if entering {
		fmt.Fprintf(w, "<div class=\"admonition admonition-%s\"><span class=\"admonition-icon\">%s</span>\n",
			n.Name, admonitionIcons[n.Name])
	} else {
		_, _ = w.WriteString("</div>\n")
	}
	return ast.WalkContinue, nil
}
