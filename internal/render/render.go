// Package render compiles Markdown document bodies into HTML plus a
// heading-based table of contents, caching compilations by a fingerprint
// of the raw body.
package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/ansuz/internal/cache"
	"github.com/starford/ansuz/internal/fingerprint"
)

// CacheTag is the invalidation tag carried by rendered-body cache entries.
const CacheTag = "markdown"

// Heading is one table-of-contents entry. ID matches the rendered
// heading's anchor byte-for-byte.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Result is the compiled form of one document body.
type Result struct {
	HTML string
	TOC  []Heading
}

// Renderer compiles Markdown into HTML. Compilations are cached under a
// fingerprint of the body, so identical content shares one entry even
// across different documents, and any edit naturally keys a fresh render.
type Renderer struct {
	md    goldmark.Markdown
	cache *cache.Store
	ttl   time.Duration
}

// New creates a Renderer whose compilations live in store for ttl.
func New(store *cache.Store, ttl time.Duration) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			gparser.WithASTTransformers(
				util.Prioritized(&admonitionTransformer{}, 500),
			),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(
				util.Prioritized(&admonitionRenderer{}, 500),
			),
		),
	)
	return &Renderer{md: md, cache: store, ttl: ttl}
}

// Render compiles body and extracts its level-2/3 table of contents.
func (r *Renderer) Render(ctx context.Context, body string) (*Result, error) {
	key := "render:" + fingerprint.SumString(body)
	return cache.Memoize(ctx, r.cache, key, r.ttl, []string{CacheTag}, func(context.Context) (*Result, error) {
		return r.compile([]byte(body))
	})
}

func (r *Renderer) compile(src []byte) (*Result, error) {
	doc := r.md.Parser().Parse(text.NewReader(src))
	toc := assignHeadingIDs(doc, src)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Result{HTML: buf.String(), TOC: toc}, nil
}
