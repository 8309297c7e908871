package render

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/ansuz/internal/cache"
)

func newRenderer() (*Renderer, *cache.Store) {
	c := cache.New()
	return New(c, time.Hour), c
}

func TestRender_BasicHTML(t *testing.T) {
	r, _ := newRenderer()
	out, err := r.Render(context.Background(), "# Title\n\nSome **bold** text.\n")
	require.NoError(t, err)
	assert.Contains(t, out.HTML, "<strong>bold</strong>")
}

func TestRender_TOCLevels(t *testing.T) {
	body := `# Document Title

## First Section

### Nested Topic

#### Too Deep

## Second Section
`
	r, _ := newRenderer()
	out, err := r.Render(context.Background(), body)
	require.NoError(t, err)

	require.Len(t, out.TOC, 3, "only levels 2 and 3 navigate")
	assert.Equal(t, Heading{ID: "first-section", Text: "First Section", Level: 2}, out.TOC[0])
	assert.Equal(t, Heading{ID: "nested-topic", Text: "Nested Topic", Level: 3}, out.TOC[1])
	assert.Equal(t, Heading{ID: "second-section", Text: "Second Section", Level: 2}, out.TOC[2])
}

func TestRender_AnchorsMatchTOC(t *testing.T) {
	r, _ := newRenderer()
	out, err := r.Render(context.Background(), "## Getting Started\n\ntext\n")
	require.NoError(t, err)

	require.Len(t, out.TOC, 1)
	assert.Contains(t, out.HTML, `<h2 id="getting-started">`,
		"rendered anchor and TOC id must match byte-for-byte")
}

func TestRender_DuplicateHeadingsGetUniqueIDs(t *testing.T) {
	body := "## Setup\n\n## Setup\n\n## Setup\n"
	r, _ := newRenderer()
	out, err := r.Render(context.Background(), body)
	require.NoError(t, err)

	require.Len(t, out.TOC, 3)
	assert.Equal(t, "setup", out.TOC[0].ID)
	assert.Equal(t, "setup-2", out.TOC[1].ID)
	assert.Equal(t, "setup-3", out.TOC[2].ID)
}

func TestRender_HeadingSlugsMatchTagAlgorithm(t *testing.T) {
	r, _ := newRenderer()
	out, err := r.Render(context.Background(), "## Deploying Next.js Apps\n")
	require.NoError(t, err)
	require.Len(t, out.TOC, 1)
	assert.Equal(t, "deploying-nextjs-apps", out.TOC[0].ID)
}

func TestRender_AdmonitionRecognized(t *testing.T) {
	r, _ := newRenderer()
	out, err := r.Render(context.Background(), "> [!NOTE] Remember to hydrate.\n")
	require.NoError(t, err)

	assert.Contains(t, out.HTML, `class="admonition admonition-note"`)
	assert.Contains(t, out.HTML, `class="admonition-icon"`)
	assert.Contains(t, out.HTML, "Remember to hydrate.")
	assert.NotContains(t, out.HTML, "[!NOTE]", "marker is stripped from output")
	assert.NotContains(t, out.HTML, "<blockquote>")
}

func TestRender_AdmonitionMarkerStrippedAcrossInlineSplits(t *testing.T) {
	// The inline parser breaks "[!TIP] ..." into separate text nodes at
	// the bracket; stripping must survive that split.
	r, _ := newRenderer()
	out, err := r.Render(context.Background(), "> [!TIP] Measure first.\n")
	require.NoError(t, err)

	assert.Contains(t, out.HTML, `class="admonition admonition-tip"`)
	assert.Contains(t, out.HTML, "Measure first.")
	assert.NotContains(t, out.HTML, "[!TIP]")
	assert.NotContains(t, out.HTML, "<blockquote>")
}

func TestRender_AdmonitionStyledBody(t *testing.T) {
	r, _ := newRenderer()
	out, err := r.Render(context.Background(), "> [!WARNING] **Back up** before migrating.\n> Second line.\n")
	require.NoError(t, err)

	assert.Contains(t, out.HTML, `class="admonition admonition-warning"`)
	assert.Contains(t, out.HTML, "<strong>Back up</strong>")
	assert.Contains(t, out.HTML, "Second line.")
	assert.NotContains(t, out.HTML, "[!WARNING]")
}

func TestRender_AdmonitionUnrecognizedStaysQuote(t *testing.T) {
	r, _ := newRenderer()
	out, err := r.Render(context.Background(), "> [!BANANA] Just a quote.\n")
	require.NoError(t, err)

	assert.Contains(t, out.HTML, "<blockquote>")
	assert.Contains(t, out.HTML, "[!BANANA]", "unknown types render as ordinary quoted text")
	assert.NotContains(t, out.HTML, "admonition")
}

func TestRender_PlainQuoteUntouched(t *testing.T) {
	r, _ := newRenderer()
	out, err := r.Render(context.Background(), "> An ordinary quotation.\n")
	require.NoError(t, err)
	assert.Contains(t, out.HTML, "<blockquote>")
	assert.NotContains(t, out.HTML, "admonition")
}

func TestRender_FingerprintReuse(t *testing.T) {
	r, c := newRenderer()
	ctx := context.Background()
	body := "# Shared\n\nIdentical content.\n"

	first, err := r.Render(ctx, body)
	require.NoError(t, err)
	second, err := r.Render(ctx, body)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	st := c.Stats()
	assert.Equal(t, int64(1), st.Misses, "identical bodies share one compilation")
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, 1, st.Entries)

	// A single-character edit keys a fresh compilation.
	_, err = r.Render(ctx, body+"!")
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.Stats().Misses)
	assert.Equal(t, 2, c.Stats().Entries)
}

func TestRender_MarkdownTagInvalidation(t *testing.T) {
	r, c := newRenderer()
	ctx := context.Background()
	body := "param text\n"

	_, err := r.Render(ctx, body)
	require.NoError(t, err)

	c.Invalidate(CacheTag)

	_, err = r.Render(ctx, body)
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.Stats().Misses, "tag invalidation forces recompilation")
}

func TestRender_GFMTables(t *testing.T) {
	body := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	r, _ := newRenderer()
	out, err := r.Render(context.Background(), body)
	require.NoError(t, err)
	assert.Contains(t, out.HTML, "<table>")
}
