package internal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/testutil"
)

func testEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Content.Path = root
	eng, err := NewEngine(cfg, testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	return eng, root
}

func TestEngine_EndToEnd(t *testing.T) {
	eng, root := testEngine(t)
	ctx := context.Background()

	testutil.Write(t, root, testutil.File{
		Path:      "engineering/caching.md",
		Title:     "Caching Strategies",
		Date:      "2024-05-20",
		Tags:      []string{"Go", "Performance"},
		Published: true,
		Body:      "## Why Cache\n\nBecause disks are slow.\n\n## How\n\n> [!TIP] Measure first.\n",
	})
	testutil.Write(t, root, testutil.File{
		Path:      "drafts-in-progress.md",
		Title:     "Unfinished",
		Date:      "2024-05-25",
		Published: false,
	})

	res, err := eng.Index.Query(ctx, index.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || res.Items[0].Slug != "caching" {
		t.Fatalf("query = %+v, want the one published post", res)
	}
	if res.Items[0].Category != "engineering" {
		t.Errorf("category = %q, want engineering", res.Items[0].Category)
	}

	doc, err := eng.Index.BySlug(ctx, "caching", false)
	if err != nil {
		t.Fatal(err)
	}
	out, err := eng.Renderer.Render(ctx, doc.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.TOC) != 2 {
		t.Fatalf("toc = %+v, want two level-2 entries", out.TOC)
	}
	if out.TOC[0].ID != "why-cache" {
		t.Errorf("toc[0].ID = %q", out.TOC[0].ID)
	}

	// The index and renderer share one cache store, so a posts
	// invalidation surfaces new content while rendered bodies survive.
	testutil.Write(t, root, testutil.File{
		Path:      "fresh.md",
		Title:     "Fresh",
		Date:      "2024-05-27",
		Published: true,
	})
	eng.Cache.Invalidate(index.TagPosts)

	res, err = eng.Index.Query(ctx, index.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 {
		t.Fatalf("total = %d after invalidation, want 2", res.Total)
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	root := t.TempDir()
	testutil.Write(t, root, testutil.File{Path: "a.md", Published: true})

	cfg := NewDefaultConfig()
	cfg.Content.Path = root

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, WithConfig(cfg), WithLogger(testutil.Logger()))
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not stop on cancel")
	}
}

func TestNewEngine_MissingRoot(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Path = filepath.Join(t.TempDir(), "missing")
	if _, err := NewEngine(cfg, testutil.Logger()); err == nil {
		t.Fatal("expected error for missing content root")
	}
}
