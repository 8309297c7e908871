// Package testutil provides shared helpers for building temporary content
// roots in tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/storage"
)

// File describes one content file to write into a test corpus. Zero-value
// fields get reasonable defaults so tests only state what they assert on.
type File struct {
	Path          string // root-relative, e.g. "engineering/post.md"
	Title         string
	Excerpt       string
	Date          string // front-matter date, default "2024-01-01"
	Tags          []string
	Author        string
	Published     bool
	Slug          string // explicit front-matter override, optional
	Category      string // front-matter category, optional
	CoverImage    string
	Featured      bool
	FeaturedOrder *int
	Body          string
	Raw           string // when set, written verbatim instead of composing front-matter
}

// Write renders f as a front-matter content file under root.
func Write(t *testing.T, root string, f File) {
	t.Helper()

	abs := filepath.Join(root, filepath.FromSlash(f.Path))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}

	data := f.Raw
	if data == "" {
		data = compose(f)
	}
	if err := os.WriteFile(abs, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func compose(f File) string {
	if f.Title == "" {
		base := filepath.Base(f.Path)
		f.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if f.Excerpt == "" {
		f.Excerpt = "An excerpt."
	}
	if f.Date == "" {
		f.Date = "2024-01-01"
	}
	if f.Author == "" {
		f.Author = "Test Author"
	}
	if f.Tags == nil {
		f.Tags = []string{"general"}
	}
	if f.Body == "" {
		f.Body = "Hello, world."
	}

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", f.Title)
	fmt.Fprintf(&b, "excerpt: %q\n", f.Excerpt)
	fmt.Fprintf(&b, "date: %q\n", f.Date)
	b.WriteString("tags:\n")
	for _, tag := range f.Tags {
		fmt.Fprintf(&b, "  - %q\n", tag)
	}
	fmt.Fprintf(&b, "author:\n  name: %q\n", f.Author)
	fmt.Fprintf(&b, "published: %t\n", f.Published)
	if f.Slug != "" {
		fmt.Fprintf(&b, "slug: %q\n", f.Slug)
	}
	if f.Category != "" {
		fmt.Fprintf(&b, "category: %q\n", f.Category)
	}
	if f.CoverImage != "" {
		fmt.Fprintf(&b, "coverImage: %q\n", f.CoverImage)
	}
	if f.Featured {
		b.WriteString("featured: true\n")
	}
	if f.FeaturedOrder != nil {
		fmt.Fprintf(&b, "featuredOrder: %d\n", *f.FeaturedOrder)
	}
	b.WriteString("---\n\n")
	b.WriteString(f.Body)
	b.WriteString("\n")
	return b.String()
}

// ContentRoot creates a temporary content root with a storage provider.
func ContentRoot(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root, Logger())
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// Logger returns a logger that drops everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// IntPtr returns a pointer to n, for optional front-matter fields.
func IntPtr(n int) *int { return &n }
