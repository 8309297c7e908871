// Package loader walks the content root and normalizes every content file
// into the uniform Document model.
package loader

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/slug"
	"github.com/starford/ansuz/internal/storage"
)

// wordsPerMinute is the reading-speed assumption behind ReadingTime.
const wordsPerMinute = 200

// Loader builds the in-memory corpus from the content root.
type Loader struct {
	store  storage.Provider
	exts   []string
	logger *slog.Logger
}

// New creates a Loader reading files with the given extensions.
func New(store storage.Provider, exts []string, logger *slog.Logger) *Loader {
	return &Loader{store: store, exts: exts, logger: logger}
}

// LoadAll reads every content file under the root and returns the corpus.
// Malformed files are rejected and logged individually; only an unreadable
// root fails the load as a whole. When two files resolve to the same slug
// the last one loaded wins, with a warning naming both files.
func (l *Loader) LoadAll(ctx context.Context) ([]models.Document, error) {
	metas, err := l.store.List(l.exts)
	if err != nil {
		return nil, &apperr.LoadError{Root: "content root", Err: err}
	}

	docs := make([]models.Document, 0, len(metas))
	seen := make(map[string]int, len(metas)) // slug → index into docs

	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := l.store.Read(m.Path)
		if err != nil {
			l.logger.Warn("loader: read failed",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
			continue
		}

		doc, err := l.build(m, data)
		if err != nil {
			l.logger.Warn("loader: rejected file",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
			continue
		}

		if prev, ok := seen[doc.Slug]; ok {
			l.logger.Warn("loader: slug collision, last file wins",
				slog.String("slug", doc.Slug),
				slog.String("kept", doc.Path),
				slog.String("shadowed", docs[prev].Path))
			docs[prev] = *doc
			continue
		}
		seen[doc.Slug] = len(docs)
		docs = append(docs, *doc)
	}

	l.logger.Debug("loader: corpus loaded",
		slog.Int("files", len(metas)),
		slog.Int("documents", len(docs)))
	return docs, nil
}

// build normalizes one parsed file into a Document.
func (l *Loader) build(m storage.FileMeta, data []byte) (*models.Document, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, &apperr.ParseError{Path: m.Path, Reason: err.Error()}
	}
	meta := res.Meta

	publishedAt, err := parser.ParseDate(meta.Date)
	if err != nil {
		return nil, &apperr.ParseError{Path: m.Path, Reason: err.Error()}
	}

	// Explicit front-matter slug wins, otherwise the filename without
	// its extension.
	s := meta.Slug
	if s == "" {
		base := path.Base(m.Path)
		s = strings.TrimSuffix(base, path.Ext(base))
	}

	// A file under a subdirectory belongs to that directory's category;
	// the front-matter category only applies to root-level files.
	category := meta.Category
	if dir := path.Dir(m.Path); dir != "." {
		category = dir
	}

	return &models.Document{
		ID:            s,
		Slug:          s,
		Title:         meta.Title,
		Excerpt:       meta.Excerpt,
		Body:          res.Body,
		CoverImage:    meta.CoverImage,
		Author:        models.Author{Name: meta.Author.Name},
		Published:     meta.Published != nil && *meta.Published,
		PublishedAt:   publishedAt,
		CreatedAt:     m.ModTime,
		UpdatedAt:     m.ModTime,
		Tags:          buildTags(meta.Tags),
		Category:      category,
		Featured:      meta.Featured,
		FeaturedOrder: meta.FeaturedOrder,
		ReadingTime:   readingTime(res.Body),
		Path:          m.Path,
	}, nil
}

// buildTags slugifies tag names, dropping empties and duplicates.
func buildTags(names []string) []models.Tag {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		sl := slug.Make(name)
		if sl == "" {
			continue
		}
		if _, dup := seen[sl]; dup {
			continue
		}
		seen[sl] = struct{}{}
		tags = append(tags, models.Tag{Slug: sl, Name: name})
	}
	return tags
}

// readingTime estimates minutes to read body, never less than one.
func readingTime(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
