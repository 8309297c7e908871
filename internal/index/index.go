// Package index holds the in-memory document corpus and answers filtered,
// sorted, paginated queries and derived views against it, with every
// expensive read routed through the cache layer.
package index

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/ansuz/internal/cache"
	"github.com/starford/ansuz/internal/models"
)

// Cache keys used by the index.
const (
	keyCorpus     = "corpus"
	keyTags       = "tags"
	keyCategories = "categories"
	keyLatest     = "latest"
)

// Invalidation tags understood by the index's caches. Invalidating
// TagPosts forces a fresh corpus load on the next query.
const (
	TagPosts    = "posts"
	TagFeatured = "featured"
	TagLatest   = "latest"
	TagTags     = "tags"
)

// PostTag returns the per-slug invalidation tag for one document.
func PostTag(slug string) string { return "post:" + slug }

// TTLs groups the lifetimes of the index's logical caches.
type TTLs struct {
	Corpus  time.Duration // full corpus load
	Post    time.Duration // per-slug lookup of a published document
	Derived time.Duration // featured list, latest post, category tree
	Tags    time.Duration // tag aggregate
}

// CorpusLoader produces the full document set. *loader.Loader implements
// it; tests substitute counting stubs.
type CorpusLoader interface {
	LoadAll(ctx context.Context) ([]models.Document, error)
}

// Index answers queries over the corpus. All methods are safe for
// concurrent use; each operates on whatever corpus snapshot the cache
// currently holds.
type Index struct {
	loader CorpusLoader
	cache  *cache.Store
	ttl    TTLs
	logger *slog.Logger

	views    *ViewCounter
	lastGood atomic.Pointer[[]models.Document]
}

// New creates an Index reading through c with the given cache lifetimes.
func New(l CorpusLoader, c *cache.Store, ttl TTLs, logger *slog.Logger) *Index {
	return &Index{
		loader: l,
		cache:  c,
		ttl:    ttl,
		logger: logger,
		views:  NewViewCounter(),
	}
}

// Documents returns the current corpus snapshot, reloading through the
// cache when the cached set has expired or been invalidated.
func (x *Index) Documents(ctx context.Context) ([]models.Document, error) {
	return cache.Memoize(ctx, x.cache, keyCorpus, x.ttl.Corpus, []string{TagPosts}, x.loadAll)
}

// loadAll is the corpus cache producer. A failed reload falls back to the
// last successfully loaded set, so a transient filesystem failure never
// replaces a valid corpus with emptiness.
func (x *Index) loadAll(ctx context.Context) ([]models.Document, error) {
	docs, err := x.loader.LoadAll(ctx)
	if err != nil {
		if prev := x.lastGood.Load(); prev != nil {
			x.logger.Warn("index: reload failed, serving last good corpus",
				slog.String("error", err.Error()))
			return *prev, nil
		}
		return nil, err
	}
	x.lastGood.Store(&docs)
	return docs, nil
}

// CacheStats exposes the underlying cache counters.
func (x *Index) CacheStats() cache.Stats { return x.cache.Stats() }

// Stats summarizes the loaded corpus.
type Stats struct {
	Documents  int `json:"documents"`
	Published  int `json:"published"`
	Drafts     int `json:"drafts"`
	Tags       int `json:"tags"`
	Categories int `json:"categories"`
}

// CorpusStats counts documents, tags, and categories in the current corpus.
func (x *Index) CorpusStats(ctx context.Context) (*Stats, error) {
	docs, err := x.Documents(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{Documents: len(docs)}
	tags := make(map[string]struct{})
	cats := make(map[string]struct{})
	for _, d := range docs {
		if d.Published {
			st.Published++
		} else {
			st.Drafts++
		}
		for _, t := range d.Tags {
			tags[t.Slug] = struct{}{}
		}
		if d.Category != "" {
			cats[d.Category] = struct{}{}
		}
	}
	st.Tags = len(tags)
	st.Categories = len(cats)
	return st, nil
}

// published filters docs down to the published set.
func published(docs []models.Document) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if d.Published {
			out = append(out, d)
		}
	}
	return out
}

// listItem projects d with its current view count filled in.
func (x *Index) listItem(d models.Document) models.ListItem {
	d.Views = x.views.Get(d.ID)
	return d.Item()
}
