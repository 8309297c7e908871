package index

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/cache"
	"github.com/starford/ansuz/internal/models"
)

// Featured returns up to limit published documents marked featured,
// ordered by FeaturedOrder ascending with unordered ones after all
// ordered ones, backfilled with the most recent non-featured documents.
// The backfill keeps the homepage full even when editors under-curate the
// featured set.
func (x *Index) Featured(ctx context.Context, limit int) ([]models.ListItem, error) {
	if limit <= 0 {
		return []models.ListItem{}, nil
	}
	key := fmt.Sprintf("featured:%d", limit)
	return cache.Memoize(ctx, x.cache, key, x.ttl.Derived, []string{TagPosts, TagFeatured}, func(ctx context.Context) ([]models.ListItem, error) {
		docs, err := x.Documents(ctx)
		if err != nil {
			return nil, err
		}

		var curated, rest []models.Document
		for _, d := range published(docs) {
			if d.Featured {
				curated = append(curated, d)
			} else {
				rest = append(rest, d)
			}
		}

		sort.SliceStable(curated, func(i, j int) bool {
			oi, oj := curated[i].FeaturedOrder, curated[j].FeaturedOrder
			switch {
			case oi != nil && oj != nil:
				return *oi < *oj
			case oi != nil:
				return true
			default:
				// Both unordered: keep position stability.
				return false
			}
		})
		if len(curated) > limit {
			curated = curated[:limit]
		}

		if missing := limit - len(curated); missing > 0 {
			sortByRecency(rest)
			if len(rest) > missing {
				rest = rest[:missing]
			}
			curated = append(curated, rest...)
		}

		items := make([]models.ListItem, 0, len(curated))
		for _, d := range curated {
			items = append(items, x.listItem(d))
		}
		return items, nil
	})
}

// BySlug returns the full document for slug with its current view count.
// Drafts are only visible when includeDraft is set; draft lookups bypass
// the cache entirely so previews always observe the latest state.
func (x *Index) BySlug(ctx context.Context, slug string, includeDraft bool) (*models.Document, error) {
	key := "post:" + slug
	ttl := x.ttl.Post
	if includeDraft {
		key += ":draft"
		ttl = 0
	}
	doc, err := cache.Memoize(ctx, x.cache, key, ttl, []string{TagPosts, PostTag(slug)}, func(ctx context.Context) (*models.Document, error) {
		docs, err := x.Documents(ctx)
		if err != nil {
			return nil, err
		}
		for i := range docs {
			if docs[i].Slug != slug {
				continue
			}
			if !docs[i].Published && !includeDraft {
				return nil, apperr.ErrNotFound
			}
			d := docs[i]
			return &d, nil
		}
		return nil, apperr.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	// Copy before touching Views so the cached document stays pristine.
	d := *doc
	d.Views = x.views.Get(d.ID)
	return &d, nil
}

// Neighbors are the documents adjacent to one post in the published set
// ordered newest-first: Previous is the next-older, Next the next-newer.
type Neighbors struct {
	Previous *models.ListItem `json:"previous"`
	Next     *models.ListItem `json:"next"`
}

// Adjacent locates id in the published ordering and returns its
// neighbors. An unknown id yields both nil rather than an error, since a
// stale reference is an expected condition.
func (x *Index) Adjacent(ctx context.Context, id string) (*Neighbors, error) {
	docs, err := x.Documents(ctx)
	if err != nil {
		return nil, err
	}
	pub := published(docs)
	sortByRecency(pub)

	pos := -1
	for i := range pub {
		if pub[i].ID == id {
			pos = i
			break
		}
	}
	n := &Neighbors{}
	if pos < 0 {
		return n, nil
	}
	if pos+1 < len(pub) {
		it := x.listItem(pub[pos+1])
		n.Previous = &it
	}
	if pos > 0 {
		it := x.listItem(pub[pos-1])
		n.Next = &it
	}
	return n, nil
}

// Related returns up to limit published documents other than id sharing
// at least one of tagSlugs, newest first. An empty tag set returns an
// empty list immediately: relatedness implies topical overlap, so unlike
// Featured there is no recency backfill.
func (x *Index) Related(ctx context.Context, id string, tagSlugs []string, limit int) ([]models.ListItem, error) {
	if len(tagSlugs) == 0 || limit <= 0 {
		return []models.ListItem{}, nil
	}
	docs, err := x.Documents(ctx)
	if err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(tagSlugs))
	for _, s := range tagSlugs {
		want[s] = struct{}{}
	}

	var matched []models.Document
	for _, d := range published(docs) {
		if d.ID == id {
			continue
		}
		for _, t := range d.Tags {
			if _, ok := want[t.Slug]; ok {
				matched = append(matched, d)
				break
			}
		}
	}
	sortByRecency(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	items := make([]models.ListItem, 0, len(matched))
	for _, d := range matched {
		items = append(items, x.listItem(d))
	}
	return items, nil
}

// Latest returns the most recent published document as a list projection,
// or ErrNotFound for an empty published set.
func (x *Index) Latest(ctx context.Context) (*models.ListItem, error) {
	return cache.Memoize(ctx, x.cache, keyLatest, x.ttl.Derived, []string{TagPosts, TagLatest}, func(ctx context.Context) (*models.ListItem, error) {
		docs, err := x.Documents(ctx)
		if err != nil {
			return nil, err
		}
		pub := published(docs)
		if len(pub) == 0 {
			return nil, apperr.ErrNotFound
		}
		sortByRecency(pub)
		it := x.listItem(pub[0])
		return &it, nil
	})
}

// Tags aggregates tag usage across the published corpus, sorted by
// display name ascending.
func (x *Index) Tags(ctx context.Context) ([]models.TagCount, error) {
	return cache.Memoize(ctx, x.cache, keyTags, x.ttl.Tags, []string{TagTags}, func(ctx context.Context) ([]models.TagCount, error) {
		docs, err := x.Documents(ctx)
		if err != nil {
			return nil, err
		}

		counts := make(map[string]*models.TagCount)
		for _, d := range published(docs) {
			for _, t := range d.Tags {
				tc, ok := counts[t.Slug]
				if !ok {
					tc = &models.TagCount{Slug: t.Slug, Name: t.Name}
					counts[t.Slug] = tc
				}
				tc.Count++
			}
		}

		out := make([]models.TagCount, 0, len(counts))
		for _, tc := range counts {
			out = append(out, *tc)
		}
		sort.Slice(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
		return out, nil
	})
}

// CategoryTree is the derived category hierarchy, nodes addressable by
// path through a flat map.
type CategoryTree struct {
	Nodes map[string]*models.Category `json:"nodes"`
	Roots []string                    `json:"roots"`
}

// Categories derives the category tree from the published corpus.
func (x *Index) Categories(ctx context.Context) (*CategoryTree, error) {
	return cache.Memoize(ctx, x.cache, keyCategories, x.ttl.Derived, []string{TagPosts}, func(ctx context.Context) (*CategoryTree, error) {
		docs, err := x.Documents(ctx)
		if err != nil {
			return nil, err
		}
		return buildCategoryTree(published(docs)), nil
	})
}

// buildCategoryTree builds the tree in two passes over a path-indexed node
// arena: materialize nodes (including intermediate ancestors), then
// resolve parent/child edges. A node whose parent path is unknown becomes
// a root rather than being dropped.
func buildCategoryTree(docs []models.Document) *CategoryTree {
	nodes := make(map[string]*models.Category)

	ensure := func(path string) *models.Category {
		if n, ok := nodes[path]; ok {
			return n
		}
		segs := strings.Split(path, "/")
		n := &models.Category{
			Path:   path,
			Name:   segs[len(segs)-1],
			Parent: strings.Join(segs[:len(segs)-1], "/"),
			Level:  len(segs) - 1,
		}
		nodes[path] = n
		return n
	}

	for _, d := range docs {
		if d.Category == "" {
			continue
		}
		segs := strings.Split(d.Category, "/")
		for i := range segs {
			ensure(strings.Join(segs[:i+1], "/"))
		}
		// Count is exact-match only; ancestors do not aggregate descendants.
		nodes[d.Category].Count++
	}

	t := &CategoryTree{Nodes: nodes}
	for path, n := range nodes {
		if n.Parent == "" {
			t.Roots = append(t.Roots, path)
			continue
		}
		p, ok := nodes[n.Parent]
		if !ok {
			// Dangling parent reference: promote to root instead of
			// silently dropping the category.
			n.Parent = ""
			t.Roots = append(t.Roots, path)
			continue
		}
		p.Children = append(p.Children, path)
	}

	sort.Strings(t.Roots)
	for _, n := range nodes {
		sort.Strings(n.Children)
	}
	return t
}
