package index

import (
	"context"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// Sort orders accepted by Query.
const (
	SortLatest = "latest"
	SortViews  = "views"
)

// DefaultPerPage is the page size used when Filters.PerPage is unset.
const DefaultPerPage = 10

// Filters are the query parameters. All dimensions are AND-combined.
type Filters struct {
	Search   string // case-insensitive substring over title, excerpt, body
	Tag      string // matches tag slug exactly or display name case-insensitively
	Category string // exact path match
	Sort     string // SortLatest (default) or SortViews
	Page     int    // 1-based; values below 1 clamp to 1
	PerPage  int
	// IncludeDrafts admits unpublished documents. Admin/preview paths
	// only; public callers must leave it false.
	IncludeDrafts bool
}

// QueryResult is one page of matches plus the unpaginated total.
type QueryResult struct {
	Items []models.ListItem `json:"items"`
	Total int               `json:"total"`
}

// Query applies published-state, category, tag, and search filters in that
// order, sorts, and returns the requested page. A page past the end of the
// result set yields an empty item list with the correct total.
func (x *Index) Query(ctx context.Context, f Filters) (*QueryResult, error) {
	docs, err := x.Documents(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(f.Search)
	matched := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if !d.Published && !f.IncludeDrafts {
			continue
		}
		if f.Category != "" && d.Category != f.Category {
			continue
		}
		if f.Tag != "" && !hasTag(d, f.Tag) {
			continue
		}
		if needle != "" && !matchesSearch(d, needle) {
			continue
		}
		matched = append(matched, d)
	}

	x.sortDocs(matched, f.Sort)

	total := len(matched)
	page := f.Page
	if page < 1 {
		page = 1
	}
	per := f.PerPage
	if per <= 0 {
		per = DefaultPerPage
	}

	start := (page - 1) * per
	if start > total {
		start = total
	}
	end := start + per
	if end > total {
		end = total
	}

	items := make([]models.ListItem, 0, end-start)
	for _, d := range matched[start:end] {
		items = append(items, x.listItem(d))
	}
	return &QueryResult{Items: items, Total: total}, nil
}

// hasTag matches either the tag's slug exactly or its display name
// case-insensitively, tolerating both input forms.
func hasTag(d models.Document, filter string) bool {
	for _, t := range d.Tags {
		if t.Slug == filter || strings.EqualFold(t.Name, filter) {
			return true
		}
	}
	return false
}

func matchesSearch(d models.Document, needle string) bool {
	return strings.Contains(strings.ToLower(d.Title), needle) ||
		strings.Contains(strings.ToLower(d.Excerpt), needle) ||
		strings.Contains(strings.ToLower(d.Body), needle)
}

// sortDocs orders docs for pagination. Ties break on ID ascending so page
// boundaries stay deterministic for equal timestamps or view counts.
func (x *Index) sortDocs(docs []models.Document, order string) {
	switch order {
	case SortViews:
		sort.SliceStable(docs, func(i, j int) bool {
			vi, vj := x.views.Get(docs[i].ID), x.views.Get(docs[j].ID)
			if vi != vj {
				return vi > vj
			}
			return docs[i].ID < docs[j].ID
		})
	default:
		sortByRecency(docs)
	}
}

// sortByRecency orders newest-first with the ID tie-break.
func sortByRecency(docs []models.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].PublishedAt.Equal(docs[j].PublishedAt) {
			return docs[i].PublishedAt.After(docs[j].PublishedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}
