// Package models defines the domain types for Ansuz.
package models

import "time"

// Author identifies the writer of a document.
type Author struct {
	Name string `json:"name"`
}

// Tag is one taxonomy label carried by a document. Slug is derived from
// Name through the shared slugification algorithm, so tag filters match
// regardless of which form the caller supplies.
type Tag struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Document represents one parsed content file in the corpus. The loader
// exclusively constructs Documents; content fields are never mutated after
// load. Views is the only post-load mutable field, owned by the index's
// view counter and populated on read.
type Document struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Excerpt       string    `json:"excerpt"`
	Body          string    `json:"body"` // raw markdown, unrendered
	CoverImage    string    `json:"cover_image,omitempty"`
	Author        Author    `json:"author"`
	Published     bool      `json:"published"`
	PublishedAt   time.Time `json:"published_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Tags          []Tag     `json:"tags"`
	Category      string    `json:"category,omitempty"`
	Featured      bool      `json:"featured"`
	FeaturedOrder *int      `json:"featured_order,omitempty"`
	ReadingTime   int       `json:"reading_time"` // minutes
	Views         int64     `json:"views"`
	Path          string    `json:"path"` // content-root-relative source file
}

// ListItem is the body-less projection of Document returned by all list
// operations, so full bodies never travel with list responses.
type ListItem struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Excerpt       string    `json:"excerpt"`
	CoverImage    string    `json:"cover_image,omitempty"`
	Author        Author    `json:"author"`
	PublishedAt   time.Time `json:"published_at"`
	Tags          []Tag     `json:"tags"`
	Category      string    `json:"category,omitempty"`
	Featured      bool      `json:"featured"`
	FeaturedOrder *int      `json:"featured_order,omitempty"`
	ReadingTime   int       `json:"reading_time"`
	Views         int64     `json:"views"`
}

// Item returns the list projection of d.
func (d Document) Item() ListItem {
	return ListItem{
		ID:            d.ID,
		Slug:          d.Slug,
		Title:         d.Title,
		Excerpt:       d.Excerpt,
		CoverImage:    d.CoverImage,
		Author:        d.Author,
		PublishedAt:   d.PublishedAt,
		Tags:          d.Tags,
		Category:      d.Category,
		Featured:      d.Featured,
		FeaturedOrder: d.FeaturedOrder,
		ReadingTime:   d.ReadingTime,
		Views:         d.Views,
	}
}

// TagCount is the aggregate view of one tag across the published corpus.
type TagCount struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Category is one node in the derived category tree. Nodes reference each
// other by path rather than by pointer, so the tree stays acyclic and
// addressable through a flat map.
type Category struct {
	Path     string   `json:"path"`   // slash-joined segment path
	Name     string   `json:"name"`   // last path segment
	Parent   string   `json:"parent"` // path of immediate ancestor, empty for roots
	Level    int      `json:"level"`  // depth, 0 = root
	Count    int      `json:"count"`  // published documents with this exact path
	Children []string `json:"children,omitempty"`
}
