// Package parser extracts typed front-matter and the Markdown body from
// raw content files.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Author is the author block of a front-matter header.
type Author struct {
	Name string `yaml:"name"`
}

// Validate checks the author block's required fields.
func (a Author) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
	)
}

// FrontMatter is the typed metadata header of a content file.
//
// Title, Excerpt, Date, Tags, Author.Name, and Published are required;
// a file missing any of them is rejected. Published uses a pointer so an
// explicit `published: false` (a draft) is distinguishable from a missing
// field.
type FrontMatter struct {
	Title         string   `yaml:"title"`
	Excerpt       string   `yaml:"excerpt"`
	Date          string   `yaml:"date"`
	Tags          []string `yaml:"tags"`
	Author        Author   `yaml:"author"`
	Published     *bool    `yaml:"published"`
	Slug          string   `yaml:"slug"`
	Category      string   `yaml:"category"`
	CoverImage    string   `yaml:"coverImage"`
	Featured      bool     `yaml:"featured"`
	FeaturedOrder *int     `yaml:"featuredOrder"`
}

// Validate checks the required fields of the header.
func (fm FrontMatter) Validate() error {
	return validation.ValidateStruct(&fm,
		validation.Field(&fm.Title, validation.Required),
		validation.Field(&fm.Excerpt, validation.Required),
		validation.Field(&fm.Date, validation.Required, validation.By(checkDate)),
		validation.Field(&fm.Tags, validation.NotNil),
		validation.Field(&fm.Author),
		validation.Field(&fm.Published, validation.NotNil),
	)
}

// Result holds the output of parsing one content file.
type Result struct {
	Meta FrontMatter
	Body string
}

// Parse splits raw bytes into a validated front-matter header and the
// Markdown body. Any structural or validation failure is an error; the
// caller decides whether that rejects one file or the whole load.
func Parse(data []byte) (*Result, error) {
	meta, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, err
	}
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("front-matter: %w", err)
	}
	return &Result{Meta: *meta, Body: body}, nil
}

// splitFrontMatter separates the YAML header (between leading ---
// delimiters) from the Markdown body.
func splitFrontMatter(data []byte) (*FrontMatter, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, "", errors.New("missing front-matter block")
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", errors.New("unterminated front-matter block")
	}

	var fm FrontMatter
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return nil, "", fmt.Errorf("front-matter: %w", err)
	}

	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return &fm, body, nil
}

// dateLayouts are the accepted forms of the front-matter date field.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the front-matter date field, accepting common ISO-8601
// forms with or without a time component.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func checkDate(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil // Required already covers the empty case.
	}
	_, err := ParseDate(s)
	return err
}
