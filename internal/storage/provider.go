// Package storage defines the content-root file-system abstraction.
package storage

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// FileMeta describes one content file found under the root.
type FileMeta struct {
	Path    string // root-relative, slash-separated
	ModTime time.Time
}

// Provider is the read-side interface over the content root. The engine
// never writes content; authoring happens outside this process.
type Provider interface {
	// List walks the whole tree and returns metadata for every file whose
	// extension is in exts. Unreadable subtrees are skipped with a
	// warning; only an unreadable root is fatal.
	List(exts []string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
}

// HasExt reports whether name carries one of the recognized content
// extensions. Extensions are compared case-insensitively and include the
// leading dot.
func HasExt(name string, exts []string) bool {
	ext := filepath.Ext(name)
	return slices.ContainsFunc(exts, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}
