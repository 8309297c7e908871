package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ansuz/internal/storage"
)

// watchDebounce batches bursts of file events (editor saves often fire
// several) into one invalidation pass.
const watchDebounce = 200 * time.Millisecond

// Watch monitors the content root with fsnotify and invalidates the
// affected cache tags when content files change, so the next query
// observes fresh content without waiting out a TTL. It blocks until ctx
// is cancelled. New directories created at runtime are added to the
// watch list. cb, if non-nil, is called with the invalidated tags after
// each pass.
func (x *Index) Watch(ctx context.Context, root string, exts []string, cb func(tags []string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	x.logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var fire <-chan time.Time
	pending := make(map[string]struct{}) // filename-derived slugs touched since last flush

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			fire = timer.C
		} else {
			timer.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			x.logger.Info("watcher: stopped")
			return nil

		case <-fire:
			tags := []string{TagPosts, TagFeatured, TagLatest, TagTags}
			for s := range pending {
				tags = append(tags, PostTag(s))
			}
			for _, t := range tags {
				x.cache.Invalidate(t)
			}
			x.logger.Info("watcher: invalidated",
				slog.Int("tags", len(tags)),
				slog.Int("files", len(pending)))
			pending = make(map[string]struct{})
			if cb != nil {
				cb(tags)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// New directories join the watch list; their contents arrive
			// as further events or get picked up on the next reload.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						x.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}

			if !storage.HasExt(ev.Name, exts) {
				continue
			}

			// The slug here comes from the filename, so a front-matter
			// slug override is not matched by its per-slug tag. That is
			// covered anyway: every per-document entry also carries
			// TagPosts, which the flush always invalidates.
			base := filepath.Base(ev.Name)
			pending[strings.TrimSuffix(base, filepath.Ext(base))] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			x.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
