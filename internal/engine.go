package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/ansuz/internal/cache"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/loader"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/storage"
)

// Engine bundles the wired core components for embedding callers: the
// cache-backed content index and the fingerprint-cached renderer share
// one cache store, so a single Invalidate reaches both.
type Engine struct {
	Config   *Config
	Logger   *slog.Logger
	Cache    *cache.Store
	Index    *index.Index
	Renderer *render.Renderer
}

// NewEngine wires storage, loader, cache, index, and renderer from cfg.
// A nil logger gets a JSON handler on stdout at the configured level.
func NewEngine(cfg *Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}

	store, err := storage.NewFS(cfg.Content.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	c := cache.New()
	l := loader.New(store, cfg.Content.Extensions, logger)
	idx := index.New(l, c, index.TTLs{
		Corpus:  cfg.Cache.CorpusTTL.Std(),
		Post:    cfg.Cache.PostTTL.Std(),
		Derived: cfg.Cache.DerivedTTL.Std(),
		Tags:    cfg.Cache.TagsTTL.Std(),
	}, logger)

	return &Engine{
		Config:   cfg,
		Logger:   logger,
		Cache:    c,
		Index:    idx,
		Renderer: render.New(c, cfg.Cache.RenderTTL.Std()),
	}, nil
}
