package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// Run starts the watch daemon: it performs an initial corpus load, then
// keeps the cache invalidated in step with content changes until the
// context is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	eng, err := NewEngine(cfg, app.logger)
	if err != nil {
		return err
	}
	slog.SetDefault(eng.Logger)

	eng.Logger.Info("Configuration loaded",
		slog.String("content_path", cfg.Content.Path),
		slog.Duration("corpus_ttl", cfg.Cache.CorpusTTL.Std()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Warm the corpus cache before watching.
	docs, err := eng.Index.Documents(ctx)
	if err != nil {
		eng.Logger.Warn("initial load failed", slog.String("error", err.Error()))
	} else {
		eng.Logger.Info("corpus loaded", slog.Int("documents", len(docs)))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return eng.Index.Watch(gCtx, cfg.Content.Path, cfg.Content.Extensions, nil)
	})

	g.Go(func() error {
		<-gCtx.Done()
		eng.Logger.Info("Shutting down...")
		return nil
	})

	return g.Wait()
}
