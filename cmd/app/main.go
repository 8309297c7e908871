package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/index"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

// loadConfig reads and validates the config file named by the root flag.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// loadEngine builds an engine with a quiet stderr logger so command
// output stays clean on stdout.
func loadEngine(cmd *cli.Command) (*internal.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	return internal.NewEngine(cfg, logger)
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runList(ctx context.Context, cmd *cli.Command) error {
	eng, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	res, err := eng.Index.Query(ctx, index.Filters{
		Search:        cmd.String("search"),
		Tag:           cmd.String("tag"),
		Category:      cmd.String("category"),
		Sort:          cmd.String("sort"),
		Page:          int(cmd.Int("page")),
		PerPage:       int(cmd.Int("per-page")),
		IncludeDrafts: cmd.Bool("drafts"),
	})
	if err != nil {
		return err
	}
	for _, it := range res.Items {
		fmt.Printf("%s\t%s\t%s\n", it.PublishedAt.Format("2006-01-02"), it.Slug, it.Title)
	}
	fmt.Printf("total: %d\n", res.Total)
	return nil
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	slugArg := cmd.Args().First()
	if slugArg == "" {
		return fmt.Errorf("usage: show <slug>")
	}
	eng, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	doc, err := eng.Index.BySlug(ctx, slugArg, cmd.Bool("draft"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("no such document: %s", slugArg)
		}
		return err
	}
	out, err := eng.Renderer.Render(ctx, doc.Body)
	if err != nil {
		return err
	}
	if cmd.Bool("toc") {
		for _, h := range out.TOC {
			fmt.Printf("h%d\t#%s\t%s\n", h.Level, h.ID, h.Text)
		}
		return nil
	}
	fmt.Println(out.HTML)
	return nil
}

func runStats(ctx context.Context, cmd *cli.Command) error {
	eng, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	st, err := eng.Index.CorpusStats(ctx)
	if err != nil {
		return err
	}
	cs := eng.Index.CacheStats()
	fmt.Printf("documents: %d (published %d, drafts %d)\n", st.Documents, st.Published, st.Drafts)
	fmt.Printf("tags: %d, categories: %d\n", st.Tags, st.Categories)
	fmt.Printf("cache: %d entries, %d hits, %d misses\n", cs.Entries, cs.Hits, cs.Misses)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Content indexing and query engine for flat-file Markdown corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "watch",
				Usage:  "Keep the index warm, invalidating caches as content changes",
				Action: runWatch,
			},
			{
				Name:  "list",
				Usage: "Query the corpus",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Usage: "Substring filter over title, excerpt, and body"},
					&cli.StringFlag{Name: "tag", Usage: "Tag slug or display name"},
					&cli.StringFlag{Name: "category", Usage: "Exact category path"},
					&cli.StringFlag{Name: "sort", Value: index.SortLatest, Usage: "Sort order: latest or views"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "per-page", Value: index.DefaultPerPage},
					&cli.BoolFlag{Name: "drafts", Usage: "Include unpublished documents"},
				},
				Action: runList,
			},
			{
				Name:      "show",
				Usage:     "Render one document",
				ArgsUsage: "<slug>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "draft", Usage: "Allow draft documents"},
					&cli.BoolFlag{Name: "toc", Usage: "Print the table of contents instead of HTML"},
				},
				Action: runShow,
			},
			{
				Name:   "stats",
				Usage:  "Print corpus and cache statistics",
				Action: runStats,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
