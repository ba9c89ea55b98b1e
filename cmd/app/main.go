package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/gausby/mg-org-wiki/internal"
	"github.com/gausby/mg-org-wiki/internal/editor"
	"github.com/gausby/mg-org-wiki/internal/entryservice"
	"github.com/gausby/mg-org-wiki/internal/index"
	"github.com/gausby/mg-org-wiki/internal/mcpserver"
	"github.com/gausby/mg-org-wiki/internal/search"
	"github.com/gausby/mg-org-wiki/internal/session"
	"github.com/gausby/mg-org-wiki/internal/storage"
	"github.com/gausby/mg-org-wiki/internal/wiki"
	pkgconfig "github.com/gausby/mg-org-wiki/pkg/config"
)

// loadConfig builds the effective configuration: defaults overlaid with the
// YAML file when it exists. A missing config file is not an error so the
// CLI works out of the box.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	if err := pkgconfig.Load(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) && !cmd.IsSet("config") {
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// buildWiki assembles the interactive wiki store from configuration.
func buildWiki(cfg *internal.Config) (*wiki.Store, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	if err := os.MkdirAll(cfg.Wiki.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create wiki dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Wiki.Path)
	if err != nil {
		return nil, err
	}
	sess, err := session.Load(cfg.Session.Path)
	if err != nil {
		return nil, err
	}
	return wiki.New(store,
		sess,
		wiki.NewTermPrompter(os.Stdin, os.Stderr),
		editor.NewExec(cfg.Editor.Command),
		search.NewGrep(cfg.Search.Bin),
		logger)
}

func printMatches(matches []search.Match) {
	for _, m := range matches {
		fmt.Printf("%s:%d: %s\n", m.File, m.Line, m.Text)
	}
}

func visitAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w, err := buildWiki(cfg)
	if err != nil {
		return err
	}
	return w.Visit(ctx, strings.Join(cmd.Args().Slice(), " "))
}

func findAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w, err := buildWiki(cfg)
	if err != nil {
		return err
	}
	return w.FindEntry(ctx, strings.Join(cmd.Args().Slice(), " "))
}

func modeAction(ctx context.Context, cmd *cli.Command) error {
	mode := cmd.Args().First()
	if mode == "" {
		return fmt.Errorf("mode name is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w, err := buildWiki(cfg)
	if err != nil {
		return err
	}
	return w.FindModeEntry(ctx, mode)
}

func markModifiedAction(ctx context.Context, cmd *cli.Command) error {
	topic := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("topic is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w, err := buildWiki(cfg)
	if err != nil {
		return err
	}
	return w.MarkModified(topic, !cmd.Bool("clear"))
}

func closeAllAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w, err := buildWiki(cfg)
	if err != nil {
		return err
	}
	n, err := w.CloseAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("closed %d entries\n", n)
	return nil
}

func linksAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w, err := buildWiki(cfg)
	if err != nil {
		return err
	}
	file := cmd.Args().First()
	if file != "" && !filepath.IsAbs(file) {
		file = filepath.Join(w.Dir(), file)
	}
	matches, err := w.LinksHere(ctx, file)
	if err != nil {
		return err
	}
	printMatches(matches)
	return nil
}

func keywordsAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w, err := buildWiki(cfg)
	if err != nil {
		return err
	}
	matches, err := w.FindKeyword(ctx)
	if err != nil {
		return err
	}
	printMatches(matches)
	return nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Run(ctx, internal.WithConfig(cfg))
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// stdout carries the MCP transport, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Wiki.Path, 0o755); err != nil {
		return fmt.Errorf("create wiki dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Wiki.Path)
	if err != nil {
		return err
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return mcpserver.New(entryservice.NewService(store, db)).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:  "mg-org-wiki",
		Usage: "Personal org-mode wiki with templated entries, ripgrep search, and an HTTP API",
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
				Name:      "visit",
				Usage:     "Open the entry for a topic, creating it from the template if needed",
				ArgsUsage: "<topic>",
				Action:    visitAction,
			},
			{
				Name:      "find",
				Usage:     "Fuzzy-find an entry by topic and open it",
				ArgsUsage: "[query]",
				Action:    findAction,
			},
			{
				Name:      "mode",
				Usage:     "Open the notes entry for an editor major mode",
				ArgsUsage: "<mode>",
				Action:    modeAction,
			},
			{
				Name:      "mark-modified",
				Usage:     "Flag an open entry as having unsaved changes, so close-all asks before closing it",
				ArgsUsage: "<topic>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Clear the flag instead of setting it",
					},
				},
				Action: markModifiedAction,
			},
			{
				Name:   "close-all",
				Usage:  "Close every open wiki entry in the session",
				Action: closeAllAction,
			},
			{
				Name:      "links",
				Usage:     "List lines that link to an entry (defaults to the current one)",
				ArgsUsage: "[file]",
				Action:    linksAction,
			},
			{
				Name:   "keywords",
				Usage:  "List the keyword header line of every entry",
				Action: keywordsAction,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server with SQLite index and SSE events",
				Action: serveAction,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Action: mcpAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
