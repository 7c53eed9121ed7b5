// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/statute"
	"github.com/poiesic/statute/config"
	"github.com/poiesic/statute/ingestion"
	"github.com/poiesic/statute/search"
	"github.com/poiesic/statute/server"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "statute",
		Usage: "Grounded question answering over the articles of a legal text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file (missing file uses defaults)",
				Value:   "statute.yaml",
				EnvVars: []string{"STATUTE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file loaded before configuration",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Article store: badger or postgres",
				EnvVars: []string{"STATUTE_STORE"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				EnvVars: []string{"STATUTE_DB"},
			},
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "PostgreSQL connection string",
				EnvVars: []string{"STATUTE_PG_DSN"},
			},
			&cli.StringFlag{
				Name:    "provider",
				Usage:   "AI provider: openai or googleai",
				EnvVars: []string{"STATUTE_PROVIDER"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				EnvVars: []string{"STATUTE_EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "generator-host",
				Usage:   "Answer generation service host URL",
				EnvVars: []string{"STATUTE_GENERATOR_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"STATUTE_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "generator-model",
				Usage:   "Answer generation model name",
				EnvVars: []string{"STATUTE_GENERATOR_MODEL"},
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return config.LoadEnv(c.String("env-file"))
		},
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Segment, embed and store documents (files or directories)",
				ArgsUsage: "PATH...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of documents ingested concurrently",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of articles per embedding call",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per embedding batch",
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the stored articles",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Print how the question was resolved to stderr",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of articles used by semantic retrieval",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						EnvVars: []string{"STATUTE_ADDR"},
					},
				},
			},
			{
				Name:   "documents",
				Usage:  "List stored documents",
				Action: documentsCommand,
			},
			{
				Name:      "articles",
				Usage:     "List the articles stored for a document",
				ArgsUsage: "DOCUMENT_ID",
				Action:    articlesCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "width",
						Usage: "Truncate article text to this many characters (0 prints everything)",
						Value: 80,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all stored articles with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of articles to process in each batch",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N articles",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
					},
				},
			},
		},
	}
}

// loadConfig reads the configuration file and applies the flags that were set.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	strOverrides := map[string]*string{
		"store":           &cfg.Store.Kind,
		"db":              &cfg.Store.Path,
		"dsn":             &cfg.Store.DSN,
		"provider":        &cfg.AI.Provider,
		"embedding-host":  &cfg.AI.EmbeddingHost,
		"generator-host":  &cfg.AI.GeneratorHost,
		"embedding-model": &cfg.AI.EmbeddingModel,
		"generator-model": &cfg.AI.GeneratorModel,
		"addr":            &cfg.Server.Addr,
	}
	for name, target := range strOverrides {
		if c.IsSet(name) {
			*target = c.String(name)
		}
	}

	intOverrides := map[string]*int{
		"workers":     &cfg.Ingestion.Workers,
		"batch-size":  &cfg.Ingestion.BatchSize,
		"max-retries": &cfg.Ingestion.MaxRetries,
		"top-k":       &cfg.Search.TopK,
	}
	for name, target := range intOverrides {
		if c.IsSet(name) {
			*target = c.Int(name)
		}
	}
	if c.IsSet("retry-delay") {
		cfg.Ingestion.RetryDelay = c.Duration("retry-delay")
	}
	if cfg.Search.CandidatePool < cfg.Search.TopK {
		cfg.Search.CandidatePool = cfg.Search.TopK
	}

	return cfg, nil
}

func openKnowledgeBase(c *cli.Context) (*statute.KnowledgeBase, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	kb, err := statute.Open(c.Context, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge base: %w", err)
	}
	return kb, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one file or directory is required")
	}

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	pipeline, err := kb.NewIngestionPipeline(ingestion.WithProgress(os.Stderr))
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	var (
		files []string
		errs  []error
		total int
	)
	for _, path := range c.Args().Slice() {
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		results, err := pipeline.IngestDirectory(c.Context, path)
		total += len(results)
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(files) > 0 {
		results, err := pipeline.IngestPaths(c.Context, files)
		total += len(results)
		if err != nil {
			errs = append(errs, err)
		}
	}

	fmt.Fprintf(os.Stderr, "%d document(s) ingested\n", total)
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("a question is required")
	}

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	var opts []search.Option
	if c.Bool("trace") {
		opts = append(opts, search.WithMonitor(&traceMonitor{w: os.Stderr}))
	}
	searcher, err := kb.NewSearcher(opts...)
	if err != nil {
		return err
	}
	answerer, err := kb.AnswererFor(searcher)
	if err != nil {
		return err
	}

	fmt.Println(answerer.Ask(c.Context, question))
	return nil
}

func serveCommand(c *cli.Context) error {
	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	answerer, err := kb.NewAnswerer()
	if err != nil {
		return err
	}

	cfg := kb.Config().Server
	srv := server.New(answerer, kb.Repository(), server.WithTimeouts(cfg.ReadTimeout, cfg.WriteTimeout))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func documentsCommand(c *cli.Context) error {
	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	docs, err := kb.Repository().ListDocuments(c.Context)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(c.App.Writer, "No documents stored")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(c.App.Writer, "%s\t%d articles\t%s\n", d.DocumentID, d.Articles, d.InsertedAt.Format(time.RFC3339))
	}
	return nil
}

func articlesCommand(c *cli.Context) error {
	documentID := c.Args().First()
	if documentID == "" {
		return errors.New("a document ID is required")
	}

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	articles, err := kb.Repository().GetDocumentArticles(c.Context, documentID)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return fmt.Errorf("no articles stored for %q", documentID)
	}

	width := c.Int("width")
	for _, a := range articles {
		fmt.Fprintf(c.App.Writer, "%4d  %-10s %s\n", a.Position, a.Label, truncate(a.Text, width))
	}
	return nil
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	return string(r[:width]) + "…"
}

func reembedCommand(c *cli.Context) error {
	if c.Int("report-interval") <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	kb, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer kb.Close()

	reembedder, err := kb.NewReembedder(c.Int("report-interval"), os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	cfg := kb.Config()
	fmt.Fprintf(os.Stderr, "Store: %s\n", cfg.Store.Kind)
	fmt.Fprintf(os.Stderr, "Embedding provider: %s\n", cfg.AI.Provider)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	if _, err := reembedder.Run(c.Context); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
