package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gosuri/uiprogress"
	"go.uber.org/zap"

	"github.com/revelaction/segparse/parser"
	"github.com/revelaction/segparse/render"
	sent "github.com/revelaction/segparse/sentence"
	"github.com/revelaction/segparse/storage"
)

func (a *App) parseCommand(opts ParseOptions, files []string) error {
	corpus := sent.NewCorpus()
	for _, path := range files {
		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		title := opts.Title
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		corpus.Add(title, string(text))
		corpus.Docs[len(corpus.Docs)-1].Labels = opts.Labels
	}

	workers := a.cfg.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	if workers > len(files) {
		workers = len(files)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	parserOpts := []parser.Option{
		parser.WithLogger(a.logger.Named("parser")),
		parser.WithMergeDuplicates(opts.Merge),
	}

	if !opts.Quiet {
		uiprogress.Start()
		bar := uiprogress.AddBar(len(files))
		bar.AppendCompleted()
		bar.PrependElapsed()
		parserOpts = append(parserOpts, parser.WithProgress(func(sent.Doc) {
			bar.Incr()
		}))
	}

	pool, err := parser.NewPool(workers, a.engineFactory(ctx), parserOpts...)
	if err != nil {
		if !opts.Quiet {
			uiprogress.Stop()
		}
		return err
	}
	defer pool.Close()

	err = pool.Parse(ctx, corpus)
	if !opts.Quiet {
		uiprogress.Stop()
	}
	if err != nil {
		return err
	}

	a.logger.Info("corpus parsed", zap.Int("docs", len(corpus.Docs)), zap.Int("workers", pool.Size()))

	if opts.Print {
		return render.NewJSONRenderer(a.ui.Out).Corpus(corpus)
	}

	repo, err := a.repository(opts.StoragePath)
	if err != nil {
		return err
	}

	for i, doc := range corpus.Docs {
		id, err := repo.Write(doc)
		if errors.Is(err, storage.ErrDuplicate) {
			fmt.Fprintf(a.ui.Err, "⚠  %s skipped: %v\n", files[i], err)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", files[i], err)
		}

		fmt.Fprintf(a.ui.Out, "📖 %d %s (%d sentences)\n", id, doc.Title, len(doc.Sentences))
	}

	return nil
}
