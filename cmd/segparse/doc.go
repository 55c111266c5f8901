package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/revelaction/segparse/render"
	sent "github.com/revelaction/segparse/sentence"
	"github.com/revelaction/segparse/storage"
	"github.com/revelaction/segparse/storage/filesystem"
)

func (a *App) docCommand(opts DocOptions, arg string) error {
	if strings.HasSuffix(arg, ".json") {
		return a.renderFile(arg, opts)
	}

	repo, err := a.repository(opts.StoragePath)
	if err != nil {
		return err
	}

	if arg == "" {
		return a.listDocs(repo, opts.Label)
	}

	id, err := parseDocId(arg)
	if err != nil {
		return err
	}

	doc, err := repo.Read(id)
	if err != nil {
		return fmt.Errorf("doc %d: %w", id, err)
	}

	return a.renderDoc(doc, opts)
}

func (a *App) renderFile(path string, opts DocOptions) error {
	doc, err := filesystem.ReadDoc(path)
	if err != nil {
		absPath, _ := filepath.Abs(path)
		return fmt.Errorf("filesystem document %q: %w", absPath, err)
	}

	return a.renderDoc(doc, opts)
}

func (a *App) renderDoc(doc sent.Doc, opts DocOptions) error {
	start := opts.Start
	if start < 0 {
		start = 0
	}
	if start >= len(doc.Sentences) {
		return nil
	}

	sentences := doc.Sentences[start:]
	if opts.Count >= 0 && opts.Count < len(sentences) {
		sentences = sentences[:opts.Count]
	}

	r := render.NewRenderer(a.ui.Out)
	r.HasColor = a.cfg.Render.Color
	for _, s := range sentences {
		if err := r.Sentence(s, fmt.Sprintf("✍  %d ", s.Id)); err != nil {
			return err
		}
		if opts.Entities {
			if err := r.Entities(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *App) listDocs(repo storage.DocReader, label string) error {
	docs, err := repo.List(label)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		line := fmt.Sprintf("📖 %d %s", doc.Id, doc.Title)
		if len(doc.Labels) > 0 {
			line += " [" + strings.Join(doc.Labels, ", ") + "]"
		}
		fmt.Fprintln(a.ui.Out, line)
	}
	return nil
}
