package main

import (
	"fmt"

	"github.com/revelaction/segparse/render"
)

func (a *App) sentenceCommand(opts SentenceOptions, docId int, sentId int) error {
	repo, err := a.repository(opts.StoragePath)
	if err != nil {
		return err
	}

	doc, err := repo.Read(docId)
	if err != nil {
		return fmt.Errorf("doc %d: %w", docId, err)
	}

	if sentId < 0 || sentId >= len(doc.Sentences) {
		return fmt.Errorf("sentence index %d out of bounds (0-%d)", sentId, len(doc.Sentences)-1)
	}

	s := doc.Sentences[sentId]
	r := render.NewRenderer(a.ui.Out)
	r.HasColor = a.cfg.Render.Color
	if err := r.Sentence(s, fmt.Sprintf("✍  %d ", sentId)); err != nil {
		return err
	}
	if err := r.Entities(s); err != nil {
		return err
	}
	fmt.Fprintln(a.ui.Out)

	return r.Tokens(s)
}
