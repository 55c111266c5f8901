package main

import (
	"fmt"

	"github.com/gosuri/uiprogress"

	"github.com/revelaction/segparse/query"
	"github.com/revelaction/segparse/render"
	"github.com/revelaction/segparse/stat"
	"github.com/revelaction/segparse/storage"
)

func (a *App) replCommand(opts ReplOptions) error {
	repo, err := a.repository(opts.StoragePath)
	if err != nil {
		return err
	}

	if p, ok := repo.(storage.Preloader); ok {
		if err := preload(p); err != nil {
			return err
		}
	}

	types, err := entityTypes(repo)
	if err != nil {
		return err
	}

	r := render.NewRenderer(a.ui.Out)
	r.HasColor = a.cfg.Render.Color && !opts.NoColor
	r.HasPrefix = true
	r.Format = opts.Format

	h := query.NewHandler(repo, r, a.logger.Named("query"))
	h.EntityTypes = types
	return h.Run()
}

func preload(p storage.Preloader) error {
	uiprogress.Start()
	bar := uiprogress.AddBar(1) // total is known in the first callback
	bar.AppendCompleted()
	bar.PrependElapsed()

	var currentName string
	bar.AppendFunc(func(b *uiprogress.Bar) string {
		return currentName
	})

	err := p.Preload(func(current, total int, name string) {
		if bar.Total != total {
			bar.Total = total
		}
		currentName = name
		_ = bar.Set(current)
	})
	uiprogress.Stop()

	if err != nil {
		return fmt.Errorf("preloading docs: %w", err)
	}
	return nil
}

// entityTypes returns the entity types of all stored docs.
func entityTypes(repo storage.DocReader) ([]string, error) {
	docs, err := repo.List("")
	if err != nil {
		return nil, err
	}

	hdl := stat.NewHandler()
	for _, d := range docs {
		doc, err := repo.Read(d.Id)
		if err != nil {
			return nil, err
		}
		hdl.Aggregate(doc)
	}
	return hdl.Get().Types(), nil
}
