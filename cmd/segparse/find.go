package main

import (
	"go.uber.org/zap"

	"github.com/revelaction/segparse/match"
	"github.com/revelaction/segparse/render"
	"github.com/revelaction/segparse/search"
)

func (a *App) findCommand(opts FindOptions, args []string) error {
	expr, err := match.Parse(args)
	if err != nil {
		return err
	}

	repo, err := a.repository(opts.StoragePath)
	if err != nil {
		return err
	}

	s := search.New(repo)
	if opts.Doc != nil {
		s = s.WithDocID(*opts.Doc)
	}

	var results []*match.SentenceMatch
	err = s.All(expr, opts.Max, func(sm *match.SentenceMatch) error {
		results = append(results, sm)
		return nil
	})
	if err != nil {
		return err
	}

	a.logger.Debug("find", zap.String("expr", expr.String()), zap.Int("matches", len(results)))

	if opts.JSON {
		return render.NewJSONRenderer(a.ui.Out).Match(results)
	}

	r := render.NewRenderer(a.ui.Out)
	r.HasColor = a.cfg.Render.Color && !opts.NoColor
	r.HasPrefix = !opts.NoPrefix
	r.Format = opts.Format

	docs, err := repo.List("")
	if err != nil {
		return err
	}
	for _, d := range docs {
		r.AddDocName(d.Id, d.Title)
	}

	return r.Match(results)
}
