package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/revelaction/segparse/config"
	"github.com/revelaction/segparse/engine"
	"github.com/revelaction/segparse/engine/process"
	"github.com/revelaction/segparse/engine/rule"
	"github.com/revelaction/segparse/storage"
	"github.com/revelaction/segparse/storage/filesystem"
	"github.com/revelaction/segparse/storage/sqlite/zombiezen"
)

// repository opens the doc store once. flagPath, if not empty, overrides
// the configured path.
func (a *App) repository(flagPath string) (storage.DocRepository, error) {
	if a.repo != nil {
		return a.repo, nil
	}

	sc := a.cfg.Storage
	if flagPath != "" {
		sc.Path = flagPath
	}

	if sc.IsSQLite() {
		store, err := zombiezen.Open(sc.Path)
		if err != nil {
			return nil, err
		}
		a.repo, a.closeRepo = store, store.Close
		a.logger.Debug("storage opened", zap.String("sqlite", sc.Path))
		return a.repo, nil
	}

	store, err := filesystem.NewDocStore(sc.Path)
	if err != nil {
		return nil, err
	}
	a.repo = store
	a.logger.Debug("storage opened", zap.String("dir", sc.Path))
	return a.repo, nil
}

// engineFactory returns the constructor of the configured engine. Process
// engines live until ctx is done or they are closed.
func (a *App) engineFactory(ctx context.Context) func() (engine.Engine, error) {
	ec := a.cfg.Engine

	if ec.Kind == config.EngineProcess {
		return func() (engine.Engine, error) {
			return process.New(ctx, process.Config{
				Command:     ec.Command,
				RuneOffsets: ec.RuneOffsets,
				Logger:      a.logger.Named("engine"),
			})
		}
	}

	return func() (engine.Engine, error) {
		return rule.New()
	}
}
