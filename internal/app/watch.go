package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"go.trai.ch/immut/internal/adapters/watcher"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	NoCache bool
	Jobs    int
}

// Watch generates once, then regenerates whenever a declaration file or the
// project config changes, until ctx is cancelled. The cache stays in memory
// between passes, so only changed declarations are re-emitted.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	project, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	p := pipeline.New(a.openCache(project, opts.NoCache), a.fingerprinter, a.tracer)
	genOpts := GenerateOptions{NoCache: opts.NoCache, Jobs: opts.Jobs}
	a.runPass(ctx, project, p, genOpts)

	if err := a.watcher.Start(ctx, project.Root); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	batches := make(chan []string, 1)
	deb := watcher.NewDebouncer(a.debounce, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})
	defer deb.Stop()

	root := project.Root
	var current atomic.Pointer[domain.Project]
	current.Store(project)
	go func() {
		for ev := range a.watcher.Events() {
			if current.Load().IsDeclarationFile(filepath.Base(ev.Path)) {
				deb.Add(ev.Path)
			}
		}
	}()

	a.logger.Info("watching " + root + " for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-batches:
			a.logger.Info(fmt.Sprintf("%d files changed, regenerating", len(paths)))
			next, err := a.configLoader.Load(root)
			if err != nil {
				a.logger.Error(zerr.Wrap(err, "failed to load configuration"))
				continue
			}
			current.Store(next)
			a.runPass(ctx, next, p, genOpts)
		}
	}
}

// runPass runs one watch pass. Errors are logged and do not stop the watch.
func (a *App) runPass(ctx context.Context, project *domain.Project, p *pipeline.Pipeline, opts GenerateOptions) {
	if _, err := a.pass(ctx, project, p, opts); err != nil && !errors.Is(err, domain.ErrGenerationFailed) {
		a.logger.Error(err)
	}
}
