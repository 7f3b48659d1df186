// Package app implements the application layer for immut.
package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/immut/internal/adapters/telemetry"
	"go.trai.ch/immut/internal/adapters/watcher"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
	"go.trai.ch/immut/internal/engine/cache"
	"go.trai.ch/immut/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader  ports.ConfigLoader
	store         ports.CacheStore
	fingerprinter ports.Fingerprinter
	renderer      ports.SourceRenderer
	writer        ports.OutputWriter
	logger        ports.Logger
	tracer        ports.Tracer
	watcher       ports.Watcher
	workDir       string
	debounce      time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	store ports.CacheStore,
	fingerprinter ports.Fingerprinter,
	renderer ports.SourceRenderer,
	writer ports.OutputWriter,
	log ports.Logger,
	tracer ports.Tracer,
	w ports.Watcher,
) *App {
	return &App{
		configLoader:  loader,
		store:         store,
		fingerprinter: fingerprinter,
		renderer:      renderer,
		writer:        writer,
		logger:        log,
		tracer:        tracer,
		watcher:       w,
		workDir:       ".",
		debounce:      watcher.DefaultDebounceWindow,
	}
}

// WithWorkDir sets the directory the project is discovered from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithDebounce sets the quiet period watch mode waits for before regenerating.
func (a *App) WithDebounce(d time.Duration) *App {
	a.debounce = d
	return a
}

// GenerateOptions configuration for the Generate method.
type GenerateOptions struct {
	// Check reports outdated files without writing anything.
	Check bool
	// NoCache ignores and does not update the persisted cache.
	NoCache bool
	// Trace logs the duration of every pipeline stage.
	Trace bool
	// Jobs bounds the number of models processed concurrently. Zero means one per CPU.
	Jobs int
}

// Report summarizes one generation pass. Paths are relative to the project root.
type Report struct {
	// Changed lists the files written, or in check mode the files that would be.
	Changed []string
	// Unchanged counts the files already holding their generated content.
	Unchanged int
	// Removed lists generated files whose declarations are gone.
	Removed []string
	// Skipped lists files left untouched because a type routed to them failed.
	Skipped     []string
	Units       int
	FromCache   int
	Diagnostics []domain.Diagnostic
}

// Outdated reports whether a pass changed, or in check mode would change, any file.
func (r *Report) Outdated() bool {
	return len(r.Changed) > 0 || len(r.Removed) > 0
}

// Generate runs one pass over the project and writes its generated files.
func (a *App) Generate(ctx context.Context, opts GenerateOptions) (*Report, error) {
	if opts.Trace {
		shutdown := telemetry.Install(telemetry.NewLogBridge(a.logger))
		defer func() {
			_ = shutdown(context.WithoutCancel(ctx))
		}()
	}

	project, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	c := a.openCache(project, opts.NoCache)
	return a.pass(ctx, project, pipeline.New(c, a.fingerprinter, a.tracer), opts)
}

func (a *App) openCache(project *domain.Project, noCache bool) *cache.Cache {
	if noCache {
		return cache.New()
	}
	c := cache.NewPersistent(a.store, filepath.Join(project.Root, project.CacheDir))
	if err := c.Load(); err != nil {
		a.logger.Warn(fmt.Sprintf("ignoring unreadable cache: %s", domain.Message(err)))
	}
	return c
}

// pass runs the pipeline and reconciles the generated files with its result.
//
//nolint:cyclop // orchestration function
func (a *App) pass(ctx context.Context, project *domain.Project, p *pipeline.Pipeline, opts GenerateOptions) (*Report, error) {
	previous := outputsOf(p.Cache())

	res, err := p.Run(ctx, project.Declarations, pipeline.Options{Style: project.Style, Jobs: opts.Jobs})
	if err != nil {
		return nil, err
	}

	report := &Report{Units: len(res.Units), Diagnostics: res.Diagnostics}
	for _, u := range res.Units {
		if u.FromCache {
			report.FromCache++
		}
	}
	a.logDiagnostics(res.Diagnostics)

	planned := make(map[string]bool, len(project.Declarations))
	outputOf := make(map[domain.SourceID]string, len(project.Declarations))
	for i := range project.Declarations {
		d := &project.Declarations[i]
		planned[d.Output] = true
		outputOf[d.Source] = d.Output
	}
	blocked := make(map[string]bool, len(res.Failed))
	for _, src := range res.Failed {
		blocked[outputOf[src]] = true
	}

	var errs error
	for _, f := range groupByOutput(res.Units) {
		if blocked[f.path] {
			report.Skipped = append(report.Skipped, f.path)
			continue
		}
		content, err := a.renderer.Render(f.path, f.units)
		if err != nil {
			errs = errors.Join(errs, domain.Annotate(err, "output", f.path))
			continue
		}
		changed, err := a.writer.Write(filepath.Join(project.Root, f.path), content, opts.Check)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if changed {
			report.Changed = append(report.Changed, f.path)
		} else {
			report.Unchanged++
		}
	}

	for _, out := range previous {
		if planned[out] {
			continue
		}
		if !opts.Check {
			if err := a.writer.Remove(filepath.Join(project.Root, out)); err != nil {
				errs = errors.Join(errs, err)
				continue
			}
		}
		report.Removed = append(report.Removed, out)
	}

	if !opts.Check {
		if err := p.Cache().Flush(); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to persist cache: %s", domain.Message(err)))
		}
	}

	if errs != nil {
		return report, zerr.Wrap(errs, "failed to write generated files")
	}
	if domain.HasErrors(res.Diagnostics) {
		return report, domain.ErrGenerationFailed
	}
	return report, a.summarize(report, opts.Check)
}

func (a *App) summarize(report *Report, check bool) error {
	if check {
		if !report.Outdated() {
			a.logger.Info("generated files are up to date")
			return nil
		}
		for _, path := range report.Changed {
			a.logger.Warn("outdated: " + path)
		}
		for _, path := range report.Removed {
			a.logger.Warn("stale: " + path)
		}
		return domain.Annotate(domain.ErrOutputOutdated, "files", len(report.Changed)+len(report.Removed))
	}

	for _, path := range report.Changed {
		a.logger.Info("wrote " + path)
	}
	for _, path := range report.Removed {
		a.logger.Info("removed " + path)
	}
	a.logger.Info(fmt.Sprintf("%d files written, %d unchanged, %d of %d units from cache",
		len(report.Changed), report.Unchanged, report.FromCache, report.Units))
	return nil
}

func (a *App) logDiagnostics(diags []domain.Diagnostic) {
	for _, d := range diags {
		if d.Severity == domain.SeverityWarning {
			a.logger.Warn(d.String())
			continue
		}
		a.logger.Error(errors.New(d.String()))
	}
}

type outputFile struct {
	path  string
	units []domain.GeneratedUnit
}

// groupByOutput routes units to their files, keeping plan order within a
// file and ordering files by path.
func groupByOutput(units []pipeline.EmittedUnit) []outputFile {
	byPath := make(map[string][]domain.GeneratedUnit)
	for _, u := range units {
		byPath[u.Unit.Output] = append(byPath[u.Unit.Output], u.Unit)
	}
	files := make([]outputFile, 0, len(byPath))
	for _, path := range slices.Sorted(maps.Keys(byPath)) {
		files = append(files, outputFile{path: path, units: byPath[path]})
	}
	return files
}

// outputsOf returns the sorted outputs of every cached unit.
func outputsOf(c *cache.Cache) []string {
	seen := make(map[string]bool)
	for _, key := range c.Keys() {
		if e, ok := c.Get(key); ok {
			seen[e.Unit.Output] = true
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// Generated also removes the generated files of every declaration.
	Generated bool
}

// Clean removes the persisted cache and optionally every generated file.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	project, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error
	dir := filepath.Join(project.Root, project.CacheDir)
	if err := os.RemoveAll(dir); err != nil {
		errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to remove cache"), "dir", dir))
	} else {
		a.logger.Info("removed cache " + project.CacheDir)
	}

	if opts.Generated {
		outputs := make(map[string]bool)
		for i := range project.Declarations {
			outputs[project.Declarations[i].Output] = true
		}
		for _, out := range slices.Sorted(maps.Keys(outputs)) {
			if err := a.writer.Remove(filepath.Join(project.Root, out)); err != nil {
				errs = errors.Join(errs, err)
				continue
			}
			a.logger.Info("removed " + out)
		}
	}
	return errs
}
