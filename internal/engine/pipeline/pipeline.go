// Package pipeline runs one discovery pass: extraction, validation, style
// resolution, planning and emission of a batch of declarations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
	"go.trai.ch/immut/internal/engine/cache"
	"go.trai.ch/immut/internal/engine/emitter"
	"go.trai.ch/immut/internal/engine/extractor"
	"go.trai.ch/immut/internal/engine/planner"
	"go.trai.ch/immut/internal/engine/resolver"
	"go.trai.ch/immut/internal/engine/validator"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// EmittedUnit is one generated unit of a pass.
type EmittedUnit struct {
	Unit      domain.GeneratedUnit
	Source    domain.SourceID
	FromCache bool
}

// Result is the outcome of a pass. Units are in plan order, diagnostics in
// declaration order.
type Result struct {
	Units       []EmittedUnit
	Diagnostics []domain.Diagnostic
	// Failed lists the declarations that produced no units, in declaration order.
	Failed []domain.SourceID
}

// Options tune a pass.
type Options struct {
	// Style is the project-wide override fragment.
	Style domain.StyleFragment
	// Jobs bounds the number of models processed concurrently. Zero means one per CPU.
	Jobs int
}

// Pipeline is safe for sequential reuse across passes; the cache is the only
// state that outlives a pass.
type Pipeline struct {
	cache   *cache.Cache
	emitter *emitter.Emitter
	tracer  ports.Tracer
}

// New creates a Pipeline emitting through c.
func New(c *cache.Cache, fingerprinter ports.Fingerprinter, tracer ports.Tracer) *Pipeline {
	return &Pipeline{
		cache:   c,
		emitter: emitter.New(c, fingerprinter),
		tracer:  tracer,
	}
}

// Cache returns the cache the pipeline emits through.
func (p *Pipeline) Cache() *cache.Cache {
	return p.cache
}

// stage holds the per-declaration state of a pass.
type stage struct {
	model *domain.AttributeModel
	diags []domain.Diagnostic
	// ok is false as soon as any stage reported an error for the declaration.
	ok bool
}

// Run processes batch. A malformed batch fails as a whole before anything is
// extracted and leaves the cache untouched. Per-model failures are reported
// as diagnostics; the cache entries of failed models are retained.
//
// If ctx is cancelled, Run returns ctx.Err(). Entries committed before the
// cancellation stay whole and nothing is evicted.
func (p *Pipeline) Run(ctx context.Context, batch []domain.Declaration, opts Options) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "Generating")
	defer span.End()
	span.SetAttribute("declarations", len(batch))

	types, err := CheckBatch(batch)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	stages := make([]stage, len(batch))
	if err := p.extract(ctx, batch, types, stages, jobs); err != nil {
		return nil, err
	}
	if err := p.validate(ctx, stages, opts.Style, jobs); err != nil {
		return nil, err
	}

	index := sourceIndex(batch)
	failNesting(stages, index)
	styled, models, err := arrange(stages)
	if err != nil {
		return nil, err
	}
	if checkIdentifiers(stages, index, models, styled) {
		if styled, models, err = arrange(stages); err != nil {
			return nil, err
		}
	}

	tasks := planner.Plan(models, styled)
	span.SetAttribute("tasks", len(tasks))

	emitted, err := p.emit(ctx, tasks, styled, jobs)
	if err != nil {
		return nil, err
	}

	return p.finish(batch, stages, tasks, emitted), nil
}

// CheckBatch rejects batches the discovery collaborator should never supply:
// declarations without or with duplicate source identities and types declared
// twice in one package. Every cause is listed in the returned error. On
// success it returns the type index of the batch.
func CheckBatch(batch []domain.Declaration) (*domain.TypeIndex, error) {
	var errs []error
	index := domain.NewTypeIndex()
	seen := make(map[domain.SourceID]bool, len(batch))

	for i := range batch {
		d := &batch[i]
		if d.Source.IsZero() {
			errs = append(errs, domain.Annotate(domain.ErrEmptySourceID, "type", d.TypeName))
			continue
		}
		if seen[d.Source] {
			errs = append(errs, domain.Annotate(domain.ErrDuplicateSourceID, "source", d.Source.String()))
			continue
		}
		seen[d.Source] = true

		if d.TypeName == "" {
			continue
		}
		if err := index.Add(d.Package, d.TypeName, d.Source); err != nil {
			errs = append(errs, domain.Annotate(err, "source", d.Source.String()))
		}
	}

	if len(errs) > 0 {
		return nil, zerr.With(domain.Wrap(errors.Join(errs...), domain.ErrMalformedBatch), "causes", len(errs))
	}
	return index, nil
}

func (p *Pipeline) extract(ctx context.Context, batch []domain.Declaration, index *domain.TypeIndex, stages []stage, jobs int) error {
	ctx, span := p.tracer.Start(ctx, "Extracting")
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			model, diags, err := extractor.Extract(&batch[i], index)
			stages[i] = stage{model: model, diags: diags, ok: err == nil}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return err
	}
	return ctx.Err()
}

func (p *Pipeline) validate(ctx context.Context, stages []stage, project domain.StyleFragment, jobs int) error {
	ctx, span := p.tracer.Start(ctx, "Validating")
	defer span.End()

	extracted := domain.NewArena()
	for i := range stages {
		if stages[i].ok {
			if err := extracted.Add(stages[i].model); err != nil {
				return err
			}
		}
	}
	v := validator.New(extracted)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range stages {
		if !stages[i].ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s := &stages[i]
			diags := v.Validate(s.model)
			s.diags = append(s.diags, diags...)
			if domain.HasErrors(diags) {
				s.ok = false
				return nil
			}

			styled, err := resolver.ResolveModel(s.model, project)
			if err != nil {
				s.diags = append(s.diags, domain.Diagnostic{
					Severity: domain.SeverityInternal,
					Code:     domain.CodeStyleResolution,
					Source:   s.model.Source,
					Message:  err.Error(),
				})
				s.ok = false
				return nil
			}
			s.model = styled
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return err
	}
	return ctx.Err()
}

// arrange collects the models still ok into the arena emission resolves
// nested attributes against.
func arrange(stages []stage) (*domain.Arena, []*domain.AttributeModel, error) {
	arena := domain.NewArena()
	var models []*domain.AttributeModel
	for i := range stages {
		if !stages[i].ok {
			continue
		}
		if err := arena.Add(stages[i].model); err != nil {
			return nil, nil, err
		}
		models = append(models, stages[i].model)
	}
	return arena, models, nil
}

// checkIdentifiers fails the models whose generated identifiers clash and
// the models nesting them. It reports whether any model failed.
func checkIdentifiers(stages []stage, index map[domain.SourceID]int, models []*domain.AttributeModel, arena *domain.Arena) bool {
	var diags []domain.Diagnostic
	for _, m := range models {
		diags = append(diags, emitter.Conflicts(m, arena)...)
	}
	diags = append(diags, emitter.PackageConflicts(models, arena)...)
	if len(diags) == 0 {
		return false
	}

	for _, d := range diags {
		s := &stages[index[d.Source]]
		s.diags = append(s.diags, d)
		s.ok = false
	}
	failNesting(stages, index)
	return true
}

// failNesting fails every model with a nested attribute whose model failed,
// repeating until no further model fails.
func failNesting(stages []stage, index map[domain.SourceID]int) {
	for changed := true; changed; {
		changed = false
		for i := range stages {
			s := &stages[i]
			if !s.ok {
				continue
			}
			for j := range s.model.Attributes {
				a := &s.model.Attributes[j]
				if a.Kind.Form != domain.FormNested {
					continue
				}
				if k, found := index[a.Kind.Ref]; !found || stages[k].ok {
					continue
				}
				s.ok = false
				s.diags = append(s.diags, domain.Diagnostic{
					Severity:  domain.SeverityError,
					Code:      domain.CodeNestedInvalid,
					Source:    s.model.Source,
					Message:   fmt.Sprintf("%s: %s", domain.ErrNestedInvalid.Error(), a.Kind.RefType),
					Attribute: a.Name,
				})
				changed = true
				break
			}
		}
	}
}

func sourceIndex(batch []domain.Declaration) map[domain.SourceID]int {
	index := make(map[domain.SourceID]int, len(batch))
	for i := range batch {
		index[batch[i].Source] = i
	}
	return index
}

type emission struct {
	unit domain.GeneratedUnit
	hit  bool
	err  error
}

// emit renders the tasks in nesting waves: every model of a wave only
// references models of earlier waves. Tasks of one wave run concurrently.
func (p *Pipeline) emit(ctx context.Context, tasks []domain.EmissionTask, arena *domain.Arena, jobs int) ([]emission, error) {
	ctx, span := p.tracer.Start(ctx, "Emitting")
	defer span.End()

	depths := arena.Depths()
	waves := make(map[int][]int)
	for i := range tasks {
		d := depths[tasks[i].Model.Source]
		waves[d] = append(waves[d], i)
	}
	levels := make([]int, 0, len(waves))
	for d := range waves {
		levels = append(levels, d)
	}
	slices.Sort(levels)

	out := make([]emission, len(tasks))
	for _, d := range levels {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(jobs)
		for _, i := range waves[d] {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				unit, hit, err := p.emitter.Emit(tasks[i], arena)
				out[i] = emission{unit: unit, hit: hit, err: err}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			span.RecordError(err)
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	hits := 0
	for i := range out {
		if out[i].hit {
			hits++
		}
	}
	span.SetAttribute("cache_hits", hits)
	return out, nil
}

// finish collects units and diagnostics and applies cache eviction. A model
// with any failed task, or nesting such a model, contributes no units and is
// not pruned: entries its other tasks committed in this pass stay alongside
// the previous entries of the failed ones.
func (p *Pipeline) finish(batch []domain.Declaration, stages []stage, tasks []domain.EmissionTask, emitted []emission) *Result {
	bySource := sourceIndex(batch)

	for i := range tasks {
		if emitted[i].err == nil {
			continue
		}
		s := &stages[bySource[tasks[i].Model.Source]]
		s.ok = false
		s.diags = append(s.diags, domain.Diagnostic{
			Severity:  domain.SeverityError,
			Code:      domain.CodeEmission,
			Source:    tasks[i].Model.Source,
			Message:   emitted[i].err.Error(),
			Attribute: tasks[i].Attribute,
		})
	}
	failNesting(stages, bySource)

	res := &Result{}
	keep := make(map[domain.SourceID]map[domain.CacheKey]bool)
	for i := range tasks {
		src := tasks[i].Model.Source
		if !stages[bySource[src]].ok {
			continue
		}
		res.Units = append(res.Units, EmittedUnit{Unit: emitted[i].unit, Source: src, FromCache: emitted[i].hit})
		if keep[src] == nil {
			keep[src] = make(map[domain.CacheKey]bool)
		}
		keep[src][tasks[i].Key()] = true
	}

	present := make(map[domain.SourceID]bool, len(batch))
	for i := range batch {
		present[batch[i].Source] = true
		res.Diagnostics = append(res.Diagnostics, stages[i].diags...)
		if !stages[i].ok {
			res.Failed = append(res.Failed, batch[i].Source)
		}
	}

	p.cache.Retain(present)
	for src, keys := range keep {
		p.cache.Prune(src, keys)
	}
	return res
}
