package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/immut/internal/adapters/fs"
	"go.trai.ch/immut/internal/adapters/telemetry"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
	"go.trai.ch/immut/internal/core/ports/mocks"
	"go.trai.ch/immut/internal/engine/cache"
	"go.trai.ch/immut/internal/engine/pipeline"
	"go.uber.org/mock/gomock"
)

func decl(typeName string, members ...domain.RawMember) domain.Declaration {
	return domain.Declaration{
		Source:   domain.NewSourceID("shapes.immut.yaml#" + typeName),
		Package:  "shapes",
		TypeName: typeName,
		Members:  members,
		Output:   "shapes_immut.go",
	}
}

func mandatory(name, kind string) domain.RawMember {
	return domain.RawMember{Name: name, Kind: kind, Modifiers: []string{domain.ModifierMandatory}}
}

func point() domain.Declaration {
	return decl("Point",
		mandatory("x", "int"),
		mandatory("y", "int"),
		domain.RawMember{Name: "label", Kind: "optional[string]"},
	)
}

func line() domain.Declaration {
	return decl("Line",
		domain.RawMember{Name: "start", Kind: "Point"},
		domain.RawMember{Name: "end", Kind: "Point"},
	)
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(cache.New(), fs.NewHasher(), telemetry.NewNoOpTracer())
}

func artifacts(units []pipeline.EmittedUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Unit.Key().String()
	}
	return out
}

func TestRun_PointScenario(t *testing.T) {
	p := newPipeline()
	res, err := p.Run(context.Background(), []domain.Declaration{point()}, pipeline.Options{})
	require.NoError(t, err)

	assert.Empty(t, res.Diagnostics)
	assert.Empty(t, res.Failed)
	assert.Equal(t, []string{
		"shapes.immut.yaml#Point|value|",
		"shapes.immut.yaml#Point|copy-with|",
		"shapes.immut.yaml#Point|builder|",
	}, artifacts(res.Units))
	for _, u := range res.Units {
		assert.False(t, u.FromCache)
		assert.Equal(t, domain.NewSourceID("shapes.immut.yaml#Point"), u.Source)
		assert.Equal(t, "shapes_immut.go", u.Unit.Output)
	}
	assert.Equal(t, 3, p.Cache().Len())
}

func TestRun_Idempotent(t *testing.T) {
	p := newPipeline()
	batch := []domain.Declaration{point(), line()}

	first, err := p.Run(context.Background(), batch, pipeline.Options{})
	require.NoError(t, err)
	second, err := p.Run(context.Background(), batch, pipeline.Options{})
	require.NoError(t, err)

	require.Len(t, second.Units, len(first.Units))
	for i := range second.Units {
		assert.True(t, second.Units[i].FromCache, second.Units[i].Unit.Key().String())
		assert.Equal(t, first.Units[i].Unit, second.Units[i].Unit)
	}
}

func TestRun_DeterministicAcrossParallelism(t *testing.T) {
	batch := []domain.Declaration{line(), point(), decl("Tag", domain.RawMember{Name: "name", Kind: "string"})}

	serial, err := newPipeline().Run(context.Background(), batch, pipeline.Options{Jobs: 1})
	require.NoError(t, err)
	parallel, err := newPipeline().Run(context.Background(), batch, pipeline.Options{Jobs: 8})
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestRun_NestedOrder(t *testing.T) {
	res, err := newPipeline().Run(context.Background(), []domain.Declaration{line(), point()}, pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"shapes.immut.yaml#Point|value|",
		"shapes.immut.yaml#Point|copy-with|",
		"shapes.immut.yaml#Point|builder|",
		"shapes.immut.yaml#Line|value|",
		"shapes.immut.yaml#Line|copy-with|",
		"shapes.immut.yaml#Line|builder|",
		"shapes.immut.yaml#Line|nested-builder|start",
		"shapes.immut.yaml#Line|nested-builder|end",
	}, artifacts(res.Units))
}

func TestRun_Invalidation(t *testing.T) {
	p := newPipeline()
	_, err := p.Run(context.Background(), []domain.Declaration{point(), line()}, pipeline.Options{})
	require.NoError(t, err)

	changed := point()
	changed.Members = append(changed.Members, domain.RawMember{Name: "z", Kind: "int"})
	res, err := p.Run(context.Background(), []domain.Declaration{changed, line()}, pipeline.Options{})
	require.NoError(t, err)

	for _, u := range res.Units {
		if u.Source == changed.Source {
			assert.False(t, u.FromCache, "changed model must be re-emitted")
		}
	}

	// Line's builder and nested builders depend on Point's builder only, not
	// on its attributes, so Line stays cached.
	for _, u := range res.Units {
		if u.Source == line().Source {
			assert.True(t, u.FromCache, u.Unit.Key().String())
		}
	}
}

func TestRun_DependencyInvalidation(t *testing.T) {
	p := newPipeline()
	_, err := p.Run(context.Background(), []domain.Declaration{point(), line()}, pipeline.Options{})
	require.NoError(t, err)

	// Point loses its builder; Line's nested builders must disappear.
	simple := decl("Point", domain.RawMember{Name: "x", Kind: "int"})
	res, err := p.Run(context.Background(), []domain.Declaration{simple, line()}, pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"shapes.immut.yaml#Point|value|",
		"shapes.immut.yaml#Point|copy-with|",
		"shapes.immut.yaml#Line|value|",
		"shapes.immut.yaml#Line|copy-with|",
	}, artifacts(res.Units))
	for _, u := range res.Units {
		assert.False(t, u.FromCache, u.Unit.Key().String())
	}

	var keys []string
	for _, k := range p.Cache().Keys() {
		keys = append(keys, k.String())
	}
	assert.ElementsMatch(t, artifacts(res.Units), keys, "re-planned sources drop their stale artifacts")
}

func TestRun_EvictsRemovedSources(t *testing.T) {
	p := newPipeline()
	_, err := p.Run(context.Background(), []domain.Declaration{point(), decl("Tag", domain.RawMember{Name: "name", Kind: "string"})}, pipeline.Options{})
	require.NoError(t, err)

	_, err = p.Run(context.Background(), []domain.Declaration{point()}, pipeline.Options{})
	require.NoError(t, err)

	for _, k := range p.Cache().Keys() {
		assert.Equal(t, point().Source, k.Source)
	}
	assert.Equal(t, 3, p.Cache().Len())
}

func TestRun_FailedModelKeepsEntries(t *testing.T) {
	p := newPipeline()
	_, err := p.Run(context.Background(), []domain.Declaration{point()}, pipeline.Options{})
	require.NoError(t, err)

	broken := point()
	broken.Members[0].Kind = "chan int"
	res, err := p.Run(context.Background(), []domain.Declaration{broken}, pipeline.Options{})
	require.NoError(t, err)

	assert.Empty(t, res.Units)
	assert.Equal(t, []domain.SourceID{broken.Source}, res.Failed)
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, domain.CodeExtraction, res.Diagnostics[0].Code)
	assert.Equal(t, "x", res.Diagnostics[0].Attribute)
	assert.Equal(t, 3, p.Cache().Len(), "a failing model keeps its previous output")
}

func TestRun_ValidationDiagnostics(t *testing.T) {
	loop := decl("Loop",
		domain.RawMember{Name: "id", Kind: "int"},
		domain.RawMember{Name: "next", Kind: "Loop"},
	)
	empty := decl("Empty", domain.RawMember{Name: "area", Kind: "int", Body: "0"})
	res, err := newPipeline().Run(context.Background(), []domain.Declaration{point(), loop, empty}, pipeline.Options{})
	require.NoError(t, err)

	var codes []domain.DiagnosticCode
	for _, d := range res.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []domain.DiagnosticCode{domain.CodeCyclicNesting, domain.CodeEmptyModel}, codes)
	assert.Equal(t, []domain.SourceID{loop.Source, empty.Source}, res.Failed)
	assert.Len(t, res.Units, 3, "the valid model is still emitted")
}

func TestRun_WarningsDoNotBlock(t *testing.T) {
	p := point()
	p.Members = append(p.Members, domain.RawMember{Name: "scale", Params: []string{"f float64"}, Body: "nil"})
	res, err := newPipeline().Run(context.Background(), []domain.Declaration{p}, pipeline.Options{})
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, domain.SeverityWarning, res.Diagnostics[0].Severity)
	assert.Len(t, res.Units, 3)
}

func TestRun_ProjectStyle(t *testing.T) {
	replace := domain.ReplaceWhole
	prefix := ""
	res, err := newPipeline().Run(context.Background(), []domain.Declaration{point()}, pipeline.Options{
		Style: domain.StyleFragment{TypePrefix: &prefix, Collections: &replace},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Units)
	assert.Equal(t, "Point", res.Units[0].Unit.Members[0].Name)
}

func TestRun_NamingConflictIsReported(t *testing.T) {
	prefix := "With"
	res, err := newPipeline().Run(context.Background(), []domain.Declaration{point()}, pipeline.Options{
		Style: domain.StyleFragment{AccessorPrefix: &prefix},
	})
	require.NoError(t, err)

	assert.Empty(t, res.Units)
	assert.Equal(t, []domain.SourceID{point().Source}, res.Failed)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, domain.CodeExtraction, res.Diagnostics[0].Code)
	assert.Contains(t, res.Diagnostics[0].Message, domain.ErrNamingConflict.Error())
}

func TestRun_IdentifierClash(t *testing.T) {
	job := decl("Job",
		mandatory("build", "string"),
		mandatory("priority", "int"),
	)
	res, err := newPipeline().Run(context.Background(), []domain.Declaration{point(), job}, pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, []domain.SourceID{job.Source}, res.Failed)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, domain.SeverityError, d.Severity)
	assert.Equal(t, domain.CodeExtraction, d.Code)
	assert.Equal(t, "build", d.Attribute)
	assert.Equal(t, domain.ErrIdentifierClash.Error()+
		": ImmutableJobBuilder.Build is both the Build method and the setter of build", d.Message)
	assert.Len(t, res.Units, 3, "the other model is still emitted")
}

func TestRun_IdentifierClashFailsNestingModels(t *testing.T) {
	pair := decl("Pair",
		domain.RawMember{Name: "x", Kind: "int"},
		domain.RawMember{Name: "withX", Kind: "int"},
	)
	holder := decl("Holder", domain.RawMember{Name: "pair", Kind: "Pair"})
	outer := decl("Outer", domain.RawMember{Name: "holder", Kind: "Holder"})

	res, err := newPipeline().Run(context.Background(), []domain.Declaration{outer, holder, pair, point()}, pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, []domain.SourceID{outer.Source, holder.Source, pair.Source}, res.Failed)
	byCode := make(map[domain.SourceID]domain.DiagnosticCode)
	for _, d := range res.Diagnostics {
		byCode[d.Source] = d.Code
	}
	assert.Equal(t, map[domain.SourceID]domain.DiagnosticCode{
		pair.Source:   domain.CodeExtraction,
		holder.Source: domain.CodeNestedInvalid,
		outer.Source:  domain.CodeNestedInvalid,
	}, byCode)
	for _, u := range res.Units {
		assert.Equal(t, point().Source, u.Source)
	}
}

func TestRun_PackageIdentifierClash(t *testing.T) {
	shadow := decl("PointBuilder", domain.RawMember{Name: "id", Kind: "int"})
	res, err := newPipeline().Run(context.Background(), []domain.Declaration{point(), shadow}, pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, []domain.SourceID{shadow.Source}, res.Failed)
	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, domain.ErrIdentifierClash.Error()+
		": package shapes: ImmutablePointBuilder is both the builder of Point and the value type of PointBuilder",
		res.Diagnostics[0].Message)
	assert.Contains(t, res.Diagnostics[1].Message, "NewImmutablePointBuilder is both the builder constructor of Point")

	other := shadow
	other.Output = "other/shapes_immut.go"
	res, err = newPipeline().Run(context.Background(), []domain.Declaration{point(), other}, pipeline.Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Failed, "types in another directory live in another package")
}

func TestRun_MalformedBatch(t *testing.T) {
	p := newPipeline()
	_, err := p.Run(context.Background(), []domain.Declaration{point()}, pipeline.Options{})
	require.NoError(t, err)

	anonymous := point()
	anonymous.Source = domain.SourceID{}
	twin := point()
	twin.Source = domain.NewSourceID("other.immut.yaml#Point")

	_, err = p.Run(context.Background(), []domain.Declaration{point(), point(), anonymous, twin}, pipeline.Options{})
	require.ErrorIs(t, err, domain.ErrMalformedBatch)
	assert.ErrorIs(t, err, domain.ErrDuplicateSourceID)
	assert.ErrorIs(t, err, domain.ErrEmptySourceID)
	assert.ErrorIs(t, err, domain.ErrDuplicateTypeName)
	assert.Equal(t, 3, p.Cache().Len(), "a malformed batch leaves the cache untouched")
}

func TestRun_Cancelled(t *testing.T) {
	p := newPipeline()
	_, err := p.Run(context.Background(), []domain.Declaration{point()}, pipeline.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Run(ctx, []domain.Declaration{line()}, pipeline.Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, p.Cache().Len(), "nothing is evicted by an aborted pass")
}

func TestRun_Spans(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)

	var names []string
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, name string) (context.Context, ports.Span) {
			names = append(names, name)
			return ctx, span
		}).Times(4)
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	span.EXPECT().End().Times(4)

	p := pipeline.New(cache.New(), fs.NewHasher(), tracer)
	_, err := p.Run(context.Background(), []domain.Declaration{point()}, pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Generating", "Extracting", "Validating", "Emitting"}, names)
}
