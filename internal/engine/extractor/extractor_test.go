package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/engine/extractor"
)

func pointDecl(members ...domain.RawMember) *domain.Declaration {
	return &domain.Declaration{
		Source:   domain.NewSourceID("shapes.immut.yaml#Point"),
		Package:  "shapes",
		TypeName: "Point",
		Members:  members,
		Output:   "shapes_immut.go",
	}
}

func shapesIndex(t *testing.T) *domain.TypeIndex {
	t.Helper()
	idx := domain.NewTypeIndex()
	require.NoError(t, idx.Add("shapes", "Point", domain.NewSourceID("shapes.immut.yaml#Point")))
	require.NoError(t, idx.Add("shapes", "Address", domain.NewSourceID("shapes.immut.yaml#Address")))
	return idx
}

func TestExtract_Kinds(t *testing.T) {
	tests := []struct {
		name string
		kind string
		want domain.ValueKind
	}{
		{"Scalar", "int", domain.ValueKind{Form: domain.FormScalar, Elem: "int"}},
		{"QualifiedScalar", "time.Time", domain.ValueKind{Form: domain.FormScalar, Elem: "time.Time"}},
		{"PointerOptional", "*string", domain.ValueKind{Form: domain.FormOptional, Elem: "string"}},
		{"NamedOptional", "optional[string]", domain.ValueKind{Form: domain.FormOptional, Elem: "string"}},
		{"SliceList", "[]int", domain.ValueKind{Form: domain.FormCollection, Shape: domain.ShapeList, Elem: "int"}},
		{"NamedList", "list[int]", domain.ValueKind{Form: domain.FormCollection, Shape: domain.ShapeList, Elem: "int"}},
		{"Set", "set[string]", domain.ValueKind{Form: domain.FormCollection, Shape: domain.ShapeSet, Elem: "string"}},
		{"Map", "map[string]int", domain.ValueKind{Form: domain.FormCollection, Shape: domain.ShapeMap, Key: "string", Elem: "int"}},
		{"QualifiedMap", "map[string]time.Duration", domain.ValueKind{Form: domain.FormCollection, Shape: domain.ShapeMap, Key: "string", Elem: "time.Duration"}},
		{"Nested", "Address", domain.ValueKind{
			Form: domain.FormNested, Ref: domain.NewSourceID("shapes.immut.yaml#Address"), RefType: "Address",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, diags, err := extractor.Extract(pointDecl(domain.RawMember{Name: "v", Kind: tt.kind}), shapesIndex(t))
			require.NoError(t, err)
			assert.Empty(t, diags)
			require.Len(t, model.Attributes, 1)
			assert.Equal(t, tt.want, model.Attributes[0].Kind)
		})
	}
}

func TestExtract_UnclassifiableKinds(t *testing.T) {
	kinds := []string{
		"",
		"[]*int",
		"optional[[]int]",
		"map[string",
		"map[string][]int",
		"set[int]x",
		"func()",
		"chan int",
		"[]Address",
		"*Address",
	}

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			model, diags, err := extractor.Extract(pointDecl(domain.RawMember{Name: "v", Kind: kind}), shapesIndex(t))
			require.ErrorIs(t, err, domain.ErrExtraction)
			assert.ErrorIs(t, err, domain.ErrUnclassifiableKind)
			assert.Nil(t, model)
			require.Len(t, diags, 1)
			assert.Equal(t, domain.CodeExtraction, diags[0].Code)
			assert.Equal(t, "v", diags[0].Attribute)
			assert.Contains(t, diags[0].Message, domain.ErrUnclassifiableKind.Error())
		})
	}
}

func TestExtract_PointScenario(t *testing.T) {
	model, diags, err := extractor.Extract(pointDecl(
		domain.RawMember{Name: "x", Kind: "int", Modifiers: []string{"mandatory"}},
		domain.RawMember{Name: "y", Kind: "int", Modifiers: []string{"required"}},
		domain.RawMember{Name: "norm", Kind: "float64", Body: "math.Hypot(float64(v.X()), float64(v.Y()))", Modifiers: []string{"lazy"}},
		domain.RawMember{Name: "sum", Kind: "int", Body: "v.X() + v.Y()"},
	), shapesIndex(t))
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert.Equal(t, "Point", model.TypeName)
	assert.Equal(t, "shapes", model.Package)
	assert.Equal(t, "shapes_immut.go", model.Output)
	require.Len(t, model.Attributes, 4)

	names := make([]string, len(model.Attributes))
	for i, a := range model.Attributes {
		names[i] = a.Name
	}
	assert.Equal(t, []string{"x", "y", "norm", "sum"}, names)

	assert.True(t, model.Attributes[0].Mandatory)
	assert.True(t, model.Attributes[1].Mandatory)
	assert.Equal(t, domain.Lazy, model.Attributes[2].Derivation.Mode)
	assert.Equal(t, domain.Derived, model.Attributes[3].Derivation.Mode)
	assert.Equal(t, "v.X() + v.Y()", model.Attributes[3].Derivation.Expr)
	assert.Len(t, model.Settable(), 2)
}

func TestExtract_Defaults(t *testing.T) {
	model, _, err := extractor.Extract(pointDecl(
		domain.RawMember{Name: "label", Kind: "string", Default: `"origin"`},
		domain.RawMember{Name: "x", Kind: "int"},
	), nil)
	require.NoError(t, err)

	assert.True(t, model.Attributes[0].HasDefault)
	assert.Equal(t, `"origin"`, model.Attributes[0].Default)
	assert.False(t, model.Attributes[1].HasDefault)
}

func TestExtract_MemberErrors(t *testing.T) {
	tests := []struct {
		name    string
		member  domain.RawMember
		wantErr error
	}{
		{
			name:    "ParametersWithoutBody",
			member:  domain.RawMember{Name: "scale", Kind: "int", Params: []string{"factor int"}},
			wantErr: domain.ErrMemberHasParameters,
		},
		{
			name:    "TypeParameters",
			member:  domain.RawMember{Name: "first", Kind: "int", TypeParams: []string{"T any"}},
			wantErr: domain.ErrMemberHasTypeParameters,
		},
		{
			name:    "UnknownModifier",
			member:  domain.RawMember{Name: "x", Kind: "int", Modifiers: []string{"volatile"}},
			wantErr: domain.ErrUnknownModifier,
		},
		{
			name:    "InvalidName",
			member:  domain.RawMember{Name: "1x", Kind: "int"},
			wantErr: domain.ErrInvalidAttributeName,
		},
		{
			name:    "ReservedName",
			member:  domain.RawMember{Name: "hash", Kind: "int"},
			wantErr: domain.ErrReservedAttributeName,
		},
		{
			name:    "LazyWithoutBody",
			member:  domain.RawMember{Name: "x", Kind: "int", Modifiers: []string{"cached"}},
			wantErr: domain.ErrLazyWithoutBody,
		},
		{
			name:    "MandatoryDerived",
			member:  domain.RawMember{Name: "x", Kind: "int", Body: "1", Modifiers: []string{"mandatory"}},
			wantErr: domain.ErrDerivedInitializer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags, err := extractor.Extract(pointDecl(tt.member), nil)
			require.ErrorIs(t, err, domain.ErrExtraction)
			assert.ErrorIs(t, err, tt.wantErr)
			require.Len(t, diags, 1)
			assert.Equal(t, domain.SeverityError, diags[0].Severity)
			assert.Contains(t, diags[0].Message, tt.wantErr.Error())
		})
	}
}

func TestExtract_SkipsMethodsWithBody(t *testing.T) {
	model, diags, err := extractor.Extract(pointDecl(
		domain.RawMember{Name: "x", Kind: "int"},
		domain.RawMember{Name: "scaled", Kind: "int", Params: []string{"f int"}, Body: "v.X() * f"},
	), nil)
	require.NoError(t, err)
	require.Len(t, model.Attributes, 1)
	require.Len(t, diags, 1)
	assert.Equal(t, domain.SeverityWarning, diags[0].Severity)
	assert.Equal(t, domain.CodeSkippedMember, diags[0].Code)
	assert.Equal(t, "scaled", diags[0].Attribute)
	assert.False(t, domain.HasErrors(diags))
}

func TestExtract_DuplicateAfterNormalization(t *testing.T) {
	_, diags, err := extractor.Extract(pointDecl(
		domain.RawMember{Name: "x", Kind: "int"},
		domain.RawMember{Name: "X", Kind: "int"},
		domain.RawMember{Name: "y", Kind: "int"},
		domain.RawMember{Name: "y", Kind: "string"},
	), nil)
	require.ErrorIs(t, err, domain.ErrDuplicateAttribute)
	require.Len(t, diags, 2)
	assert.Equal(t, "X", diags[0].Attribute)
	assert.Equal(t, "y", diags[1].Attribute)
	for _, d := range diags {
		assert.Contains(t, d.Message, domain.ErrDuplicateAttribute.Error())
	}
}

func TestExtract_EmptyTypeName(t *testing.T) {
	decl := pointDecl(domain.RawMember{Name: "x", Kind: "int"})
	decl.TypeName = ""
	_, diags, err := extractor.Extract(decl, nil)
	require.ErrorIs(t, err, domain.ErrEmptyTypeName)
	require.Len(t, diags, 1)
	assert.Empty(t, diags[0].Attribute)
}

func TestExtract_Fragments(t *testing.T) {
	yes := true
	prefix := "Frozen"
	decl := pointDecl(domain.RawMember{Name: "x", Kind: "int"})
	decl.Scope = domain.StyleFragment{TypePrefix: &prefix}
	decl.Style = domain.StyleFragment{BuilderRequired: &yes}
	decl.Imports = map[string]string{"time": "time"}

	model, _, err := extractor.Extract(decl, nil)
	require.NoError(t, err)
	require.Len(t, model.Fragments, 2)
	assert.Equal(t, "Frozen", *model.Fragments[0].TypePrefix)
	assert.True(t, *model.Fragments[1].BuilderRequired)

	decl.Imports["time"] = "changed"
	assert.Equal(t, "time", model.Imports["time"])
}

func TestExtract_Deterministic(t *testing.T) {
	decl := pointDecl(
		domain.RawMember{Name: "x", Kind: "int", Modifiers: []string{"mandatory"}},
		domain.RawMember{Name: "tags", Kind: "set[string]"},
		domain.RawMember{Name: "home", Kind: "Address"},
	)
	first, _, err := extractor.Extract(decl, shapesIndex(t))
	require.NoError(t, err)
	second, _, err := extractor.Extract(decl, shapesIndex(t))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
