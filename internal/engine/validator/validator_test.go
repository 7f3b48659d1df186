package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/engine/validator"
)

func scalar(name string) domain.Attribute {
	return domain.Attribute{Name: name, Kind: domain.ValueKind{Form: domain.FormScalar, Elem: "int"}}
}

func nested(name, ref string) domain.Attribute {
	return domain.Attribute{
		Name: name,
		Kind: domain.ValueKind{Form: domain.FormNested, Ref: domain.NewSourceID(ref), RefType: ref},
	}
}

func model(name string, attrs ...domain.Attribute) *domain.AttributeModel {
	return &domain.AttributeModel{
		TypeName:   name,
		Package:    "p",
		Source:     domain.NewSourceID(name),
		Attributes: attrs,
	}
}

func arenaOf(t *testing.T, models ...*domain.AttributeModel) *domain.Arena {
	t.Helper()
	a := domain.NewArena()
	for _, m := range models {
		require.NoError(t, a.Add(m))
	}
	return a
}

func codes(diags []domain.Diagnostic) []domain.DiagnosticCode {
	out := make([]domain.DiagnosticCode, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	m := model("Point", scalar("x"), scalar("y"))
	assert.Empty(t, validator.Validate(m, arenaOf(t, m)))
}

func TestValidate_LocalRules(t *testing.T) {
	derived := scalar("sum")
	derived.Derivation = domain.Derivation{Mode: domain.Derived, Expr: "1"}

	conflicting := scalar("x")
	conflicting.Mandatory = true
	conflicting.HasDefault = true
	conflicting.Default = "1"

	mandatoryList := domain.Attribute{
		Name:      "tags",
		Mandatory: true,
		Kind:      domain.ValueKind{Form: domain.FormCollection, Shape: domain.ShapeList, Elem: "string"},
	}

	tests := []struct {
		name  string
		model *domain.AttributeModel
		want  []domain.DiagnosticCode
	}{
		{
			name:  "EmptyModel",
			model: model("Empty"),
			want:  []domain.DiagnosticCode{domain.CodeEmptyModel},
		},
		{
			name:  "OnlyDerived",
			model: model("Derived", derived),
			want:  []domain.DiagnosticCode{domain.CodeEmptyModel},
		},
		{
			name:  "ConflictingDefault",
			model: model("Conflict", conflicting),
			want:  []domain.DiagnosticCode{domain.CodeConflictingDefault},
		},
		{
			name:  "MandatoryCollection",
			model: model("Tags", mandatoryList),
			want:  []domain.DiagnosticCode{domain.CodeInvalidCollectionConstraint},
		},
		{
			name:  "AllViolationsCollected",
			model: model("Both", mandatoryList, conflicting),
			want: []domain.DiagnosticCode{
				domain.CodeInvalidCollectionConstraint,
				domain.CodeConflictingDefault,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := validator.Validate(tt.model, arenaOf(t, tt.model))
			assert.Equal(t, tt.want, codes(diags))
			for _, d := range diags {
				assert.Equal(t, domain.SeverityError, d.Severity)
				assert.Equal(t, tt.model.Source, d.Source)
			}
		})
	}
}

func TestValidate_Cycles(t *testing.T) {
	t.Run("SelfCycle", func(t *testing.T) {
		a := model("A", scalar("id"), nested("self", "A"))
		diags := validator.Validate(a, arenaOf(t, a))
		require.Len(t, diags, 1)
		assert.Equal(t, domain.CodeCyclicNesting, diags[0].Code)
		assert.Equal(t, "self", diags[0].Attribute)
		assert.Contains(t, diags[0].Message, "A -> A")
	})

	t.Run("TwoNodeCycle", func(t *testing.T) {
		a := model("A", scalar("id"), nested("b", "B"))
		b := model("B", scalar("id"), nested("a", "A"))
		v := validator.New(arenaOf(t, a, b))

		diags := v.Validate(a)
		require.Len(t, diags, 1)
		assert.Equal(t, domain.CodeCyclicNesting, diags[0].Code)
		assert.Contains(t, diags[0].Message, "A -> B -> A")

		diags = v.Validate(b)
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Message, "B -> A -> B")
	})

	t.Run("ForeignCyclePropagates", func(t *testing.T) {
		a := model("A", scalar("id"), nested("b", "B"))
		b := model("B", scalar("id"), nested("a", "A"))
		c := model("C", scalar("id"), nested("a", "A"))

		diags := validator.Validate(c, arenaOf(t, a, b, c))
		assert.Equal(t, []domain.DiagnosticCode{domain.CodeNestedInvalid}, codes(diags))
		assert.Equal(t, "a", diags[0].Attribute)
	})
}

func TestValidate_NestedInvalid(t *testing.T) {
	t.Run("MissingTarget", func(t *testing.T) {
		outer := model("Outer", scalar("id"), nested("inner", "Inner"))
		diags := validator.Validate(outer, arenaOf(t, outer))
		require.Len(t, diags, 1)
		assert.Equal(t, domain.CodeNestedInvalid, diags[0].Code)
		assert.Contains(t, diags[0].Message, "Inner could not be extracted")
	})

	t.Run("InvalidTargetPropagatesTransitively", func(t *testing.T) {
		leaf := model("Leaf")
		middle := model("Middle", scalar("id"), nested("leaf", "Leaf"))
		outer := model("Outer", scalar("id"), nested("middle", "Middle"))
		v := validator.New(arenaOf(t, outer, middle, leaf))

		assert.Equal(t, []domain.DiagnosticCode{domain.CodeEmptyModel}, codes(v.Validate(leaf)))
		assert.Equal(t, []domain.DiagnosticCode{domain.CodeNestedInvalid}, codes(v.Validate(middle)))
		assert.Equal(t, []domain.DiagnosticCode{domain.CodeNestedInvalid}, codes(v.Validate(outer)))
	})

	t.Run("ValidTarget", func(t *testing.T) {
		leaf := model("Leaf", scalar("id"))
		outer := model("Outer", nested("first", "Leaf"), nested("second", "Leaf"))
		assert.Empty(t, validator.Validate(outer, arenaOf(t, outer, leaf)))
	})

	t.Run("ReportedOncePerTarget", func(t *testing.T) {
		outer := model("Outer", nested("first", "Gone"), nested("second", "Gone"))
		diags := validator.Validate(outer, arenaOf(t, outer))
		require.Len(t, diags, 1)
		assert.Equal(t, "first", diags[0].Attribute)
	})
}

func TestValidate_OrderAcrossRules(t *testing.T) {
	conflicting := scalar("x")
	conflicting.Mandatory = true
	conflicting.HasDefault = true

	m := model("Mixed", nested("gone", "Gone"), conflicting)
	diags := validator.Validate(m, arenaOf(t, m))
	assert.Equal(t, []domain.DiagnosticCode{domain.CodeNestedInvalid, domain.CodeConflictingDefault}, codes(diags))
	assert.Equal(t, "gone", diags[0].Attribute)
	assert.Equal(t, "x", diags[1].Attribute)
}
