// Package validator checks attribute models against the generation rules.
package validator

import (
	"fmt"

	"go.trai.ch/immut/internal/core/domain"
)

// Validator checks the models of one arena. Validity of every model is
// computed once at construction, so Validate is safe for concurrent use.
type Validator struct {
	arena   *domain.Arena
	cycles  map[domain.SourceID][]domain.SourceID
	healthy map[domain.SourceID]bool
}

// New prepares a Validator for the given arena.
func New(arena *domain.Arena) *Validator {
	v := &Validator{
		arena:   arena,
		cycles:  make(map[domain.SourceID][]domain.SourceID),
		healthy: make(map[domain.SourceID]bool, arena.Len()),
	}

	for m := range arena.Models() {
		if path, ok := arena.CyclePath(m.Source); ok {
			v.cycles[m.Source] = path
		}
	}

	// Dependency order finishes every reference before its referrer unless
	// both sit on a cycle, and cycle members are never healthy.
	for _, id := range arena.DependencyOrder() {
		m, _ := arena.Get(id)
		ok := len(localRules(m)) == 0 && v.cycles[id] == nil
		for _, ref := range domain.NestedRefs(m) {
			if !v.healthy[ref] {
				ok = false
			}
		}
		v.healthy[id] = ok
	}
	return v
}

// Validate checks one model against the arena it was created with.
func Validate(model *domain.AttributeModel, arena *domain.Arena) []domain.Diagnostic {
	return New(arena).Validate(model)
}

// Validate returns every violation of the model, in attribute order and then
// rule order. An empty result means the model may be emitted.
func (v *Validator) Validate(model *domain.AttributeModel) []domain.Diagnostic {
	diags := localRules(model)

	cycle := v.cycles[model.Source]
	if cycle == nil {
		if path, ok := v.arena.CyclePath(model.Source); ok {
			cycle = path
		}
	}
	onCycle := make(map[domain.SourceID]bool, len(cycle))
	for _, id := range cycle {
		onCycle[id] = true
	}

	cycleReported := false
	reportedRefs := make(map[domain.SourceID]bool)
	for i := range model.Attributes {
		a := &model.Attributes[i]
		if a.Kind.Form != domain.FormNested {
			continue
		}
		ref := a.Kind.Ref

		if len(cycle) > 1 && ref == cycle[1] && !cycleReported {
			cycleReported = true
			diags = append(diags, diagnostic(model, a, domain.CodeCyclicNesting,
				fmt.Sprintf("%s: %s", domain.ErrCyclicNesting.Error(), domain.FormatPath(cycle))))
			continue
		}
		if onCycle[ref] || reportedRefs[ref] {
			continue
		}

		target, exists := v.arena.Get(ref)
		switch {
		case !exists:
			reportedRefs[ref] = true
			diags = append(diags, diagnostic(model, a, domain.CodeNestedInvalid,
				fmt.Sprintf("%s: %s could not be extracted", domain.ErrNestedInvalid.Error(), a.Kind.RefType)))
		case !v.isHealthy(target):
			reportedRefs[ref] = true
			diags = append(diags, diagnostic(model, a, domain.CodeNestedInvalid,
				fmt.Sprintf("%s: %s", domain.ErrNestedInvalid.Error(), a.Kind.RefType)))
		}
	}

	return sortByAttribute(model, diags)
}

func (v *Validator) isHealthy(m *domain.AttributeModel) bool {
	ok, known := v.healthy[m.Source]
	return known && ok
}

// localRules applies the rules that need nothing but the model itself.
func localRules(model *domain.AttributeModel) []domain.Diagnostic {
	var diags []domain.Diagnostic

	if len(model.Settable()) == 0 {
		diags = append(diags, domain.Diagnostic{
			Severity: domain.SeverityError,
			Code:     domain.CodeEmptyModel,
			Source:   model.Source,
			Message:  domain.ErrEmptyModel.Error(),
		})
	}

	for i := range model.Attributes {
		a := &model.Attributes[i]
		if a.Mandatory && a.HasDefault {
			diags = append(diags, diagnostic(model, a, domain.CodeConflictingDefault, domain.ErrConflictingDefault.Error()))
		}
		if a.Mandatory && a.Kind.Form == domain.FormCollection {
			diags = append(diags, diagnostic(model, a, domain.CodeInvalidCollectionConstraint,
				domain.ErrInvalidCollectionConstraint.Error()))
		}
	}
	return diags
}

// sortByAttribute orders diagnostics by the position of their attribute,
// keeping rule order within one attribute. Type-level diagnostics come first.
func sortByAttribute(model *domain.AttributeModel, diags []domain.Diagnostic) []domain.Diagnostic {
	if len(diags) < 2 {
		return diags
	}
	pos := make(map[string]int, len(model.Attributes))
	for i := range model.Attributes {
		pos[model.Attributes[i].Name] = i + 1
	}
	buckets := make([][]domain.Diagnostic, len(model.Attributes)+1)
	for _, d := range diags {
		p := pos[d.Attribute]
		buckets[p] = append(buckets[p], d)
	}
	out := make([]domain.Diagnostic, 0, len(diags))
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

func diagnostic(model *domain.AttributeModel, a *domain.Attribute, code domain.DiagnosticCode, msg string) domain.Diagnostic {
	return domain.Diagnostic{
		Severity:  domain.SeverityError,
		Code:      code,
		Source:    model.Source,
		Message:   msg,
		Attribute: a.Name,
	}
}
