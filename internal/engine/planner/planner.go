// Package planner decides which artifacts each validated model needs.
package planner

import (
	"go.trai.ch/immut/internal/core/domain"
)

// builderThreshold is the largest number of mandatory or optional-without-default
// attributes a model may have and still get by with its constructor alone.
const builderThreshold = 1

// Plan returns the emission tasks of the given models. Models are visited in
// nesting dependency order so that every nested target is planned before the
// models referencing it; declaration order breaks ties. Within one model the
// tasks are value, copy-with, builder, then one nested builder per attribute.
//
// Models must carry a resolved style. Nested targets are looked up in arena,
// which should hold the styled models of the same pass.
func Plan(models []*domain.AttributeModel, arena *domain.Arena) []domain.EmissionTask {
	wanted := make(map[domain.SourceID]*domain.AttributeModel, len(models))
	for _, m := range models {
		wanted[m.Source] = m
	}

	ordered := make([]*domain.AttributeModel, 0, len(models))
	placed := make(map[domain.SourceID]bool, len(models))
	for _, id := range arena.DependencyOrder() {
		if m, ok := wanted[id]; ok {
			ordered = append(ordered, m)
			placed[id] = true
		}
	}
	for _, m := range models {
		if !placed[m.Source] {
			ordered = append(ordered, m)
		}
	}

	var tasks []domain.EmissionTask
	for _, m := range ordered {
		tasks = append(tasks, planModel(m, arena)...)
	}
	return tasks
}

func planModel(m *domain.AttributeModel, arena *domain.Arena) []domain.EmissionTask {
	tasks := []domain.EmissionTask{
		{Kind: domain.ArtifactValue, Model: m},
		{Kind: domain.ArtifactCopyWith, Model: m},
	}

	nested := NestedBuilders(m, arena)
	if len(nested) > 0 || ownBuilder(m) {
		tasks = append(tasks, domain.EmissionTask{Kind: domain.ArtifactBuilder, Model: m})
	}
	for _, a := range nested {
		tasks = append(tasks, domain.EmissionTask{Kind: domain.ArtifactNestedBuilder, Model: m, Attribute: a.Name})
	}
	return tasks
}

// RequiresBuilder reports whether a builder is planned for the model.
func RequiresBuilder(m *domain.AttributeModel, arena *domain.Arena) bool {
	return requiresBuilder(m, arena, make(map[domain.SourceID]bool))
}

func requiresBuilder(m *domain.AttributeModel, arena *domain.Arena, visiting map[domain.SourceID]bool) bool {
	if ownBuilder(m) {
		return true
	}
	if visiting[m.Source] {
		return false
	}
	visiting[m.Source] = true
	defer delete(visiting, m.Source)

	for i := range m.Attributes {
		if target, ok := nestedTarget(&m.Attributes[i], arena); ok && requiresBuilder(target, arena, visiting) {
			return true
		}
	}
	return false
}

// NestedBuilders returns the nested attributes whose target model has a builder.
func NestedBuilders(m *domain.AttributeModel, arena *domain.Arena) []*domain.Attribute {
	var out []*domain.Attribute
	for i := range m.Attributes {
		a := &m.Attributes[i]
		if target, ok := nestedTarget(a, arena); ok && RequiresBuilder(target, arena) {
			out = append(out, a)
		}
	}
	return out
}

func nestedTarget(a *domain.Attribute, arena *domain.Arena) (*domain.AttributeModel, bool) {
	if !a.Settable() || a.Kind.Form != domain.FormNested || arena == nil {
		return nil, false
	}
	return arena.Get(a.Kind.Ref)
}

// ownBuilder applies the rules that look at the model alone.
func ownBuilder(m *domain.AttributeModel) bool {
	if m.Style != nil && m.Style.BuilderRequired {
		return true
	}
	explicit := 0
	for i := range m.Attributes {
		a := &m.Attributes[i]
		if !a.Settable() {
			continue
		}
		if a.Mandatory || (a.Kind.Form == domain.FormOptional && !a.HasDefault) {
			explicit++
		}
	}
	return explicit > builderThreshold
}
