// Package emitter renders emission tasks into generated units.
package emitter

import (
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
	"go.trai.ch/immut/internal/engine/cache"
	"go.trai.ch/immut/internal/engine/planner"
	"go.trai.ch/zerr"
)

// Emitter turns emission tasks into generated units, reusing cached units
// whose inputs did not change.
type Emitter struct {
	cache         *cache.Cache
	fingerprinter ports.Fingerprinter
}

// New creates an Emitter backed by the given cache.
func New(c *cache.Cache, fingerprinter ports.Fingerprinter) *Emitter {
	return &Emitter{cache: c, fingerprinter: fingerprinter}
}

// Emit produces the unit of one task. The boolean reports whether the unit
// was served from the cache. The arena must hold the styled models of the
// pass so that nested attributes can be resolved.
func (e *Emitter) Emit(task domain.EmissionTask, arena *domain.Arena) (domain.GeneratedUnit, bool, error) {
	if task.Model == nil || task.Model.Style == nil {
		return domain.GeneratedUnit{}, false, domain.Annotate(domain.ErrStyleResolution, "artifact", task.Kind.String())
	}

	deps, err := Dependencies(task.Model, arena)
	if err != nil {
		return domain.GeneratedUnit{}, false, err
	}

	fingerprint := e.fingerprinter.Fingerprint(&task, deps)
	return e.cache.GetOrEmit(task.Key(), fingerprint, func() (domain.GeneratedUnit, error) {
		return Synthesize(task, arena)
	})
}

// Dependencies returns what the emitted code of a model needs to know about
// the models its nested attributes reference, in attribute order.
func Dependencies(m *domain.AttributeModel, arena *domain.Arena) ([]domain.DependencyInfo, error) {
	refs := domain.NestedRefs(m)
	if len(refs) == 0 {
		return nil, nil
	}

	deps := make([]domain.DependencyInfo, 0, len(refs))
	for _, ref := range refs {
		target, ok := arena.Get(ref)
		if !ok || target.Style == nil {
			return nil, zerr.With(domain.Annotate(domain.ErrModelNotFound, "source", m.Source.String()), "ref", ref.String())
		}
		deps = append(deps, domain.DependencyInfo{
			Source:     target.Source,
			TypeName:   target.TypeName,
			Style:      *target.Style,
			HasBuilder: planner.RequiresBuilder(target, arena),
		})
	}
	return deps, nil
}

// Synthesize renders a task without consulting any cache.
func Synthesize(task domain.EmissionTask, arena *domain.Arena) (domain.GeneratedUnit, error) {
	em := &emission{
		model: task.Model,
		names: namesOf(task.Model),
		arena: arena,
	}

	var (
		members []domain.Member
		err     error
	)
	switch task.Kind {
	case domain.ArtifactValue:
		members, err = em.value()
	case domain.ArtifactCopyWith:
		members, err = em.copyWith()
	case domain.ArtifactBuilder:
		members, err = em.builder()
	case domain.ArtifactNestedBuilder:
		members, err = em.nestedBuilder(task.Attribute)
	default:
		return domain.GeneratedUnit{}, domain.Annotate(domain.ErrUnknownArtifact, "artifact", task.Kind.String())
	}
	if err != nil {
		return domain.GeneratedUnit{}, zerr.With(domain.Annotate(err, "source", task.Model.Source.String()), "artifact", task.Kind.String())
	}

	return domain.GeneratedUnit{
		Source:   task.Model.Source,
		Artifact: task.Kind,
		Target:   task.Attribute,
		Package:  task.Model.Package,
		Output:   task.Model.Output,
		Imports:  collectImports(task.Model, members),
		Members:  members,
	}, nil
}

// emission carries the state shared by the strategies of one task.
type emission struct {
	model *domain.AttributeModel
	names names
	arena *domain.Arena
}

// target returns the names of a nested attribute's model.
func (em *emission) target(a *domain.Attribute) (*domain.AttributeModel, names, error) {
	m, ok := em.arena.Get(a.Kind.Ref)
	if !ok || m.Style == nil {
		return nil, names{}, zerr.With(domain.Annotate(domain.ErrModelNotFound, "attribute", a.Name), "ref", a.Kind.RefType)
	}
	return m, namesOf(m), nil
}

// fieldType is the type an attribute is stored as.
func (em *emission) fieldType(a *domain.Attribute) (string, error) {
	k := a.Kind
	switch k.Form {
	case domain.FormScalar:
		return k.Elem, nil
	case domain.FormOptional:
		return "*" + k.Elem, nil
	case domain.FormCollection:
		switch k.Shape {
		case domain.ShapeList:
			return "[]" + k.Elem, nil
		case domain.ShapeSet:
			return "map[" + k.Elem + "]struct{}", nil
		case domain.ShapeMap:
			return "map[" + k.Key + "]" + k.Elem, nil
		}
	case domain.FormNested:
		_, n, err := em.target(a)
		if err != nil {
			return "", err
		}
		return "*" + n.Type(), nil
	}
	return "", domain.Annotate(domain.ErrUnclassifiableKind, "attribute", a.Name)
}

// cloneExpr copies a stored value so that the copy shares no mutable state.
func cloneExpr(a *domain.Attribute, expr string) string {
	switch a.Kind.Form {
	case domain.FormOptional:
		return "immutable.ClonePtr(" + expr + ")"
	case domain.FormCollection:
		if a.Kind.Shape == domain.ShapeList {
			return "immutable.CloneSlice(" + expr + ")"
		}
		return "immutable.CloneMap(" + expr + ")"
	default:
		return expr
	}
}

// checkNames rejects styles under which two generated methods share a name.
func (em *emission) checkNames() error {
	if em.names.style.Naming.AccessorPrefix == em.names.style.Naming.CopyWithPrefix {
		return domain.Annotate(domain.ErrNamingConflict, "prefix", em.names.style.Naming.AccessorPrefix)
	}
	return nil
}
