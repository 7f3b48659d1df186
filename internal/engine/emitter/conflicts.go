package emitter

import (
	"fmt"
	"maps"
	"path"
	"slices"

	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/engine/planner"
)

// Conflicts reports the generated identifiers of a styled model that would
// share a name within one Go scope: the fields and methods of the value type,
// the fields and methods of its builder, and the parameters of its
// constructor. A model with conflicts must not be emitted.
func Conflicts(m *domain.AttributeModel, arena *domain.Arena) []domain.Diagnostic {
	if m.Style == nil {
		return nil
	}
	n := namesOf(m)
	c := &clashes{}

	if n.style.Naming.AccessorPrefix == n.style.Naming.CopyWithPrefix {
		c.diags = append(c.diags, domain.Diagnostic{
			Severity: domain.SeverityError,
			Code:     domain.CodeExtraction,
			Source:   m.Source,
			Message:  fmt.Sprintf("%s: %q", domain.ErrNamingConflict.Error(), n.style.Naming.AccessorPrefix),
		})
		return c.diags
	}

	hasBuilder := planner.RequiresBuilder(m, arena)
	settable := m.Settable()

	value := c.scope(n.Type() + ".")
	for _, method := range []string{"Equal", "Hash", "String"} {
		value.claim(method, claimant{source: m.Source, role: "the " + method + " method"})
	}
	for i := range m.Attributes {
		a := &m.Attributes[i]
		value.claim(field(a), of(m, a, "the field"))
		if a.Derivation.Mode == domain.Lazy {
			value.claim(onceField(a), of(m, a, "the once guard"))
		}
		value.claim(n.Accessor(a), of(m, a, "the accessor"))
	}
	for _, a := range settable {
		value.claim(n.CopyWith(a), of(m, a, "the copy-with method"))
	}

	params := c.scope(n.Constructor() + ".")
	for _, ident := range packageNames(m, arena, hasBuilder) {
		params.claim(ident, claimant{source: m.Source, role: "a generated type or function"})
	}
	for _, a := range settable {
		params.claim(n.param(a), of(m, a, "the parameter"))
	}

	if !hasBuilder {
		return c.diags
	}

	nested := planner.NestedBuilders(m, arena)
	builder := c.scope(n.Builder() + ".")
	builder.claim("Build", claimant{source: m.Source, role: "the Build method"})
	if len(nested) > 0 {
		builder.claim("errs", claimant{source: m.Source, role: "the nested build errors"})
	}
	for _, a := range settable {
		builder.claim(field(a), of(m, a, "the slot"))
		if tracksSet(a) {
			builder.claim(setField(a), of(m, a, "the set flag"))
		}
		builder.claim(n.SlotSetter(a), of(m, a, "the setter"))
	}
	for _, a := range nested {
		builder.claim(n.NestedSetter(a), of(m, a, "the nested builder method"))
	}
	return c.diags
}

// PackageConflicts reports models whose value types, builders or their
// factories share a name with those of an earlier model of the same Go
// package, or with a package a generated file imports. Models are checked in
// the given order and the later model carries the diagnostic.
func PackageConflicts(models []*domain.AttributeModel, arena *domain.Arena) []domain.Diagnostic {
	c := &clashes{}
	packages := make(map[string]*scope)

	for _, m := range models {
		if m.Style == nil {
			continue
		}
		key := path.Dir(m.Output) + " " + m.Package
		pkg, ok := packages[key]
		if !ok {
			pkg = c.scope("package " + m.Package + ": ")
			for _, imp := range slices.Sorted(maps.Keys(stdImports)) {
				pkg.claim(imp, claimant{role: "an imported package"})
			}
			packages[key] = pkg
		}

		n := namesOf(m)
		pkg.claim(n.Type(), claimant{source: m.Source, role: "the value type of " + m.TypeName})
		pkg.claim(n.Constructor(), claimant{source: m.Source, role: "the constructor of " + m.TypeName})
		if planner.RequiresBuilder(m, arena) {
			pkg.claim(n.Builder(), claimant{source: m.Source, role: "the builder of " + m.TypeName})
			pkg.claim(n.BuilderConstructor(), claimant{source: m.Source, role: "the builder constructor of " + m.TypeName})
		}
	}
	return c.diags
}

// packageNames lists the package-level identifiers the model's constructor
// and copy-with bodies refer to.
func packageNames(m *domain.AttributeModel, arena *domain.Arena, hasBuilder bool) []string {
	var out []string
	add := func(ident string) {
		if !slices.Contains(out, ident) {
			out = append(out, ident)
		}
	}

	n := namesOf(m)
	add(n.Type())
	add(n.Constructor())
	if hasBuilder {
		add(n.Builder())
		add(n.BuilderConstructor())
	}
	for i := range m.Attributes {
		a := &m.Attributes[i]
		if a.Kind.Form != domain.FormNested || arena == nil {
			continue
		}
		if target, ok := arena.Get(a.Kind.Ref); ok && target.Style != nil {
			add(namesOf(target).Type())
		}
	}
	return out
}

type claimant struct {
	source    domain.SourceID
	attribute string
	role      string
}

func of(m *domain.AttributeModel, a *domain.Attribute, role string) claimant {
	return claimant{source: m.Source, attribute: a.Name, role: role + " of " + a.Name}
}

type clashes struct {
	diags []domain.Diagnostic
}

func (c *clashes) scope(prefix string) *scope {
	return &scope{prefix: prefix, taken: make(map[string]claimant), clashes: c}
}

// scope is one Go namespace. The first claimant of a name keeps it.
type scope struct {
	prefix  string
	taken   map[string]claimant
	clashes *clashes
}

func (s *scope) claim(ident string, by claimant) {
	first, taken := s.taken[ident]
	if !taken {
		s.taken[ident] = by
		return
	}
	s.clashes.diags = append(s.clashes.diags, domain.Diagnostic{
		Severity:  domain.SeverityError,
		Code:      domain.CodeExtraction,
		Source:    by.source,
		Attribute: by.attribute,
		Message: fmt.Sprintf("%s: %s%s is both %s and %s",
			domain.ErrIdentifierClash.Error(), s.prefix, ident, first.role, by.role),
	})
}
