package emitter

import (
	"go/token"

	"go.trai.ch/immut/internal/core/domain"
)

// reservedLocals are identifiers generated bodies declare or import themselves.
// Parameters named after attributes must not shadow them.
var reservedLocals = map[string]bool{
	"b":          true,
	"v":          true,
	"other":      true,
	"h":          true,
	"fn":         true,
	"nb":         true,
	"err":        true,
	"missing":    true,
	"elems":      true,
	"key":        true,
	"value":      true,
	"errors":     true,
	"fmt":        true,
	"maps":       true,
	"slices":     true,
	"sync":       true,
	"immutable":  true,
	"struct":     true,
	"bool":       true,
	"string":     true,
	"error":      true,
	"len":        true,
	"make":       true,
	"append":     true,
	"nil":        true,
	"true":       true,
	"false":      true,
	"any":        true,
	"comparable": true,
}

// names derives every generated identifier of one model from its style.
type names struct {
	model *domain.AttributeModel
	style domain.EffectiveStyle
}

func namesOf(m *domain.AttributeModel) names {
	return names{model: m, style: *m.Style}
}

func (n names) visible(name string) string {
	if n.style.Visibility == domain.PackageOnly {
		return domain.Unexported(name)
	}
	return domain.Exported(name)
}

func (n names) factory(typeName string) string {
	if n.style.Visibility == domain.PackageOnly {
		return "new" + domain.Exported(typeName)
	}
	return "New" + domain.Exported(typeName)
}

func (n names) base() string {
	return n.style.Naming.TypePrefix + n.model.TypeName + n.style.Naming.TypeSuffix
}

// Type is the generated value type.
func (n names) Type() string { return n.visible(n.base()) }

// Constructor is the value type's factory function.
func (n names) Constructor() string { return n.factory(n.Type()) }

// Builder is the generated builder type.
func (n names) Builder() string { return n.visible(n.base() + n.style.Naming.BuilderSuffix) }

// BuilderConstructor is the builder's factory function.
func (n names) BuilderConstructor() string { return n.factory(n.Builder()) }

// Accessor is the read method of an attribute.
func (n names) Accessor(a *domain.Attribute) string {
	return domain.Exported(n.style.Naming.AccessorPrefix + domain.Exported(a.Name))
}

// CopyWith is the copy-with-modification method of an attribute.
func (n names) CopyWith(a *domain.Attribute) string {
	return domain.Exported(n.style.Naming.CopyWithPrefix + domain.Exported(a.Name))
}

// Setter is the builder method overwriting an attribute's slot.
func (n names) Setter(a *domain.Attribute) string { return domain.Exported(a.Name) }

// Adder is the builder method appending to a collection slot.
func (n names) Adder(a *domain.Attribute) string { return "Add" + domain.Exported(a.Name) }

// Putter is the builder method adding one entry to a map slot.
func (n names) Putter(a *domain.Attribute) string { return "Put" + domain.Exported(a.Name) }

// SlotSetter is the builder method filling an attribute's slot under the
// model's collection strategy.
func (n names) SlotSetter(a *domain.Attribute) string {
	switch {
	case a.Kind.Form != domain.FormCollection || n.style.Collections == domain.ReplaceWhole:
		return n.Setter(a)
	case a.Kind.Shape == domain.ShapeMap:
		return n.Putter(a)
	default:
		return n.Adder(a)
	}
}

// NestedSetter is the builder method configuring a nested attribute through its own builder.
func (n names) NestedSetter(a *domain.Attribute) string { return domain.Exported(a.Name) + "With" }

// field is the struct field holding an attribute.
func field(a *domain.Attribute) string {
	name := domain.Unexported(a.Name)
	if token.IsKeyword(name) {
		return name + "_"
	}
	return name
}

// onceField guards the computation of a lazy attribute.
func onceField(a *domain.Attribute) string {
	return domain.Unexported(a.Name) + "Once"
}

// setField records whether a builder slot was set.
func setField(a *domain.Attribute) string {
	return domain.Unexported(a.Name) + "Set"
}

// param is the parameter or local variable carrying an attribute's value.
func (n names) param(a *domain.Attribute) string {
	name := field(a)
	if reservedLocals[name] {
		return name + "_"
	}
	if _, clash := n.model.Imports[name]; clash {
		return name + "_"
	}
	if kindQualifiers(n.model)[name] {
		return name + "_"
	}
	return name
}
