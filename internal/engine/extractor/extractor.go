// Package extractor turns raw type declarations into normalized attribute models.
package extractor

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/zerr"
)

// reserved are the accessor names taken by methods every value type carries.
var reserved = map[string]bool{
	"Equal":  true,
	"Hash":   true,
	"String": true,
}

// Extract builds the attribute model of one declaration.
//
// Nested kinds are resolved through index, which must hold every type of the
// discovery pass. On failure the returned error wraps every offending member
// and the diagnostics carry one error per member; warnings are returned along
// with a successful model.
func Extract(decl *domain.Declaration, index *domain.TypeIndex) (*domain.AttributeModel, []domain.Diagnostic, error) {
	c := &collector{source: decl.Source}

	if decl.TypeName == "" {
		c.fail("", domain.ErrEmptyTypeName, "")
		return nil, c.diags, c.err()
	}

	parser := kindParser{pkg: decl.Package, index: index}
	seen := make(map[string]string, len(decl.Members))
	attrs := make([]domain.Attribute, 0, len(decl.Members))

	for i := range decl.Members {
		attr, ok := c.member(&decl.Members[i], parser, seen)
		if ok {
			attrs = append(attrs, attr)
		}
	}

	if err := c.err(); err != nil {
		return nil, c.diags, err
	}

	model := &domain.AttributeModel{
		TypeName:   decl.TypeName,
		Package:    decl.Package,
		Attributes: attrs,
		Source:     decl.Source,
		Imports:    maps.Clone(decl.Imports),
		Output:     decl.Output,
	}
	for _, f := range []domain.StyleFragment{decl.Scope, decl.Style} {
		if !f.IsEmpty() {
			model.Fragments = append(model.Fragments, f)
		}
	}
	return model, c.diags, nil
}

// member classifies one raw member. It reports false when the member does not
// become an attribute, either because it failed or because it was skipped.
func (c *collector) member(m *domain.RawMember, parser kindParser, seen map[string]string) (domain.Attribute, bool) {
	name := strings.TrimSpace(m.Name)
	if !identRe.MatchString(name) {
		c.fail(name, domain.ErrInvalidAttributeName, fmt.Sprintf("%q", m.Name))
		return domain.Attribute{}, false
	}

	if len(m.TypeParams) > 0 {
		c.fail(name, domain.ErrMemberHasTypeParameters, "")
		return domain.Attribute{}, false
	}
	if len(m.Params) > 0 {
		if m.Body == "" {
			c.fail(name, domain.ErrMemberHasParameters, "")
		} else {
			c.warn(name, domain.ErrMemberSkipped)
		}
		return domain.Attribute{}, false
	}

	exported := domain.Exported(name)
	if reserved[exported] {
		c.fail(name, domain.ErrReservedAttributeName, exported)
		return domain.Attribute{}, false
	}
	if first, dup := seen[exported]; dup {
		c.fail(name, domain.ErrDuplicateAttribute, fmt.Sprintf("%q and %q", first, name))
		return domain.Attribute{}, false
	}
	seen[exported] = name

	mandatory, lazy, err := modifiers(m.Modifiers)
	if err != nil {
		c.failErr(name, err)
		return domain.Attribute{}, false
	}

	kind, err := parser.parse(m.Kind)
	if err != nil {
		c.failErr(name, domain.Annotate(err, "kind", m.Kind))
		return domain.Attribute{}, false
	}

	attr := domain.Attribute{
		Name:       name,
		Kind:       kind,
		Mandatory:  mandatory,
		HasDefault: m.Default != "",
		Default:    m.Default,
	}

	switch {
	case m.Body != "" && (mandatory || attr.HasDefault):
		c.fail(name, domain.ErrDerivedInitializer, "")
		return domain.Attribute{}, false
	case m.Body != "" && lazy:
		attr.Derivation = domain.Derivation{Mode: domain.Lazy, Expr: m.Body}
	case m.Body != "":
		attr.Derivation = domain.Derivation{Mode: domain.Derived, Expr: m.Body}
	case lazy:
		c.fail(name, domain.ErrLazyWithoutBody, "")
		return domain.Attribute{}, false
	}
	return attr, true
}

// modifiers folds the modifier list into flags.
func modifiers(mods []string) (mandatory, lazy bool, err error) {
	for _, raw := range mods {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case domain.ModifierMandatory, domain.ModifierRequired:
			mandatory = true
		case domain.ModifierLazy, domain.ModifierCached:
			lazy = true
		default:
			return false, false, domain.Annotate(domain.ErrUnknownModifier, "modifier", raw)
		}
	}
	return mandatory, lazy, nil
}

type collector struct {
	source domain.SourceID
	diags  []domain.Diagnostic
	errs   []error
}

func (c *collector) fail(attr string, sentinel error, detail string) {
	msg := sentinel.Error()
	if detail != "" {
		msg += ": " + detail
	}
	c.record(attr, sentinel, msg)
}

func (c *collector) failErr(attr string, err error) {
	c.record(attr, err, domain.Message(err))
}

func (c *collector) record(attr string, err error, msg string) {
	if attr != "" {
		err = domain.Annotate(err, "attribute", attr)
	}
	c.errs = append(c.errs, err)
	c.diags = append(c.diags, domain.Diagnostic{
		Severity:  domain.SeverityError,
		Code:      domain.CodeExtraction,
		Source:    c.source,
		Message:   msg,
		Attribute: attr,
	})
}

func (c *collector) warn(attr string, sentinel error) {
	c.diags = append(c.diags, domain.Diagnostic{
		Severity:  domain.SeverityWarning,
		Code:      domain.CodeSkippedMember,
		Source:    c.source,
		Message:   sentinel.Error(),
		Attribute: attr,
	})
}

func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return zerr.With(
		domain.Wrap(errors.Join(c.errs...), domain.ErrExtraction),
		"source", c.source.String(),
	)
}
