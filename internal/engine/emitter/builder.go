package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/engine/planner"
)

// builder renders the staged builder: struct, factory, setters and Build.
func (em *emission) builder() ([]domain.Member, error) {
	typ := em.names.Type()
	bt := em.names.Builder()
	recv := &domain.Param{Name: "b", Type: "*" + bt}
	collectsErrors := len(planner.NestedBuilders(em.model, em.arena)) > 0

	var fields []domain.Member
	for _, a := range em.model.Settable() {
		t, err := em.fieldType(a)
		if err != nil {
			return nil, err
		}
		fields = append(fields, domain.Member{Kind: domain.MemberField, Name: field(a), Type: t})
		if tracksSet(a) {
			fields = append(fields, domain.Member{Kind: domain.MemberField, Name: setField(a), Type: "bool"})
		}
	}
	if collectsErrors {
		fields = append(fields, domain.Member{Kind: domain.MemberField, Name: "errs", Type: "[]error"})
	}

	members := []domain.Member{
		{
			Kind:    domain.MemberNestedType,
			Name:    bt,
			Doc:     fmt.Sprintf("%s builds %s values. The zero value is ready to use.", bt, typ),
			Type:    "struct",
			Members: fields,
		},
		{
			Kind:    domain.MemberConstructor,
			Name:    em.names.BuilderConstructor(),
			Doc:     fmt.Sprintf("%s creates an empty %s.", em.names.BuilderConstructor(), bt),
			Results: []string{"*" + bt},
			Body:    []string{"return &" + bt + "{}"},
		},
	}

	for _, a := range em.model.Settable() {
		setters, err := em.setters(recv, a)
		if err != nil {
			return nil, err
		}
		members = append(members, setters...)
	}

	return append(members, em.build(recv, typ, collectsErrors)), nil
}

// tracksSet reports whether Build must know if a slot was set.
func tracksSet(a *domain.Attribute) bool {
	return a.Mandatory || a.HasDefault
}

func (em *emission) markSet(a *domain.Attribute) []string {
	if !tracksSet(a) {
		return nil
	}
	return []string{"b." + setField(a) + " = true"}
}

// setters renders the builder methods of one slot. Scalars, optionals and
// nested values are overwritten. Collections are appended to or replaced
// whole depending on the style; with replace-whole the last call wins.
func (em *emission) setters(recv *domain.Param, a *domain.Attribute) ([]domain.Member, error) {
	t, err := em.fieldType(a)
	if err != nil {
		return nil, err
	}
	slot := "b." + field(a)
	p := em.names.param(a)
	name := em.names.SlotSetter(a)
	method := func(doc string, params []domain.Param, body ...string) domain.Member {
		body = append(body, em.markSet(a)...)
		body = append(body, "return b")
		return domain.Member{
			Kind:     domain.MemberMethod,
			Name:     name,
			Doc:      doc,
			Receiver: recv,
			Params:   params,
			Results:  []string{recv.Type},
			Body:     body,
		}
	}

	switch {
	case a.Kind.Form == domain.FormOptional:
		return []domain.Member{method(fmt.Sprintf("%s sets %s.", name, a.Name),
			[]domain.Param{{Name: p, Type: a.Kind.Elem}},
			fmt.Sprintf("%s = &%s", slot, p),
		)}, nil

	case a.Kind.Form == domain.FormCollection && em.names.style.Collections == domain.ReplaceWhole:
		return []domain.Member{method(fmt.Sprintf("%s replaces %s with a copy of the given collection.", name, a.Name),
			[]domain.Param{{Name: p, Type: t}},
			fmt.Sprintf("%s = %s", slot, cloneExpr(a, p)),
		)}, nil

	case a.Kind.Form == domain.FormCollection && a.Kind.Shape == domain.ShapeList:
		return []domain.Member{method(fmt.Sprintf("%s appends elements to %s.", name, a.Name),
			[]domain.Param{{Name: "elems", Type: a.Kind.Elem, Variadic: true}},
			fmt.Sprintf("%s = append(%s, elems...)", slot, slot),
		)}, nil

	case a.Kind.Form == domain.FormCollection && a.Kind.Shape == domain.ShapeSet:
		return []domain.Member{method(fmt.Sprintf("%s adds elements to %s.", name, a.Name),
			[]domain.Param{{Name: "elems", Type: a.Kind.Elem, Variadic: true}},
			fmt.Sprintf("if %s == nil {", slot),
			fmt.Sprintf("\t%s = make(%s, len(elems))", slot, t),
			"}",
			"for _, e := range elems {",
			fmt.Sprintf("\t%s[e] = struct{}{}", slot),
			"}",
		)}, nil

	case a.Kind.Form == domain.FormCollection:
		return []domain.Member{method(fmt.Sprintf("%s sets one entry of %s.", name, a.Name),
			[]domain.Param{{Name: "key", Type: a.Kind.Key}, {Name: "value", Type: a.Kind.Elem}},
			fmt.Sprintf("if %s == nil {", slot),
			fmt.Sprintf("\t%s = make(%s)", slot, t),
			"}",
			fmt.Sprintf("%s[key] = value", slot),
		)}, nil

	default:
		return []domain.Member{method(fmt.Sprintf("%s sets %s.", name, a.Name),
			[]domain.Param{{Name: p, Type: t}},
			fmt.Sprintf("%s = %s", slot, p),
		)}, nil
	}
}

// build renders the terminal operation. It fails with an
// immutable.IncompleteBuilderError naming the unset mandatory attributes,
// applies defaults to unset slots and constructs the value.
func (em *emission) build(recv *domain.Param, typ string, collectsErrors bool) domain.Member {
	var body []string
	if collectsErrors {
		body = append(body,
			"if len(b.errs) > 0 {",
			"\treturn nil, errors.Join(b.errs...)",
			"}",
		)
	}

	var mandatory []*domain.Attribute
	for _, a := range em.model.Settable() {
		if a.Mandatory {
			mandatory = append(mandatory, a)
		}
	}
	if len(mandatory) > 0 {
		body = append(body, "var missing []string")
		for _, a := range mandatory {
			body = append(body,
				fmt.Sprintf("if !b.%s {", setField(a)),
				fmt.Sprintf("\tmissing = append(missing, %s)", strconv.Quote(a.Name)),
				"}",
			)
		}
		body = append(body,
			"if len(missing) > 0 {",
			fmt.Sprintf("\treturn nil, immutable.NewIncompleteBuilderError(%s, missing)", strconv.Quote(em.model.TypeName)),
			"}",
		)
	}

	settable := em.model.Settable()
	args := make([]string, len(settable))
	for i, a := range settable {
		args[i] = "b." + field(a)
		if !a.HasDefault {
			continue
		}
		local := em.names.param(a)
		args[i] = local
		def := a.Default
		if a.Kind.Form == domain.FormOptional {
			def = fmt.Sprintf("immutable.Of[%s](%s)", a.Kind.Elem, a.Default)
		}
		body = append(body,
			fmt.Sprintf("%s := b.%s", local, field(a)),
			fmt.Sprintf("if !b.%s {", setField(a)),
			fmt.Sprintf("\t%s = %s", local, def),
			"}",
		)
	}

	body = append(body, fmt.Sprintf("return %s(%s), nil", em.names.Constructor(), strings.Join(args, ", ")))

	return domain.Member{
		Kind:     domain.MemberMethod,
		Name:     "Build",
		Doc:      fmt.Sprintf("Build returns the %s described by the builder.", typ),
		Receiver: recv,
		Results:  []string{"*" + typ, "error"},
		Body:     body,
	}
}
