package emitter

import (
	"fmt"
	"strings"

	"go.trai.ch/immut/internal/core/domain"
)

// value renders the immutable type: struct, constructor, accessors, Equal,
// Hash and String.
func (em *emission) value() ([]domain.Member, error) {
	if err := em.checkNames(); err != nil {
		return nil, err
	}

	typ := em.names.Type()
	recv := &domain.Param{Name: "v", Type: "*" + typ}

	fields := make([]domain.Member, 0, len(em.model.Attributes))
	for i := range em.model.Attributes {
		a := &em.model.Attributes[i]
		t, err := em.fieldType(a)
		if err != nil {
			return nil, err
		}
		if a.Derivation.Mode == domain.Lazy {
			fields = append(fields, domain.Member{Kind: domain.MemberField, Name: onceField(a), Type: "sync.Once"})
		}
		fields = append(fields, domain.Member{Kind: domain.MemberField, Name: field(a), Type: t})
	}

	members := []domain.Member{{
		Kind:    domain.MemberNestedType,
		Name:    typ,
		Doc:     fmt.Sprintf("%s is an immutable %s.", typ, em.model.TypeName),
		Type:    "struct",
		Members: fields,
	}}

	ctor, err := em.constructor(typ)
	if err != nil {
		return nil, err
	}
	members = append(members, ctor)

	for i := range em.model.Attributes {
		acc, err := em.accessor(recv, &em.model.Attributes[i])
		if err != nil {
			return nil, err
		}
		members = append(members, acc)
	}

	members = append(members, em.equal(recv, typ), em.hash(recv), em.stringer(recv))
	return members, nil
}

// constructor renders the factory over every stored attribute in model order.
// Derived attributes are computed afterwards, in model order, with the new
// value bound to v.
func (em *emission) constructor(typ string) (domain.Member, error) {
	params, err := em.constructorParams()
	if err != nil {
		return domain.Member{}, err
	}

	body := []string{"v := &" + typ + "{"}
	for _, a := range em.model.Settable() {
		body = append(body, fmt.Sprintf("\t%s: %s,", field(a), cloneExpr(a, em.names.param(a))))
	}
	body = append(body, "}")
	for i := range em.model.Attributes {
		a := &em.model.Attributes[i]
		if a.Derivation.Mode == domain.Derived {
			body = append(body, fmt.Sprintf("v.%s = %s", field(a), a.Derivation.Expr))
		}
	}
	body = append(body, "return v")

	return domain.Member{
		Kind:    domain.MemberConstructor,
		Name:    em.names.Constructor(),
		Doc:     fmt.Sprintf("%s creates %s from its attribute values.", em.names.Constructor(), article(typ)),
		Params:  params,
		Results: []string{"*" + typ},
		Body:    body,
	}, nil
}

func (em *emission) constructorParams() ([]domain.Param, error) {
	settable := em.model.Settable()
	params := make([]domain.Param, 0, len(settable))
	for _, a := range settable {
		t, err := em.fieldType(a)
		if err != nil {
			return nil, err
		}
		params = append(params, domain.Param{Name: em.names.param(a), Type: t})
	}
	return params, nil
}

func (em *emission) accessor(recv *domain.Param, a *domain.Attribute) (domain.Member, error) {
	t, err := em.fieldType(a)
	if err != nil {
		return domain.Member{}, err
	}

	f := "v." + field(a)
	m := domain.Member{
		Kind:     domain.MemberMethod,
		Name:     em.names.Accessor(a),
		Receiver: recv,
		Results:  []string{t},
	}

	switch {
	case a.Derivation.Mode == domain.Lazy:
		m.Doc = fmt.Sprintf("%s returns %s, computing it on first use.", m.Name, a.Name)
		m.Body = []string{
			fmt.Sprintf("v.%s.Do(func() {", onceField(a)),
			fmt.Sprintf("\t%s = %s", f, a.Derivation.Expr),
			"})",
			"return " + f,
		}
	case a.Kind.Form == domain.FormOptional:
		m.Doc = fmt.Sprintf("%s returns %s and whether it is present.", m.Name, a.Name)
		m.Results = []string{a.Kind.Elem, "bool"}
		m.Body = []string{
			fmt.Sprintf("if %s == nil {", f),
			"\tvar zero " + a.Kind.Elem,
			"\treturn zero, false",
			"}",
			fmt.Sprintf("return *%s, true", f),
		}
	case a.Kind.Form == domain.FormCollection:
		m.Doc = fmt.Sprintf("%s returns a copy of %s.", m.Name, a.Name)
		m.Body = []string{"return " + cloneExpr(a, f)}
	default:
		m.Doc = fmt.Sprintf("%s returns %s.", m.Name, a.Name)
		m.Body = []string{"return " + f}
	}
	return m, nil
}

// equal compares stored and derived attributes. Lazy attributes are a
// function of the others and are left out.
func (em *emission) equal(recv *domain.Param, typ string) domain.Member {
	var terms []string
	for i := range em.model.Attributes {
		a := &em.model.Attributes[i]
		if !a.InEquality() {
			continue
		}
		mine, theirs := "v."+field(a), "other."+field(a)
		switch a.Kind.Form {
		case domain.FormOptional:
			terms = append(terms, fmt.Sprintf("immutable.EqualPtr(%s, %s)", mine, theirs))
		case domain.FormCollection:
			if a.Kind.Shape == domain.ShapeList {
				terms = append(terms, fmt.Sprintf("slices.Equal(%s, %s)", mine, theirs))
			} else {
				terms = append(terms, fmt.Sprintf("maps.Equal(%s, %s)", mine, theirs))
			}
		case domain.FormNested:
			terms = append(terms, fmt.Sprintf("%s.Equal(%s)", mine, theirs))
		default:
			terms = append(terms, fmt.Sprintf("%s == %s", mine, theirs))
		}
	}

	body := []string{
		"if v == nil || other == nil {",
		"\treturn v == other",
		"}",
	}
	if len(terms) == 0 {
		body = append(body, "return true")
	} else {
		body = append(body, "return "+strings.Join(terms, " &&\n\t"))
	}

	return domain.Member{
		Kind:     domain.MemberMethod,
		Name:     "Equal",
		Doc:      "Equal reports whether v and other hold the same attribute values.",
		Receiver: recv,
		Params:   []domain.Param{{Name: "other", Type: "*" + typ}},
		Results:  []string{"bool"},
		Body:     body,
	}
}

// hash mixes the attributes compared by Equal, so equal values hash equally.
func (em *emission) hash(recv *domain.Param) domain.Member {
	body := []string{
		"if v == nil {",
		"\treturn 0",
		"}",
		"h := immutable.NewHasher()",
	}
	for i := range em.model.Attributes {
		a := &em.model.Attributes[i]
		if !a.InEquality() {
			continue
		}
		f := "v." + field(a)
		switch a.Kind.Form {
		case domain.FormOptional:
			body = append(body, fmt.Sprintf("h.Add(immutable.Deref(%s))", f))
		case domain.FormNested:
			body = append(body, fmt.Sprintf("h.AddHash(%s.Hash())", f))
		default:
			body = append(body, fmt.Sprintf("h.Add(%s)", f))
		}
	}
	body = append(body, "return h.Sum()")

	return domain.Member{
		Kind:     domain.MemberMethod,
		Name:     "Hash",
		Doc:      "Hash returns a hash code consistent with Equal.",
		Receiver: recv,
		Results:  []string{"uint64"},
		Body:     body,
	}
}

// stringer lists every attribute as name=value in model order.
func (em *emission) stringer(recv *domain.Param) domain.Member {
	parts := make([]string, 0, len(em.model.Attributes))
	args := make([]string, 0, len(em.model.Attributes))
	for i := range em.model.Attributes {
		a := &em.model.Attributes[i]
		parts = append(parts, a.Name+"=%v")
		switch {
		case a.Derivation.Mode == domain.Lazy:
			args = append(args, "v."+em.names.Accessor(a)+"()")
		case a.Kind.Form == domain.FormOptional:
			args = append(args, "immutable.Deref(v."+field(a)+")")
		default:
			args = append(args, "v."+field(a))
		}
	}

	format := fmt.Sprintf("%q", em.model.TypeName+"{"+strings.Join(parts, ", ")+"}")
	return domain.Member{
		Kind:     domain.MemberMethod,
		Name:     "String",
		Doc:      "String returns the attribute values in declaration order.",
		Receiver: recv,
		Results:  []string{"string"},
		Body: []string{
			"if v == nil {",
			"\treturn \"<nil>\"",
			"}",
			"return fmt.Sprintf(" + strings.Join(append([]string{format}, args...), ", ") + ")",
		},
	}
}

// article prefixes a type name with its indefinite article.
func article(name string) string {
	if name != "" && strings.ContainsRune("AEIOUaeiou", rune(name[0])) {
		return "an " + name
	}
	return "a " + name
}
