package emitter

import (
	"fmt"
	"strconv"

	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/engine/planner"
	"go.trai.ch/zerr"
)

// nestedBuilder renders the outer builder method that configures a nested
// attribute through the nested model's own builder. A failed inner build is
// recorded on the outer builder and reported by its Build.
func (em *emission) nestedBuilder(attr string) ([]domain.Member, error) {
	a, ok := em.model.Attribute(attr)
	if !ok || a.Kind.Form != domain.FormNested {
		return nil, domain.Annotate(domain.ErrModelNotFound, "attribute", attr)
	}
	target, tn, err := em.target(a)
	if err != nil {
		return nil, err
	}
	if !planner.RequiresBuilder(target, em.arena) {
		return nil, zerr.With(domain.Annotate(domain.ErrModelNotFound, "attribute", attr), "builder", tn.Builder())
	}

	bt := em.names.Builder()
	local := em.names.param(a)
	name := em.names.NestedSetter(a)

	return []domain.Member{{
		Kind:     domain.MemberMethod,
		Name:     name,
		Doc:      fmt.Sprintf("%s sets %s to the value fn configures on a fresh %s.", name, a.Name, tn.Builder()),
		Receiver: &domain.Param{Name: "b", Type: "*" + bt},
		Params:   []domain.Param{{Name: "fn", Type: "func(*" + tn.Builder() + ")"}},
		Results:  []string{"*" + bt},
		Body: []string{
			"nb := " + tn.BuilderConstructor() + "()",
			"fn(nb)",
			local + ", err := nb.Build()",
			"if err != nil {",
			fmt.Sprintf("\tb.errs = append(b.errs, fmt.Errorf(%s, err))", strconv.Quote(a.Name+": %w")),
			"\treturn b",
			"}",
			fmt.Sprintf("return b.%s(%s)", em.names.SlotSetter(a), local),
		},
	}}, nil
}
