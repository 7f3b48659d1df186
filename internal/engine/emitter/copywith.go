package emitter

import (
	"fmt"
	"strings"

	"go.trai.ch/immut/internal/core/domain"
)

// copyWith renders one copy-with-modification method per stored attribute.
// Each copy goes through the constructor, so derived attributes are
// recomputed and collections are copied again.
func (em *emission) copyWith() ([]domain.Member, error) {
	if err := em.checkNames(); err != nil {
		return nil, err
	}

	typ := em.names.Type()
	recv := &domain.Param{Name: "v", Type: "*" + typ}
	settable := em.model.Settable()

	members := make([]domain.Member, 0, len(settable))
	for _, target := range settable {
		t, err := em.fieldType(target)
		if err != nil {
			return nil, err
		}

		args := make([]string, len(settable))
		for i, a := range settable {
			if a == target {
				args[i] = em.names.param(a)
			} else {
				args[i] = "v." + field(a)
			}
		}

		name := em.names.CopyWith(target)
		members = append(members, domain.Member{
			Kind:     domain.MemberMethod,
			Name:     name,
			Doc:      fmt.Sprintf("%s returns a copy of v with %s replaced.", name, target.Name),
			Receiver: recv,
			Params:   []domain.Param{{Name: em.names.param(target), Type: t}},
			Results:  []string{"*" + typ},
			Body: []string{
				fmt.Sprintf("return %s(%s)", em.names.Constructor(), strings.Join(args, ", ")),
			},
		})
	}
	return members, nil
}
