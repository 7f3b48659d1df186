// Package resolver merges layered style overrides into an effective style.
package resolver

import "go.trai.ch/immut/internal/core/domain"

// Default returns the built-in style layer. Every field is set.
func Default() domain.StyleFragment {
	builder := false
	prefix := "Immutable"
	suffix := ""
	builderSuffix := "Builder"
	accessor := ""
	copyWith := "With"
	collections := domain.AppendOnly
	visibility := domain.Public

	return domain.StyleFragment{
		BuilderRequired: &builder,
		TypePrefix:      &prefix,
		TypeSuffix:      &suffix,
		BuilderSuffix:   &builderSuffix,
		AccessorPrefix:  &accessor,
		CopyWithPrefix:  &copyWith,
		Collections:     &collections,
		Visibility:      &visibility,
	}
}

// DefaultStyle returns the effective style of a model without any override.
func DefaultStyle() domain.EffectiveStyle {
	s, _ := Resolve(Default())
	return s
}

// Resolve merges fragments ordered from broadest to narrowest. A field set by
// a narrower fragment wins; unset fields fall through to broader ones.
// Callers normally pass Default first so that no field can stay unset.
func Resolve(fragments ...domain.StyleFragment) (domain.EffectiveStyle, error) {
	var merged domain.StyleFragment
	for i := range fragments {
		f := &fragments[i]
		pick(&merged.BuilderRequired, f.BuilderRequired)
		pick(&merged.TypePrefix, f.TypePrefix)
		pick(&merged.TypeSuffix, f.TypeSuffix)
		pick(&merged.BuilderSuffix, f.BuilderSuffix)
		pick(&merged.AccessorPrefix, f.AccessorPrefix)
		pick(&merged.CopyWithPrefix, f.CopyWithPrefix)
		pick(&merged.Collections, f.Collections)
		pick(&merged.Visibility, f.Visibility)
	}

	for _, f := range []struct {
		name string
		set  bool
	}{
		{"builderRequired", merged.BuilderRequired != nil},
		{"typePrefix", merged.TypePrefix != nil},
		{"typeSuffix", merged.TypeSuffix != nil},
		{"builderSuffix", merged.BuilderSuffix != nil},
		{"accessorPrefix", merged.AccessorPrefix != nil},
		{"copyWithPrefix", merged.CopyWithPrefix != nil},
		{"collections", merged.Collections != nil},
		{"visibility", merged.Visibility != nil},
	} {
		if !f.set {
			return domain.EffectiveStyle{}, domain.Annotate(domain.ErrStyleResolution, "field", f.name)
		}
	}

	return domain.EffectiveStyle{
		BuilderRequired: *merged.BuilderRequired,
		Naming: domain.NamingPattern{
			TypePrefix:     *merged.TypePrefix,
			TypeSuffix:     *merged.TypeSuffix,
			BuilderSuffix:  *merged.BuilderSuffix,
			AccessorPrefix: *merged.AccessorPrefix,
			CopyWithPrefix: *merged.CopyWithPrefix,
		},
		Collections: *merged.Collections,
		Visibility:  *merged.Visibility,
	}, nil
}

// ResolveModel resolves the style of a model under the given project layer
// and returns a copy of the model carrying it.
func ResolveModel(model *domain.AttributeModel, project domain.StyleFragment) (*domain.AttributeModel, error) {
	layers := make([]domain.StyleFragment, 0, len(model.Fragments)+2)
	layers = append(layers, Default(), project)
	layers = append(layers, model.Fragments...)

	style, err := Resolve(layers...)
	if err != nil {
		return nil, domain.Annotate(err, "source", model.Source.String())
	}
	return model.WithStyle(style), nil
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
