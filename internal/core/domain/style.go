package domain

import "go.trai.ch/zerr"

// CollectionStrategy selects how builder setters treat collection attributes.
type CollectionStrategy uint8

const (
	// AppendOnly setters add elements to the slot.
	AppendOnly CollectionStrategy = iota
	// ReplaceWhole setters overwrite the slot with the given collection.
	ReplaceWhole
)

func (c CollectionStrategy) String() string {
	if c == ReplaceWhole {
		return "replace"
	}
	return "append"
}

// Visibility selects whether generated types and constructors are exported.
type Visibility uint8

const (
	// Public exports generated types and constructors.
	Public Visibility = iota
	// PackageOnly keeps generated types and constructors unexported.
	PackageOnly
)

func (v Visibility) String() string {
	if v == PackageOnly {
		return "package"
	}
	return "public"
}

// NamingPattern holds the prefix and suffix rules for generated names.
type NamingPattern struct {
	TypePrefix     string
	TypeSuffix     string
	BuilderSuffix  string
	AccessorPrefix string
	CopyWithPrefix string
}

// EffectiveStyle is the fully resolved generation configuration of one model.
type EffectiveStyle struct {
	BuilderRequired bool
	Naming          NamingPattern
	Collections     CollectionStrategy
	Visibility      Visibility
}

// StyleFragment is a partial style override; nil fields are unset.
type StyleFragment struct {
	BuilderRequired *bool
	TypePrefix      *string
	TypeSuffix      *string
	BuilderSuffix   *string
	AccessorPrefix  *string
	CopyWithPrefix  *string
	Collections     *CollectionStrategy
	Visibility      *Visibility
}

// IsEmpty reports whether the fragment sets nothing.
func (f *StyleFragment) IsEmpty() bool {
	return *f == StyleFragment{}
}

// ParseCollectionStrategy parses the config spelling of a collection strategy.
func ParseCollectionStrategy(s string) (CollectionStrategy, error) {
	switch s {
	case "append":
		return AppendOnly, nil
	case "replace":
		return ReplaceWhole, nil
	default:
		return 0, zerr.With(Annotate(ErrInvalidStyleValue, "field", "collections"), "value", s)
	}
}

// ParseVisibility parses the config spelling of a visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case "public":
		return Public, nil
	case "package":
		return PackageOnly, nil
	default:
		return 0, zerr.With(Annotate(ErrInvalidStyleValue, "field", "visibility"), "value", s)
	}
}
