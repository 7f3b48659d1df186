package domain

// Form classifies the shape of an attribute's value.
type Form uint8

const (
	// FormScalar is a plain value.
	FormScalar Form = iota
	// FormOptional is a value that may be absent.
	FormOptional
	// FormCollection is a list, set or map of scalars.
	FormCollection
	// FormNested is a reference to another generated model.
	FormNested
)

func (f Form) String() string {
	switch f {
	case FormScalar:
		return "scalar"
	case FormOptional:
		return "optional"
	case FormCollection:
		return "collection"
	case FormNested:
		return "nested"
	default:
		return "unknown"
	}
}

// CollectionShape is the container kind of a collection attribute.
type CollectionShape uint8

const (
	// ShapeList is an ordered sequence.
	ShapeList CollectionShape = iota
	// ShapeSet is an unordered set of unique elements.
	ShapeSet
	// ShapeMap is a keyed mapping.
	ShapeMap
)

func (s CollectionShape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeSet:
		return "set"
	case ShapeMap:
		return "map"
	default:
		return "unknown"
	}
}

// ValueKind describes the classified type of an attribute.
type ValueKind struct {
	Form Form
	// Elem is the scalar type: the value itself, the optional's inner type,
	// the collection's element (map value) type.
	Elem string
	// Key is the map key type; empty for other shapes.
	Key   string
	Shape CollectionShape
	// Ref identifies the nested model's declaration; RefType names it.
	Ref     SourceID
	RefType string
}

// DerivationMode tells how an attribute obtains its value.
type DerivationMode uint8

const (
	// Stored attributes are supplied at construction.
	Stored DerivationMode = iota
	// Derived attributes are computed once at construction time.
	Derived
	// Lazy attributes are computed on first access and memoized per instance.
	Lazy
)

func (m DerivationMode) String() string {
	switch m {
	case Stored:
		return "stored"
	case Derived:
		return "derived"
	case Lazy:
		return "lazy"
	default:
		return "unknown"
	}
}

// Derivation pairs a mode with the expression computing the value.
// Expr is empty for Stored attributes.
type Derivation struct {
	Mode DerivationMode
	Expr string
}

// Attribute is one named, typed component of a generated value type.
type Attribute struct {
	Name       string
	Kind       ValueKind
	Mandatory  bool
	HasDefault bool
	// Default is present iff HasDefault.
	Default    string
	Derivation Derivation
}

// Settable reports whether the attribute is a constructor parameter and builder slot.
func (a *Attribute) Settable() bool {
	return a.Derivation.Mode == Stored
}

// InEquality reports whether the attribute takes part in Equal and Hash.
// Lazy values are a pure function of the others and are excluded.
func (a *Attribute) InEquality() bool {
	return a.Derivation.Mode != Lazy
}

// AttributeModel is the normalized representation of one target type.
type AttributeModel struct {
	TypeName string
	Package  string
	// Attributes are kept in declaration order.
	Attributes []Attribute
	// Style is nil until the resolver attaches one.
	Style  *EffectiveStyle
	Source SourceID
	// Fragments are the explicit overrides collected during extraction, broad to narrow.
	Fragments []StyleFragment
	Imports   map[string]string
	Output    string
}

// Attribute returns the attribute with the given name.
func (m *AttributeModel) Attribute(name string) (*Attribute, bool) {
	for i := range m.Attributes {
		if m.Attributes[i].Name == name {
			return &m.Attributes[i], true
		}
	}
	return nil, false
}

// Settable returns the constructor attributes in model order.
func (m *AttributeModel) Settable() []*Attribute {
	out := make([]*Attribute, 0, len(m.Attributes))
	for i := range m.Attributes {
		if m.Attributes[i].Settable() {
			out = append(out, &m.Attributes[i])
		}
	}
	return out
}

// WithStyle returns a copy of the model carrying the resolved style.
// The receiver is left untouched.
func (m *AttributeModel) WithStyle(s EffectiveStyle) *AttributeModel {
	cp := *m
	cp.Style = &s
	return &cp
}
