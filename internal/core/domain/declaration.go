package domain

// Declaration is one candidate type declaration handed over by the discovery collaborator.
type Declaration struct {
	Source   SourceID
	Package  string
	TypeName string
	Members  []RawMember
	// Scope is the style override found on the enclosing scope (the declaration file).
	Scope StyleFragment
	// Style is the style override found on the type itself.
	Style StyleFragment
	// Imports maps package qualifiers used in kinds and expressions to import paths.
	Imports map[string]string
	// Output is the path of the physical file the generated units are routed to.
	Output string
}

// RawMember is one declared member of a candidate type, before classification.
type RawMember struct {
	Name       string
	Kind       string
	Modifiers  []string
	Default    string
	Body       string
	Params     []string
	TypeParams []string
}

// Member modifiers recognized by the extractor.
const (
	ModifierMandatory = "mandatory"
	ModifierRequired  = "required"
	ModifierLazy      = "lazy"
	ModifierCached    = "cached"
)
