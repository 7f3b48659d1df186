package domain

// MemberKind is the kind of one generated member.
type MemberKind uint8

const (
	// MemberField is a struct field; it only appears inside a MemberNestedType.
	MemberField MemberKind = iota
	// MemberConstructor is a package-level factory function.
	MemberConstructor
	// MemberMethod is a method with a receiver.
	MemberMethod
	// MemberNestedType is a type declaration whose Members are its fields.
	MemberNestedType
)

func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberConstructor:
		return "constructor"
	case MemberMethod:
		return "method"
	case MemberNestedType:
		return "type"
	default:
		return "unknown"
	}
}

// Param is one typed parameter of a generated function.
type Param struct {
	Name string
	Type string
	// Variadic marks the last parameter as "...Type".
	Variadic bool
}

// Member is one generated declaration with a typed signature and body lines.
type Member struct {
	Kind MemberKind
	Name string
	Doc  string
	// Type is the field type for MemberField and the underlying type keyword
	// ("struct") for MemberNestedType.
	Type     string
	Receiver *Param
	Params   []Param
	Results  []string
	Body     []string
	Members  []Member
}

// Import is one import required by a generated unit.
type Import struct {
	Path  string
	Alias string
}

// GeneratedUnit is the abstract description of one emitted artifact.
// Units are never mutated after creation; regeneration produces a new one.
type GeneratedUnit struct {
	Source   SourceID
	Artifact ArtifactKind
	// Target names the attribute for per-attribute artifacts.
	Target  string
	Package string
	Output  string
	Imports []Import
	Members []Member
}

// Key returns the cache key of the unit.
func (u *GeneratedUnit) Key() CacheKey {
	return CacheKey{Source: u.Source, Artifact: u.Artifact, Target: u.Target}
}
