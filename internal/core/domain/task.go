package domain

// ArtifactKind is the closed set of artifacts the emitter knows how to render.
type ArtifactKind uint8

const (
	// ArtifactValue is the immutable value type.
	ArtifactValue ArtifactKind = iota
	// ArtifactCopyWith is the set of copy-with-modification methods.
	ArtifactCopyWith
	// ArtifactBuilder is the staged builder.
	ArtifactBuilder
	// ArtifactNestedBuilder lets an outer builder configure a nested attribute through its own builder.
	ArtifactNestedBuilder
)

func (k ArtifactKind) String() string {
	switch k {
	case ArtifactValue:
		return "value"
	case ArtifactCopyWith:
		return "copy-with"
	case ArtifactBuilder:
		return "builder"
	case ArtifactNestedBuilder:
		return "nested-builder"
	default:
		return "unknown"
	}
}

// EmissionTask is one planned unit of code-generation work.
type EmissionTask struct {
	Kind  ArtifactKind
	Model *AttributeModel
	// Attribute is set for ArtifactNestedBuilder.
	Attribute string
}

// Key returns the cache key the task's unit is stored under.
func (t *EmissionTask) Key() CacheKey {
	return CacheKey{Source: t.Model.Source, Artifact: t.Kind, Target: t.Attribute}
}
