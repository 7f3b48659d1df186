package domain

// CacheKey identifies one cached artifact of one declaration.
type CacheKey struct {
	Source   SourceID
	Artifact ArtifactKind
	Target   string
}

// String renders the key as "source|artifact|target".
func (k CacheKey) String() string {
	return k.Source.String() + "|" + k.Artifact.String() + "|" + k.Target
}

// CacheEntry is a previously emitted unit together with the fingerprint it was emitted for.
type CacheEntry struct {
	Key         CacheKey
	Fingerprint string
	Unit        GeneratedUnit
}
