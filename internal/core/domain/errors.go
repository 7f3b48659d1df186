package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrExtraction is returned when a raw declaration cannot be turned into an attribute model.
	ErrExtraction = zerr.New("extraction failed")

	// ErrUnclassifiableKind is returned when a member's declared kind matches no known shape.
	ErrUnclassifiableKind = zerr.New("declared kind cannot be classified")

	// ErrDuplicateAttribute is returned when two members normalize to the same attribute name.
	ErrDuplicateAttribute = zerr.New("duplicate attribute")

	// ErrInvalidAttributeName is returned when a member name is not a valid identifier.
	ErrInvalidAttributeName = zerr.New("attribute name must be a valid identifier")

	// ErrMemberHasParameters is returned when an abstract member declares parameters.
	ErrMemberHasParameters = zerr.New("method must not have parameters")

	// ErrMemberHasTypeParameters is returned when a member declares type parameters.
	ErrMemberHasTypeParameters = zerr.New("method must not have type parameters")

	// ErrUnknownModifier is returned when a member carries a modifier the extractor does not know.
	ErrUnknownModifier = zerr.New("unknown modifier")

	// ErrReservedAttributeName is returned when a member's accessor would collide with a generated method.
	ErrReservedAttributeName = zerr.New("attribute name collides with a generated method")

	// ErrLazyWithoutBody is returned when a member marked lazy has nothing to compute.
	ErrLazyWithoutBody = zerr.New("lazy attribute must have a body")

	// ErrDerivedInitializer is returned when a derived member is also marked mandatory or given a default.
	ErrDerivedInitializer = zerr.New("derived attribute cannot be mandatory or carry a default")

	// ErrMemberSkipped is reported when a member with parameters and a body is left out of the model.
	ErrMemberSkipped = zerr.New("method with parameters is not an attribute and was skipped")

	// ErrInvalidStyleValue is returned when a style override carries an unknown enum value.
	ErrInvalidStyleValue = zerr.New("invalid style value")

	// ErrEmptyModel is reported when a model has no attribute that can be constructed.
	ErrEmptyModel = zerr.New("model has no non-derived attribute")

	// ErrConflictingDefault is reported when a mandatory attribute also declares a default.
	ErrConflictingDefault = zerr.New("mandatory attribute must not have a default")

	// ErrCyclicNesting is reported when nested attributes form a cycle back to the model.
	ErrCyclicNesting = zerr.New("cyclic nesting")

	// ErrNestedInvalid is reported when a nested attribute references a model that is not valid.
	ErrNestedInvalid = zerr.New("nested model is not valid")

	// ErrInvalidCollectionConstraint is reported when a collection attribute is marked mandatory.
	ErrInvalidCollectionConstraint = zerr.New("collection attribute must not be mandatory")

	// ErrStyleResolution is returned when a merged style leaves a field unset.
	// It indicates a defaulting bug, not a user error.
	ErrStyleResolution = zerr.New("style resolution left a field unset")

	// ErrMalformedBatch is returned when the discovery pass supplies an inconsistent batch.
	ErrMalformedBatch = zerr.New("malformed declaration batch")

	// ErrEmptySourceID is returned when a declaration carries no source identity.
	ErrEmptySourceID = zerr.New("declaration has no source identity")

	// ErrDuplicateSourceID is returned when two declarations share a source identity.
	ErrDuplicateSourceID = zerr.New("duplicate source identity")

	// ErrDuplicateTypeName is returned when a package declares the same type twice.
	ErrDuplicateTypeName = zerr.New("duplicate type name in package")

	// ErrEmptyTypeName is returned when a declaration has no type name.
	ErrEmptyTypeName = zerr.New("declaration has no type name")

	// ErrUnknownArtifact is returned when an emission task carries an artifact kind the emitter cannot handle.
	ErrUnknownArtifact = zerr.New("unknown artifact kind")

	// ErrNamingConflict is returned when a style makes accessors and copy-with methods share names.
	ErrNamingConflict = zerr.New("accessor and copy-with prefixes must differ")

	// ErrIdentifierClash is reported when two generated identifiers of one scope share a name.
	ErrIdentifierClash = zerr.New("generated identifiers clash")

	// ErrModelNotFound is returned when a task references a model absent from the arena.
	ErrModelNotFound = zerr.New("model not found")

	// ErrGenerationFailed is returned when a generation pass reports error diagnostics.
	ErrGenerationFailed = zerr.New("generation failed")

	// ErrOutputOutdated is returned in check mode when generated files differ from disk.
	ErrOutputOutdated = zerr.New("generated output is out of date")

	// ErrConfigReadFailed is returned when a config or declaration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a config or declaration file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no project config can be found.
	ErrConfigNotFound = zerr.New("could not find immut.yaml")

	// ErrUnsupportedDeclarationFormat is returned for declaration files with an unknown extension.
	ErrUnsupportedDeclarationFormat = zerr.New("unsupported declaration file format")

	// ErrStoreCreateFailed is returned when the cache store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create cache store directory")

	// ErrStoreReadFailed is returned when a cache entry cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache entry")

	// ErrStoreMarshalFailed is returned when a cache entry cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to encode cache entry")

	// ErrStoreWriteFailed is returned when a cache entry cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write cache entry")

	// ErrStoreDeleteFailed is returned when a cache entry cannot be removed.
	ErrStoreDeleteFailed = zerr.New("failed to delete cache entry")

	// ErrRenderFailed is returned when generated units cannot be rendered to source.
	ErrRenderFailed = zerr.New("failed to render generated source")

	// ErrOutputWriteFailed is returned when a generated file cannot be written.
	ErrOutputWriteFailed = zerr.New("failed to write generated file")

	// ErrOutputRemoveFailed is returned when a generated file cannot be removed.
	ErrOutputRemoveFailed = zerr.New("failed to remove generated file")

	// ErrWatcherFailed is returned when the file watcher cannot observe the project.
	ErrWatcherFailed = zerr.New("file watcher failed")
)

// Wrap attaches sentinel to cause. The result matches sentinel under
// errors.Is, unwraps to cause and reports the sentinel's text as its message.
func Wrap(cause, sentinel error) error {
	return &sentinelError{sentinel: sentinel, cause: cause}
}

// Annotate attaches metadata to err without replacing it, so errors.Is still
// matches err itself.
func Annotate(err error, key string, value any) error {
	return zerr.With(zerr.Wrap(err, ""), key, value)
}

// Message returns the first non-empty message of err's chain without its causes.
func Message(err error) string {
	type messager interface{ Message() string }
	for current := err; current != nil; current = errors.Unwrap(current) {
		m, ok := current.(messager)
		if !ok {
			return current.Error()
		}
		if msg := m.Message(); msg != "" {
			return msg
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

type sentinelError struct {
	sentinel error
	cause    error
}

func (e *sentinelError) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

func (e *sentinelError) Message() string { return e.sentinel.Error() }

func (e *sentinelError) Unwrap() error { return e.cause }

func (e *sentinelError) Is(target error) bool { return target == e.sentinel }
