package domain

import "unique"

// SourceID is an opaque token identifying the declaration a model was extracted from.
// It wraps a unique.Handle so identities can be compared and used as map keys cheaply.
type SourceID struct {
	h unique.Handle[string]
}

// NewSourceID interns s as a SourceID.
func NewSourceID(s string) SourceID {
	return SourceID{h: unique.Make(s)}
}

// String returns the underlying identity.
func (id SourceID) String() string {
	if id.IsZero() {
		return ""
	}
	return id.h.Value()
}

// IsZero reports whether the identity was never set.
func (id SourceID) IsZero() bool {
	return id == SourceID{}
}

// MarshalText implements encoding.TextMarshaler.
func (id SourceID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *SourceID) UnmarshalText(text []byte) error {
	id.h = unique.Make(string(text))
	return nil
}
