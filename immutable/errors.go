// Package immutable holds the runtime support shared by generated value types.
package immutable

import (
	"fmt"
	"strings"
)

// IncompleteBuilderError is returned by a generated builder's Build method when
// one or more mandatory attributes were never set.
type IncompleteBuilderError struct {
	// Type is the name of the value type being built.
	Type string
	// Attribute is the first unset mandatory attribute, in declaration order.
	Attribute string
	// Missing lists every unset mandatory attribute, in declaration order.
	Missing []string
}

// NewIncompleteBuilderError creates an error naming the given unset attributes.
// It returns nil if missing is empty.
func NewIncompleteBuilderError(typeName string, missing []string) *IncompleteBuilderError {
	if len(missing) == 0 {
		return nil
	}
	return &IncompleteBuilderError{
		Type:      typeName,
		Attribute: missing[0],
		Missing:   append([]string(nil), missing...),
	}
}

func (e *IncompleteBuilderError) Error() string {
	if len(e.Missing) <= 1 {
		return fmt.Sprintf("cannot build %s: attribute %q is not set", e.Type, e.Attribute)
	}
	quoted := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return fmt.Sprintf("cannot build %s: attributes %s are not set", e.Type, strings.Join(quoted, ", "))
}
