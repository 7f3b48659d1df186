package domain

import "strings"

// Severity ranks a diagnostic.
type Severity uint8

const (
	// SeverityError aborts emission for the offending model only.
	SeverityError Severity = iota
	// SeverityWarning lets emission proceed.
	SeverityWarning
	// SeverityInternal signals a generator bug rather than a user mistake.
	SeverityInternal
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// DiagnosticCode names the rule that produced a diagnostic.
type DiagnosticCode string

// Diagnostic codes.
const (
	CodeExtraction                  DiagnosticCode = "ExtractionError"
	CodeSkippedMember               DiagnosticCode = "SkippedMember"
	CodeEmptyModel                  DiagnosticCode = "EmptyModelError"
	CodeConflictingDefault          DiagnosticCode = "ConflictingDefaultError"
	CodeCyclicNesting               DiagnosticCode = "CyclicNestingError"
	CodeNestedInvalid               DiagnosticCode = "NestedInvalidError"
	CodeInvalidCollectionConstraint DiagnosticCode = "InvalidCollectionConstraintError"
	CodeStyleResolution             DiagnosticCode = "StyleResolutionError"
	CodeEmission                    DiagnosticCode = "EmissionError"
)

// Diagnostic is a message attributed to the declaration and attribute it concerns.
type Diagnostic struct {
	Severity Severity
	Code     DiagnosticCode
	Source   SourceID
	Message  string
	// Attribute is empty when the diagnostic concerns the whole type.
	Attribute string
}

// String renders the diagnostic as "source[.attribute]: severity: message".
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Source.String())
	if d.Attribute != "" {
		b.WriteString(".")
		b.WriteString(d.Attribute)
	}
	b.WriteString(": ")
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// HasErrors reports whether any diagnostic blocks emission.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity != SeverityWarning {
			return true
		}
	}
	return false
}
