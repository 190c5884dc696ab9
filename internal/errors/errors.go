// Package errors provides the typed domain errors shared by loaders, the RFM engine and sinks.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Type identifies the category of error
type Type string

const (
	// TypeInput indicates a bad argument from the caller
	TypeInput Type = "INPUT_ERROR"

	// TypeIntegrity indicates a row referencing a missing parent row
	TypeIntegrity Type = "INTEGRITY_ERROR"

	// TypeValidation indicates a row violating a column constraint
	TypeValidation Type = "VALIDATION_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeSource indicates a failure reading from a storage source
	TypeSource Type = "SOURCE_ERROR"

	// TypeOutput indicates a failure writing to an output sink
	TypeOutput Type = "OUTPUT_ERROR"

	// TypeNotFound indicates a resource not found error
	TypeNotFound Type = "NOT_FOUND"
)

// Violation pinpoints one offending row.
type Violation struct {
	Table  string `json:"table"`
	ID     string `json:"id"`
	Field  string `json:"field"`
	Ref    string `json:"ref,omitempty"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	if v.Ref != "" {
		return fmt.Sprintf("%s %s: %s %q %s", v.Table, v.ID, v.Field, v.Ref, v.Reason)
	}
	return fmt.Sprintf("%s %s: %s %s", v.Table, v.ID, v.Field, v.Reason)
}

// Error represents a domain error with context
type Error struct {
	Type       Type                   `json:"type"`
	Message    string                 `json:"message"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Violations []Violation            `json:"violations,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if n := len(e.Violations); n > 0 {
		b.WriteString(" (")
		for i, v := range e.Violations {
			if i == 3 {
				fmt.Fprintf(&b, "; and %d more", n-3)
				break
			}
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(v.String())
		}
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IDs returns the distinct row IDs named by the violations, sorted.
func (e *Error) IDs() []string {
	seen := make(map[string]struct{}, len(e.Violations))
	ids := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		ids = append(ids, v.ID)
	}
	sort.Strings(ids)
	return ids
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error, or any error it wraps, is of a specific type
func IsType(err error, t Type) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Type == t {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Integrity creates an integrity error carrying the offending rows
func Integrity(message string, violations []Violation) *Error {
	return &Error{Type: TypeIntegrity, Message: message, Violations: sortViolations(violations)}
}

// Validation creates a validation error carrying the offending rows
func Validation(message string, violations []Violation) *Error {
	return &Error{Type: TypeValidation, Message: message, Violations: sortViolations(violations)}
}

// Rows reports column and reference violations found in one pass. Column violations set
// the type; reference violations are attached as the cause so both match IsType.
func Rows(invalidMsg string, invalid []Violation, missingMsg string, missing []Violation) error {
	var cause *Error
	if len(missing) > 0 {
		cause = Integrity(missingMsg, missing)
	}
	if len(invalid) > 0 {
		e := Validation(invalidMsg, invalid)
		if cause != nil {
			e.Cause = cause
		}
		return e
	}
	if cause != nil {
		return cause
	}
	return nil
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Config creates a configuration error
func Config(message string) *Error {
	return New(TypeConfig, message)
}

// Source wraps a storage read failure
func Source(message string, cause error) *Error {
	return Wrap(TypeSource, message, cause)
}

// Output wraps a sink write failure
func Output(message string, cause error) *Error {
	return Wrap(TypeOutput, message, cause)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

func sortViolations(vs []Violation) []Violation {
	out := append([]Violation(nil), vs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Table != out[j].Table {
			return out[i].Table < out[j].Table
		}
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Field < out[j].Field
	})
	return out
}
