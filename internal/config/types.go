// Package config parses, validates, and converts workflow configuration
// documents (JSON or YAML). Parsing and schema validation report every
// problem they find, with file positions where the decoder exposes them;
// conversion to the typed workflow happens only after both passed.
package config

import (
	"fmt"
	"strings"
)

// Parse error categories
const (
	ErrorTypeIO     = "io"
	ErrorTypeSyntax = "syntax"
	ErrorTypeFormat = "format"
)

// ParseError is a decoding failure with whatever position information the
// decoder exposed.
type ParseError struct {
	// Path is the file the error came from (empty when parsing a string)
	Path string
	// Line is the 1-based line number, 0 when unknown
	Line int
	// Column is the 1-based column number, 0 when unknown
	Column int
	// Offset is the byte offset, 0 when unknown
	Offset int64
	// Message describes the failure
	Message string
	// Type categorizes the failure (io, syntax, format)
	Type string
}

// Error renders the position-prefixed message.
func (e ParseError) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&sb, ", column %d", e.Column)
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// ParseResult is the outcome of decoding one document.
type ParseResult struct {
	// Data is the decoded document
	Data map[string]any
	// Errors lists the decoding failures
	Errors []ParseError
	// FilePath is the source file (empty when parsed from a string)
	FilePath string
	// Format is the document format (json, yaml)
	Format string
}

// IsValid reports whether decoding succeeded.
func (r *ParseResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidationError is a schema violation.
type ValidationError struct {
	// Path is the JSON pointer of the offending value (e.g. "/workflow/source")
	Path string
	// Type is the violated rule (required, type, pattern, enum, ...)
	Type string
	// Message describes the violation
	Message string
}

// Error renders the path-prefixed message.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationResult is the outcome of schema validation.
type ValidationResult struct {
	// Valid reports whether the document satisfied the schema
	Valid bool
	// Errors lists the violations
	Errors []ValidationError
}

// Result combines parsing and validation for one document.
type Result struct {
	// Data is the decoded document
	Data map[string]any
	// ParseErrors lists decoding failures
	ParseErrors []ParseError
	// ValidationErrors lists schema violations
	ValidationErrors []ValidationError
	// FilePath is the source file
	FilePath string
	// Format is the document format
	Format string
}

// IsValid reports whether the document decoded and validated cleanly.
func (r *Result) IsValid() bool {
	return len(r.ParseErrors) == 0 && len(r.ValidationErrors) == 0
}

// AllErrors flattens parse and validation errors into one slice.
func (r *Result) AllErrors() []error {
	errs := make([]error, 0, len(r.ParseErrors)+len(r.ValidationErrors))
	for _, e := range r.ParseErrors {
		errs = append(errs, e)
	}
	for _, e := range r.ValidationErrors {
		errs = append(errs, e)
	}
	return errs
}
