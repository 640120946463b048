// Package dasherror defines the typed errors surfaced at the dashboard's
// recovery boundaries. Everything here is reported to the user and recovered
// locally; nothing in the core propagates an unhandled fault.
package dasherror

import (
	"fmt"
	"strings"
)

// ParseError represents a per-cell coercion failure during cleaning or
// edit re-validation.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MappingError reports that automatic schema mapping could not resolve all
// required canonical fields. It is not fatal: the caller falls back to
// manual mapping.
type MappingError struct {
	Missing []string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("automatic mapping failed: required field(s) not found: %s",
		strings.Join(e.Missing, ", "))
}

// IngestError represents a whole-source ingestion failure (unreachable
// sheet, malformed URL, unparsable file). The previous canonical table is
// left unchanged when one occurs.
type IngestError struct {
	Source string
	Err    error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingestion from %s failed: %v", e.Source, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// EditError represents a row edit that failed re-validation and was not
// applied to the canonical table.
type EditError struct {
	RowID string
	Field string
	Err   error
}

func (e *EditError) Error() string {
	return fmt.Sprintf("edit rejected for row %s: field %s: %v", e.RowID, e.Field, e.Err)
}

func (e *EditError) Unwrap() error {
	return e.Err
}
