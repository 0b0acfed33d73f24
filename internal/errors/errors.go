package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a parse failure or diagnostic.
type Kind string

const (
	// Fatal kinds: the parse aborts with no estimate produced.
	KindStructural            Kind = "STRUCTURAL_ERROR"
	KindMissingRequiredColumn Kind = "MISSING_REQUIRED_COLUMN"
	KindSheetNotFound         Kind = "SHEET_NOT_FOUND"

	// Recoverable kinds: accumulated as diagnostics, the parse completes.
	KindUnresolvedReference Kind = "UNRESOLVED_REFERENCE"
	KindNumericCoercion     Kind = "NUMERIC_COERCION_WARNING"
	KindUnknownWbsLevel     Kind = "UNKNOWN_WBS_LEVEL"
)

// ParseError is a structured parse failure. Locator, when set, points at the
// offending row or element in the source document.
type ParseError struct {
	Kind    Kind
	Message string
	Locator string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Locator != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Locator)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches two ParseErrors by kind, so callers can probe with sentinel
// values like errors.Is(err, &ParseError{Kind: KindSheetNotFound}).
func (e *ParseError) Is(target error) bool {
	var pe *ParseError
	if errors.As(target, &pe) {
		return pe.Kind == e.Kind
	}
	return false
}

// New creates a ParseError with the given kind and message.
func New(kind Kind, message string) *ParseError {
	return &ParseError{Kind: kind, Message: message}
}

// Newf creates a ParseError with a formatted message.
func Newf(kind Kind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Structural creates a fatal structural error wrapping the decode cause.
func Structural(message string, err error) *ParseError {
	return &ParseError{Kind: KindStructural, Message: message, Err: err}
}

// MissingColumn creates a fatal missing-required-column error.
func MissingColumn(column string) *ParseError {
	return &ParseError{
		Kind:    KindMissingRequiredColumn,
		Message: fmt.Sprintf("required column %q not present in header row", column),
	}
}

// SheetNotFound creates a fatal sheet-not-found error.
func SheetNotFound(sheet string) *ParseError {
	return &ParseError{
		Kind:    KindSheetNotFound,
		Message: fmt.Sprintf("sheet %q not found and no active sheet available", sheet),
	}
}

// KindOf extracts the Kind of err, or "" when err is not a ParseError.
func KindOf(err error) Kind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
