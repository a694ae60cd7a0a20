// Package parseerr defines the error kinds raised by the field normalizers.
//
// Every kind is a sentinel so callers can branch with errors.Is; the
// concrete *Error carries the field and the offending text.
package parseerr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedValue is returned when a value is not a member of a
	// closed vocabulary.
	ErrUnrecognizedValue = errors.New("unrecognized value")
	// ErrMalformedRollSpec is returned when a hit-dice expression does not
	// reduce to a plain number.
	ErrMalformedRollSpec = errors.New("malformed roll specification")
	// ErrUnknownStatblockField is returned for a statblock header outside
	// the known set of rows.
	ErrUnknownStatblockField = errors.New("unknown statblock field")
	// ErrUnparsedPattern is returned when a field value matches none of the
	// shapes its parser knows.
	ErrUnparsedPattern = errors.New("unparsed pattern")
	// ErrMissingLookup is returned when a required lookup table has no entry.
	ErrMissingLookup = errors.New("missing lookup")
)

// Error is a field-level parse failure.
type Error struct {
	Kind  error  // one of the sentinels above
	Field string // normalized field name, e.g. "armor_class"
	Text  string // the text that failed
	Hint  string // optional suggestion, empty when none
}

// New constructs an *Error of the given kind.
func New(kind error, field, text string) *Error {
	return &Error{Kind: kind, Field: field, Text: text}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %q", e.Field, e.Kind, e.Text)
	if e.Hint != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Hint)
	}
	return msg
}

// Unwrap exposes the sentinel kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}
