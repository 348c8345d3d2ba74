package schema

import (
	"errors"
	"fmt"
)

// ErrTruncated reports a payload that ended before a resolved layout was
// fully consumed.
var ErrTruncated = errors.New("schema: truncated payload")

// SchemaError is a construction-time validation failure. A message or class
// that produces one is never registered.
type SchemaError struct {
	Class   string
	Message string
	Field   string
	Reason  string
}

func (e *SchemaError) Error() string {
	s := "schema: " + e.Reason
	if e.Class != "" {
		s += fmt.Sprintf(" (class %s)", e.Class)
	}
	if e.Message != "" {
		s += fmt.Sprintf(" (message %s)", e.Message)
	}
	if e.Field != "" {
		s += fmt.Sprintf(" (field %s)", e.Field)
	}
	return s
}

// LengthMismatchError reports a payload whose length cannot be produced by
// the message layout for any repeat count.
type LengthMismatchError struct {
	Message  string
	Expected int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("schema: payload length mismatch for %s: expected %d actual %d",
		e.Message, e.Expected, e.Actual)
}

// UnknownMessageError reports a (class id, message id) pair with no
// registered schema. ClassKnown distinguishes an unregistered class from an
// unregistered message within a known class.
type UnknownMessageError struct {
	ClassID    uint8
	MessageID  uint8
	ClassKnown bool
}

func (e *UnknownMessageError) Error() string {
	if !e.ClassKnown {
		return fmt.Sprintf("schema: message 0x%02X in unsupported class 0x%02X", e.MessageID, e.ClassID)
	}
	return fmt.Sprintf("schema: unsupported message 0x%02X in class 0x%02X", e.MessageID, e.ClassID)
}
