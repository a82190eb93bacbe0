package explain

import (
	"errors"
	"fmt"
)

// MalformedRecordError is returned when an explanation entry lacks a
// required field. Processing of the affected instance aborts; other
// instances are unaffected.
type MalformedRecordError struct {
	Index int    // zero-based instance index within the payload
	Field string // the missing or invalid field
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("instance %d: malformed explanation record: missing %s", e.Index, e.Field)
}

// ShapeMismatchError is returned when an instance's attribution vector
// length disagrees with its unit sequence length.
type ShapeMismatchError struct {
	Index        int
	Units        int
	Attributions int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("instance %d: %d units but %d attributions", e.Index, e.Units, e.Attributions)
}

// IsMalformed reports whether err is (or wraps) a *MalformedRecordError.
func IsMalformed(err error) bool {
	var m *MalformedRecordError
	return errors.As(err, &m)
}

// IsShapeMismatch reports whether err is (or wraps) a *ShapeMismatchError.
func IsShapeMismatch(err error) bool {
	var s *ShapeMismatchError
	return errors.As(err, &s)
}
