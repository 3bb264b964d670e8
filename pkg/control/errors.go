package control

import (
	"errors"
	"fmt"
)

var (
	// ErrPathNotFound is returned by Lookup when a path segment does not
	// resolve.
	ErrPathNotFound = errors.New("control: path not found")
	// ErrNoBuilder is returned when an array row is requested on an array
	// that was not created by a Builder.
	ErrNoBuilder = errors.New("control: array has no builder")
	// ErrRowOutOfRange is returned for invalid row indexes.
	ErrRowOutOfRange = errors.New("control: row index out of range")
)

// AssignmentError reports a value that cannot be stored in a leaf.
type AssignmentError struct {
	Attribute string
	Value     any
	Reason    string
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("control: assign %s: %s (%T)", e.Attribute, e.Reason, e.Value)
}
