package schema

import (
	"errors"
	"fmt"
)

// ErrRelationNotFound is wrapped by a ResolutionError when the relation is unknown.
var ErrRelationNotFound = errors.New("relation not found")

// ResolutionError is returned when the columns of a relation cannot be determined.
type ResolutionError struct {
	Relation string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve columns of %q: %v", e.Relation, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NotFound returns a ResolutionError wrapping ErrRelationNotFound.
func NotFound(relation string) *ResolutionError {
	return &ResolutionError{Relation: relation, Err: ErrRelationNotFound}
}
