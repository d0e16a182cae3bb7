package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrNilTLAS    = errors.New("pipeline: nil acceleration structure")
	ErrNilPayload = errors.New("pipeline: nil payload")
)

// StateError reports a ray query operation called in a state that does not
// allow it. It is a programming error and is raised with panic.
type StateError struct {
	Op    string
	State QueryState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("pipeline: ray query %s not allowed in state %s", e.Op, e.State)
}
