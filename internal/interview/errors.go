package interview

import (
	"errors"
	"fmt"
)

// ErrSkippedAnswer signals that the caller submitted no answer. The
// orchestrator absorbs it: the turn is recorded with a zero score and the
// session continues.
var ErrSkippedAnswer = errors.New("no answer submitted")

// ErrNotFinished is returned by Report before the session reached its final
// state.
var ErrNotFinished = errors.New("session is not finished")

// ErrNoQuestionPending is returned by SubmitAnswer when the session is not
// waiting for an answer.
var ErrNoQuestionPending = errors.New("no question is awaiting an answer")

// ValidationError reports a missing required setup input. It is the only
// error that aborts the flow before a session exists; it is never silently
// defaulted.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required input %q is empty", e.Field)
}

// CollaboratorError wraps a failed or malformed generation call. It is
// recovered locally with a documented fallback and never terminates a
// running session.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// PersistenceError wraps a storage write failure. It is surfaced to the
// caller as a warning and never rolls back in-memory session state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
