package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input. No task is created.
	ErrValidation = errors.New("validation error")

	// ErrCollaboratorUnavailable marks a failed or timed-out call to the
	// content catalog, plan generator, or object store.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrNotFound marks a missing plan or activity, or one the requesting
	// owner may not see.
	ErrNotFound = errors.New("not found")

	// ErrPersistence marks a write to the object store that did not succeed.
	ErrPersistence = errors.New("persistence error")
)

// PlanError carries the operation that failed alongside one of the
// sentinel kinds above, so callers can match with errors.Is.
type PlanError struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *PlanError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

func (e *PlanError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewValidationError(op, msg string) error {
	return &PlanError{Kind: ErrValidation, Op: op, Msg: msg}
}

func NewNotFoundError(op, msg string) error {
	return &PlanError{Kind: ErrNotFound, Op: op, Msg: msg}
}

func NewPersistenceError(op string, err error) error {
	return &PlanError{Kind: ErrPersistence, Op: op, Err: err}
}

func NewCollaboratorError(op string, err error) error {
	return &PlanError{Kind: ErrCollaboratorUnavailable, Op: op, Err: err}
}
