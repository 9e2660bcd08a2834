// Package services defines the business logic for pet listings, adoption
// requests, the approval workflow and the adoption history ledger.
// This file centralizes the error taxonomy so that service methods return
// predictable values and callers can classify them with errors.Is.
//
// Every specific error wraps exactly one kind (ErrValidation, ErrNotFound,
// ErrConflict, ErrForbidden). Anything that wraps none of them is an
// unexpected failure; translation into user-facing messages or HTTP status
// codes is performed at the handler layer.
package services

import (
	"errors"
	"strings"
)

// Error kinds.
var (
	// ErrValidation marks malformed input. No mutation was performed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a violated state precondition.
	ErrConflict = errors.New("conflict")

	// ErrForbidden marks an acting user without the required relationship
	// to the resource.
	ErrForbidden = errors.New("forbidden")
)

// kindError is a specific error that classifies as its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error { return &kindError{kind: kind, msg: msg} }

// Not found.
var (
	ErrPetNotFound     = newError(ErrNotFound, "pet not found")
	ErrRequestNotFound = newError(ErrNotFound, "adoption request not found")
	ErrFileNotFound    = newError(ErrNotFound, "file not found")
)

// Conflicts.
var (
	// ErrPetUnavailable is returned when requesting or approving a pet that
	// is no longer available.
	ErrPetUnavailable = newError(ErrConflict, "pet unavailable")

	// ErrDuplicatePending is returned when the requester already holds a
	// pending request for the pet.
	ErrDuplicatePending = newError(ErrConflict, "duplicate pending request")

	// ErrAlreadyProcessed is returned for any transition out of a terminal
	// state, including cancellation.
	ErrAlreadyProcessed = newError(ErrConflict, "request already processed")

	// ErrPetAdopted is returned when deleting a pet that the history ledger
	// references.
	ErrPetAdopted = newError(ErrConflict, "adopted pets cannot be deleted")
)

// Forbidden.
var (
	ErrSelfRequest    = newError(ErrForbidden, "cannot request your own pet")
	ErrNotPetOwner    = newError(ErrForbidden, "only the pet owner can do this")
	ErrNotRequester   = newError(ErrForbidden, "only the requester can cancel this request")
	ErrNotParticipant = newError(ErrForbidden, "not a participant in this request")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level detail. It matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// add appends a field error and returns e for chaining.
func (e *ValidationError) add(field, msg string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
	return e
}

// orNil returns nil when no field failed, so callers can write
// `if err := v.orNil(); err != nil`.
func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Kind returns the taxonomy kind err belongs to, or nil for unexpected
// failures.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrForbidden} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
