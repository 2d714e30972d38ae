package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for the scheduler's failure taxonomy.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	ErrInvalidProjectState    = New("INVALID_PROJECT_STATE", http.StatusConflict, "project is not accepting batches in its current state")
	ErrInvalidCandidateState  = New("INVALID_CANDIDATE_STATE", http.StatusConflict, "candidate is not pending")
	ErrBatchNotActive         = New("BATCH_NOT_ACTIVE", http.StatusConflict, "batch is no longer active")
	ErrBatchSuperseded        = New("BATCH_SUPERSEDED", http.StatusConflict, "batch has been superseded by a newer batch")
	ErrDeadlinePassed         = New("DEADLINE_PASSED", http.StatusConflict, "acceptance deadline has passed")
	ErrAlreadyAccepted        = New("ALREADY_ACCEPTED", http.StatusConflict, "candidate was already accepted")
	ErrProjectAlreadyAccepted = New("PROJECT_ALREADY_ACCEPTED", http.StatusConflict, "project was already accepted by another developer")
	ErrCandidateNotPending    = New("CANDIDATE_NO_LONGER_PENDING", http.StatusConflict, "candidate is no longer pending")
	ErrSelfAcceptForbidden    = New("SELF_ACCEPT_FORBIDDEN", http.StatusForbidden, "clients cannot accept their own project")
	ErrNoEligibleCandidates   = New("NO_ELIGIBLE_CANDIDATES", http.StatusUnprocessableEntity, "no eligible candidates found")
	ErrTransientConflict      = New("TRANSIENT_CONFLICT", http.StatusConflict, "storage conflict, retry the operation")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
