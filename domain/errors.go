package domain

import (
	"errors"
	"fmt"
)

// ConflictError signals a version race or duplicate (aggregate_id, version).
// The caller should recompute and retry the append.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a new ConflictError
func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// ValidationError signals a malformed or unrecognized request. Not retryable.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError signals a query for a non-existent aggregate
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Resource, e.ID)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// ProjectionFatalError signals that an event was durably persisted but could
// not be projected. The read model is stale until a rebuild runs; the event
// log itself is intact.
type ProjectionFatalError struct {
	EventID string
	Err     error
}

func (e *ProjectionFatalError) Error() string {
	return fmt.Sprintf("projection failed for event %s: %v", e.EventID, e.Err)
}

func (e *ProjectionFatalError) Unwrap() error {
	return e.Err
}

// NewProjectionFatalError creates a new ProjectionFatalError
func NewProjectionFatalError(eventID string, err error) *ProjectionFatalError {
	return &ProjectionFatalError{EventID: eventID, Err: err}
}

// IsProjectionFatal reports whether err is a ProjectionFatalError
func IsProjectionFatal(err error) bool {
	var pfe *ProjectionFatalError
	return errors.As(err, &pfe)
}
