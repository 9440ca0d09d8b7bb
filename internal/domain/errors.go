package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrCycle        = errors.New("folder cycle")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a referenced id does not exist
	NotFoundError struct {
		Resource string // "folder", "document", ...
		ID       string
	}

	// ValidationError indicates malformed input
	ValidationError struct {
		Message string
	}

	// CycleError indicates a structural mutation would make a folder its own ancestor
	CycleError struct {
		FolderID string // folder being moved
		TargetID string // requested parent
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// NewNotFound builds a NotFoundError for a resource id.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewValidation builds a ValidationError from a format string.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Error implementations
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
func (e *ValidationError) Error() string { return e.Message }
func (e *CycleError) Error() string {
	if e.FolderID == e.TargetID {
		return fmt.Sprintf("cannot move folder %s into itself", e.FolderID)
	}
	return fmt.Sprintf("cannot move folder %s into its descendant %s", e.FolderID, e.TargetID)
}
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *CycleError) StatusCode() int        { return http.StatusConflict }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is lets errors.Is() match the typed errors against their sentinels
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *CycleError) Is(target error) bool        { return target == ErrCycle }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }
