package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a renamer error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrPathDenied     ErrorCode = "PATH_DENIED"     // 403 (import/export outside allowed dirs)
	ErrUpdateCheck    ErrorCode = "UPDATE_CHECK"    // 502 (release endpoint failures)
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// RenamerError represents a structured error with code, status, and details.
type RenamerError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *RenamerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *RenamerError {
	return &RenamerError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a record cannot be found.
func NewNotFound(identifier string) *RenamerError {
	return &RenamerError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("record not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing file on disk.
func NewFileNotFound(path string) *RenamerError {
	return &RenamerError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *RenamerError {
	return &RenamerError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewPathDenied creates a 403 error for paths outside the allowed directories.
func NewPathDenied(path, reason string) *RenamerError {
	return &RenamerError{
		Code:    ErrPathDenied,
		Status:  403,
		Message: fmt.Sprintf("path not allowed: %s (%s)", path, reason),
		Details: map[string]any{"path": path, "reason": reason},
	}
}

// NewUpdateCheck creates a 502 error for release endpoint failures.
func NewUpdateCheck(msg string) *RenamerError {
	if msg == "" {
		msg = "update check failed"
	}
	return &RenamerError{
		Code:    ErrUpdateCheck,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *RenamerError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &RenamerError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error (or any error it wraps) is a RenamerError with the given code.
func Is(err error, code ErrorCode) bool {
	var rErr *RenamerError
	if stderrors.As(err, &rErr) {
		return rErr.Code == code
	}
	return false
}
