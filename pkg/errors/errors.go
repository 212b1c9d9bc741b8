package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Container errors
	ErrContainerInaccessible ErrorCode = "CONTAINER_INACCESSIBLE"
	ErrContainerCreate       ErrorCode = "CONTAINER_CREATE"
	ErrContainerRead         ErrorCode = "CONTAINER_READ"
	ErrContainerWrite        ErrorCode = "CONTAINER_WRITE"
	ErrPathNotFound          ErrorCode = "PATH_NOT_FOUND"
	ErrNameConflict          ErrorCode = "NAME_CONFLICT"
	ErrLockTimeout           ErrorCode = "LOCK_TIMEOUT"

	// Input errors
	ErrInputParse      ErrorCode = "INPUT_PARSE"
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"
)

// SolidError represents a structured error with code and details
type SolidError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SolidError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SolidError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SolidError) Is(target error) bool {
	var targetErr *SolidError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SolidError with the given code and message
func New(code ErrorCode, message string) *SolidError {
	return &SolidError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SolidError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SolidError {
	return &SolidError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SolidError
func Wrap(err error, code ErrorCode, message string) *SolidError {
	if err == nil {
		return nil
	}
	return &SolidError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SolidError {
	if err == nil {
		return nil
	}
	return &SolidError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SolidError) WithDetail(key string, value interface{}) *SolidError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *SolidError) WithDetails(details map[string]interface{}) *SolidError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var solidErr *SolidError
	if errors.As(err, &solidErr) {
		return solidErr.Code == code
	}
	return false
}

// HasErrorCode reports whether any SolidError in the chain carries code.
// IsErrorCode only looks at the outermost one.
func HasErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var solidErr *SolidError
		if !errors.As(err, &solidErr) {
			return false
		}
		if solidErr.Code == code {
			return true
		}
		err = solidErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SolidError
func GetErrorCode(err error) ErrorCode {
	var solidErr *SolidError
	if errors.As(err, &solidErr) {
		return solidErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a SolidError
func GetErrorDetails(err error) map[string]interface{} {
	var solidErr *SolidError
	if errors.As(err, &solidErr) {
		return solidErr.Details
	}
	return nil
}
