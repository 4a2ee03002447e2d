package apperr

import (
	"errors"
	"fmt"
)

// Code classifies failures surfaced by the executor and the workspace store.
type Code string

const (
	// CodeInvalidArgument indicates a missing or empty required field.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeNotFound indicates the referenced file does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodePolicyViolation indicates the action is blocked by a safety invariant.
	CodePolicyViolation Code = "POLICY_VIOLATION"
	// CodeStorageUnavailable indicates the persistence backend failed.
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

type Error struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext attaches a diagnostic key/value to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func InvalidArgument(msg string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func PolicyViolation(msg string) *Error {
	return &Error{Code: CodePolicyViolation, Message: msg}
}

func StorageUnavailable(msg string, cause error) *Error {
	return &Error{Code: CodeStorageUnavailable, Message: msg, Cause: cause}
}

// IsCode reports whether err, or anything it wraps, carries code.
func IsCode(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf extracts the code from err, returning fallback for foreign errors.
func CodeOf(err error, fallback Code) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}

// UserMessage renders a short message suitable for showing in a session.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Code {
	case CodeInvalidArgument:
		return "Invalid request: " + appErr.Message
	case CodeNotFound:
		return appErr.Message
	case CodePolicyViolation:
		return "Blocked: " + appErr.Message
	case CodeStorageUnavailable:
		return "Storage unavailable: " + appErr.Message
	default:
		return appErr.Message
	}
}
