// Package errors defines the application error type shared by the data, service and HTTP layers.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

// Generic codes, mostly produced by MapDBError.
const (
	ErrCodeNotFound   ErrorCode = "not_found"
	ErrCodeConflict   ErrorCode = "conflict"
	ErrCodeValidation ErrorCode = "validation"
	ErrCodeForeignKey ErrorCode = "foreign_key"
	ErrCodeInternal   ErrorCode = "internal"
	ErrCodeTimeout    ErrorCode = "timeout"
	ErrCodeCanceled   ErrorCode = "canceled"
)

// Poll cycle failure classes. The first six end an invocation with a failure result;
// cancellation and notification failures are logged and the invocation still succeeds.
const (
	// ErrCodeBadInvocation marks an invocation missing campaign, schedule or organization.
	ErrCodeBadInvocation ErrorCode = "bad_invocation"
	// ErrCodeProviderUnavailable marks a network failure, timeout, 5xx or 429 from the status provider.
	ErrCodeProviderUnavailable ErrorCode = "provider_unavailable"
	// ErrCodeProviderProtocol marks a provider answer with an unexpected status code or body shape.
	ErrCodeProviderProtocol ErrorCode = "provider_protocol"
	// ErrCodeProjection marks a complete snapshot that lacks its completion timestamp.
	ErrCodeProjection ErrorCode = "projection"
	// ErrCodeStoreUnavailable marks a transient persistence failure.
	ErrCodeStoreUnavailable ErrorCode = "store_unavailable"

	ErrCodeCancellationFailure ErrorCode = "cancellation_failure"
	ErrCodeNotificationFailure ErrorCode = "notification_failure"
)

// AppError is a coded error with a human-readable message. Field names the offending
// input for validation and bad invocation errors. Cause is reachable through errors.Is/As.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Field   string
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newError(code ErrorCode, field, message string) *AppError {
	return &AppError{Code: code, Message: message, Field: field}
}

// NotFound creates a NotFound error.
func NotFound(message string) *AppError { return newError(ErrCodeNotFound, "", message) }

// NotFoundf creates a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return newError(ErrCodeNotFound, "", fmt.Sprintf(format, args...))
}

// Conflict creates a Conflict error.
func Conflict(message string) *AppError { return newError(ErrCodeConflict, "", message) }

// Validation creates a Validation error that is not tied to one field.
func Validation(message string) *AppError { return newError(ErrCodeValidation, "", message) }

// ValidationField creates a Validation error for field.
func ValidationField(field, message string) *AppError {
	return newError(ErrCodeValidation, field, message)
}

// ForeignKey creates a ForeignKey error.
func ForeignKey(message string) *AppError { return newError(ErrCodeForeignKey, "", message) }

// BadInvocation creates a BadInvocation error for the missing invocation field.
func BadInvocation(field, message string) *AppError {
	return newError(ErrCodeBadInvocation, field, message)
}

// ProviderProtocolf creates a ProviderProtocol error with a formatted message.
func ProviderProtocolf(format string, args ...any) *AppError {
	return newError(ErrCodeProviderProtocol, "", fmt.Sprintf(format, args...))
}

// Projection creates a Projection error.
func Projection(message string) *AppError { return newError(ErrCodeProjection, "", message) }

// Wrap attaches code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message. The message is only formatted when err is non-nil.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// GetCode returns the code of the outermost AppError in err's chain, or "".
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field of the outermost AppError in err's chain, or "".
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

func IsNotFound(err error) bool            { return hasCode(err, ErrCodeNotFound) }
func IsValidation(err error) bool          { return hasCode(err, ErrCodeValidation) }
func IsTimeout(err error) bool             { return hasCode(err, ErrCodeTimeout) }
func IsCanceled(err error) bool            { return hasCode(err, ErrCodeCanceled) }
func IsBadInvocation(err error) bool       { return hasCode(err, ErrCodeBadInvocation) }
func IsProviderUnavailable(err error) bool { return hasCode(err, ErrCodeProviderUnavailable) }
func IsProviderProtocol(err error) bool    { return hasCode(err, ErrCodeProviderProtocol) }
func IsProjection(err error) bool          { return hasCode(err, ErrCodeProjection) }
func IsStoreUnavailable(err error) bool    { return hasCode(err, ErrCodeStoreUnavailable) }
