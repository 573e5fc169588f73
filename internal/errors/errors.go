package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Predefined error codes. CONFIG_INVALID is fatal and aborts a run before
// any API call; TRANSPORT_ERROR and PARSE_ERROR are retryable per request;
// CANCELLED drains the run without data loss.
const (
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeTransportError = "TRANSPORT_ERROR"
	CodeParseError     = "PARSE_ERROR"
	CodeCancelled      = "CANCELLED"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeInternalError  = "INTERNAL_ERROR"
)

// Common error constructors

func ConfigInvalid(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeConfigInvalid,
		Message: message,
		Cause:   cause,
	}
}

func TransportError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeTransportError,
		Message: message,
		Cause:   cause,
	}
}

func ParseError(message string) *AppError {
	return New(CodeParseError, message)
}

func Cancelled(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeCancelled,
		Message: message,
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// IsRetryable reports whether the runner should retry the request that
// produced err. Transport and parse failures are retryable; everything else
// (config, cancellation) is not.
func IsRetryable(err error) bool {
	code := GetCode(err)
	return code == CodeTransportError || code == CodeParseError
}
