package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// If err is already a SessionError, its code, category and metadata carry over.
// Otherwise a new Internal error wraps the original.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var sessErr *Error
	if errors.As(err, &sessErr) {
		wrapped := &Error{
			code:      sessErr.code,
			category:  sessErr.category,
			message:   message,
			cause:     err,
			metadata:  sessErr.Metadata(),
			retryable: sessErr.retryable,
			sessionID: sessErr.sessionID,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	// Check for context errors
	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}

	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// AsSessionError attempts to extract a SessionError from an error chain.
// Returns nil if no SessionError is found.
func AsSessionError(err error) SessionError {
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr
	}
	return nil
}

// Is checks if any error in the chain has the given error code.
func Is(err error, code ErrorCode) bool {
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr.code == code
	}
	return false
}

// IsCategory checks if any error in the chain has the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr.category == category
	}
	return false
}

// IsRetryable checks if the error is retryable.
func IsRetryable(err error) bool {
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr.Retryable()
	}
	// Default to not retryable for non-SessionErrors
	return false
}

// IsTransient checks if the error is transient.
func IsTransient(err error) bool {
	return IsCategory(err, CategoryTransient)
}

// IsPermanent checks if the error is permanent.
func IsPermanent(err error) bool {
	return IsCategory(err, CategoryPermanent)
}

// Code extracts the error code from an error, if available.
// Returns empty string if err is not a SessionError.
func Code(err error) ErrorCode {
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr.code
	}
	return ""
}

// Category extracts the error category from an error, if available.
// Returns empty string if err is not a SessionError.
func Category(err error) ErrorCategory {
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr.category
	}
	return ""
}

// Cause returns the root cause of the error chain.
func Cause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		inner := unwrapper.Unwrap()
		if inner == nil {
			return err
		}
		err = inner
	}
}
