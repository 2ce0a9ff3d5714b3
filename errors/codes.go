package errors

// ErrorCategory classifies errors by their nature and retry semantics.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryTransient indicates temporary failures where retry may succeed.
	// Examples: network timeouts, temporary service unavailability.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates failures where retry will not help.
	// Examples: invalid input, method not found, protocol violations.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryInternal indicates unexpected errors, bugs, or system failures.
	// Examples: corrupted frames, invariant violations.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
func (c ErrorCategory) IsRetryable() bool {
	return c == CategoryTransient
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes for common failure scenarios.
const (
	// Transient errors
	ErrCodeTimeout     ErrorCode = "TIMEOUT"     // Operation timed out
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE" // Remote temporarily unavailable
	ErrCodeNetworkErr  ErrorCode = "NETWORK_ERR" // Network connectivity issue

	// Permanent errors
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"     // Method or resource does not exist
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT" // Malformed or invalid input
	ErrCodeUnsupported  ErrorCode = "UNSUPPORTED"   // Operation not supported by remote
	ErrCodeCanceled     ErrorCode = "CANCELED"      // Operation was canceled

	// Session-specific errors
	ErrCodeSessionClosed  ErrorCode = "SESSION_CLOSED"  // Session or transport already closed
	ErrCodeNotInitialized ErrorCode = "NOT_INITIALIZED" // Handshake not yet performed
	ErrCodeProtocol       ErrorCode = "PROTOCOL"        // JSON-RPC protocol violation

	// Internal errors
	ErrCodeInternal ErrorCode = "INTERNAL" // Unexpected internal error
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeTimeout, ErrCodeUnavailable, ErrCodeNetworkErr:
		return CategoryTransient

	case ErrCodeNotFound, ErrCodeInvalidInput, ErrCodeUnsupported, ErrCodeCanceled,
		ErrCodeSessionClosed, ErrCodeNotInitialized:
		return CategoryPermanent

	case ErrCodeProtocol, ErrCodeInternal:
		return CategoryInternal

	default:
		return CategoryInternal
	}
}

// DefaultRetryable returns whether this error code is typically retryable.
func (c ErrorCode) DefaultRetryable() bool {
	return c.DefaultCategory().IsRetryable()
}

// codeDescriptions provides human-readable descriptions for error codes.
var codeDescriptions = map[ErrorCode]string{
	ErrCodeTimeout:        "operation timed out",
	ErrCodeUnavailable:    "remote temporarily unavailable",
	ErrCodeNetworkErr:     "network connectivity error",
	ErrCodeNotFound:       "method or resource not found",
	ErrCodeInvalidInput:   "invalid input provided",
	ErrCodeUnsupported:    "operation not supported",
	ErrCodeCanceled:       "operation canceled",
	ErrCodeSessionClosed:  "session closed",
	ErrCodeNotInitialized: "session not initialized",
	ErrCodeProtocol:       "protocol violation",
	ErrCodeInternal:       "internal error",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
