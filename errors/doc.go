// Package errors provides a structured error taxonomy for mcpkeep. It
// defines the error codes and categories used by the transport, session
// client, and keep-alive layers for consistent failure classification.
//
// # Error Categories
//
// Errors are classified into three categories:
//
//   - Transient: Temporary failures where retry may succeed (network issues, etc.)
//   - Permanent: Failures where retry will not help (invalid input, not found, etc.)
//   - Internal: Unexpected errors indicating bugs or system failures
//
// # Error Codes
//
// Each error has a specific code that identifies the type of failure:
//
//   - TIMEOUT: Operation timed out
//   - NOT_FOUND: Method or resource not found
//   - SESSION_CLOSED: Session or transport already closed
//   - NOT_INITIALIZED: Handshake not yet performed
//   - And more...
//
// # Usage
//
// Create a new error:
//
//	err := errors.New(errors.ErrCodeTimeout, "probe timed out")
//
// Wrap an existing error with context:
//
//	wrapped := errors.Wrap(err, "listing tools")
//
// Check if an error is retryable:
//
//	if sessErr := errors.AsSessionError(err); sessErr != nil && sessErr.Retryable() {
//	    // retry logic
//	}
package errors
