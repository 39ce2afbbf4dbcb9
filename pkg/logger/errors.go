package logger

import "fmt"

// RemoteError represents a remote ingest failure after all retries.
type RemoteError struct {
	// StatusCode is the HTTP status code (0 for network errors).
	StatusCode int

	// Message is the response body or transport error text.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote ingest error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote ingest error: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// AuthError represents a rejected ingest credential (HTTP 401 or 403).
// Authentication failures are never retried.
type AuthError struct {
	// Message is the error message from the remote service.
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("remote ingest authentication failed: %s", e.Message)
}
