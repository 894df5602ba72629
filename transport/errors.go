package transport

import "fmt"

// RemoteError is a non-busy, non-success response from the server.  It is
// surfaced immediately and never retried, since the failure may come from a
// non-idempotent operation.
type RemoteError struct {
	// Action is the attempted exchange, e.g., "GET /api/node/3f8c/grayscale/info".
	Action string

	// StatusCode is the HTTP status the server answered with.
	StatusCode int

	// Reason is the server-provided message body, possibly truncated.
	Reason string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server returned %d for %s: %s", e.StatusCode, e.Action, e.Reason)
}

// RetryExhaustedError means the server stayed busy through the entire retry
// budget.
type RetryExhaustedError struct {
	Action   string
	Attempts int
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("server still busy after %d attempts of %s", e.Attempts, e.Action)
}
