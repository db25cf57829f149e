package otp

import "errors"

// Sentinel errors for engine calls.
var (
	// ErrEngineUnavailable indicates the engine is down or the circuit breaker is open.
	ErrEngineUnavailable = errors.New("trip planning engine unavailable")
	// ErrBadRequest indicates the engine rejected the query parameters.
	ErrBadRequest = errors.New("trip planning engine rejected the request")
	// ErrRateLimitExceeded indicates the engine is throttling requests.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Error is a failed engine call.
type Error struct {
	Code    string // Short machine-readable code, e.g. "SERVER_503"
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrEngineUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
