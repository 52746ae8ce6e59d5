package helpers

import (
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

// ErrUnauthorized is returned for any server-reported authentication
// rejection. It is the only error class allowed to cascade beyond its
// originating component (it forces session teardown system-wide).
var ErrUnauthorized = errors.New("unauthorized")

type MarketSyncError struct {
	Message string
	Cause   error
}

func (e *MarketSyncError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MarketSyncError) Unwrap() error {
	return e.Cause
}

// Distinct error classes for type assertions. Transport and Parse errors are
// contained at their component boundary; Action errors surface as discrete
// notifications; Poll errors are swallowed with the stale value retained.
type TransportError struct{ MarketSyncError }
type ParseError struct{ MarketSyncError }
type ActionError struct{ MarketSyncError }
type PollError struct{ MarketSyncError }
type ConfigurationError struct{ MarketSyncError }
type StorageError struct{ MarketSyncError }

// -----------------------------------------------------------------------------

func NewTransportError(msg string, cause error) *TransportError {
	return &TransportError{MarketSyncError{Message: msg, Cause: cause}}
}

func NewParseError(msg string, cause error) *ParseError {
	return &ParseError{MarketSyncError{Message: msg, Cause: cause}}
}

func NewActionError(msg string, cause error) *ActionError {
	return &ActionError{MarketSyncError{Message: msg, Cause: cause}}
}

func NewPollError(msg string, cause error) *PollError {
	return &PollError{MarketSyncError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts the operation up to maxRetries times with
// exponential backoff. It is used for request-response calls only; the push
// channel follows the fixed-delay reconnect rule instead. An unauthorized
// error aborts immediately so the teardown cascade is not delayed.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}
		if errors.Is(err, ErrUnauthorized) {
			return nil, err
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		fmt.Printf("Warning: Attempt %d/%d failed for %s: %v. Retrying in %v\n", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return nil, lastErr
}
