package webhook

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is returned by the dispatcher when no handler
	// exists for an event type. Mapped to an Ignored result, never retried.
	ErrUnsupportedType = errors.New("unsupported event type")

	// ErrMaxRetries is returned after the retry budget is exhausted
	ErrMaxRetries = errors.New("max retry attempts exceeded")
)

/* HandlerError classifies a handler failure at the dispatcher boundary.
 * Terminal failures (bad event data, unsupported business state) stop
 * immediately; everything else is presumed transient and retried.
 */
type HandlerError struct {
	Terminal bool
	Err      error
}

func (e *HandlerError) Error() string {
	if e.Terminal {
		return fmt.Sprintf("terminal handler failure: %v", e.Err)
	}
	return fmt.Sprintf("retryable handler failure: %v", e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// InvalidEventData marks a failure caused by a malformed business payload.
// Retrying will not fix the payload, so it is terminal.
func InvalidEventData(err error) *HandlerError {
	return &HandlerError{Terminal: true, Err: fmt.Errorf("invalid event data: %w", err)}
}

// Transient marks a failure from a collaborator (storage, network) that
// is plausibly resolved by retrying with backoff.
func Transient(err error) *HandlerError {
	return &HandlerError{Terminal: false, Err: err}
}

// IsTerminal reports whether err should stop the retry loop.
// Unclassified errors are treated as retryable: a collaborator that does
// not speak HandlerError is assumed to have failed transiently, and a
// per-attempt deadline expiry gets a fresh deadline on the next attempt.
func IsTerminal(err error) bool {
	var handlerErr *HandlerError
	if errors.As(err, &handlerErr) {
		return handlerErr.Terminal
	}
	if errors.Is(err, ErrUnsupportedType) {
		return true
	}
	return false
}
