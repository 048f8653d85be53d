package domain

import (
	"errors"
	"fmt"
)

// Clean-skip sentinels. These mark a chat cycle that did nothing on purpose
// and are not failures.
var (
	// ErrUnchanged means no new messages arrived since the last
	// successful cycle.
	ErrUnchanged = errors.New("message window unchanged")

	// ErrThrottled means the chat is at its pending-suggestion ceiling
	// or inside the cooldown window.
	ErrThrottled = errors.New("chat throttled")

	// ErrNoReplyNeeded means the newest message in the window is our own.
	ErrNoReplyNeeded = errors.New("latest message is our own")
)

var (
	// ErrNotActionable is returned when a decision targets a suggestion
	// that is no longer pending.
	ErrNotActionable = errors.New("suggestion is not pending")

	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedCompletion marks completion output that did not parse
	// into the required two non-empty fields.
	ErrMalformedCompletion = errors.New("malformed completion output")
)

// TransportError wraps network/auth failures from the chat adapter.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("telegram %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError wraps failures from the completion service, including
// malformed output (unwraps to ErrMalformedCompletion in that case).
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("completion service: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsCleanSkip reports whether an error from a generation cycle is a normal
// no-op rather than a failure.
func IsCleanSkip(err error) bool {
	return errors.Is(err, ErrUnchanged) ||
		errors.Is(err, ErrThrottled) ||
		errors.Is(err, ErrNoReplyNeeded)
}
