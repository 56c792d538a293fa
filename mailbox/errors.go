package mailbox

import "errors"

// Sentinel errors for mailbox receives.
var (
	// ErrEmpty is returned by TryReceive when no event is queued.
	ErrEmpty = errors.New("mailbox is empty")

	// ErrDisconnected is returned when the queue is empty and every
	// producer handle has been closed, or the consumer side was closed.
	// It is terminal: the consumer should exit its loop.
	ErrDisconnected = errors.New("mailbox is disconnected")
)
