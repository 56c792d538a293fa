package dispatch

import "errors"

// Sentinel errors for the dispatcher.
var (
	// ErrInboundDisconnected is returned by Run when every publisher
	// handle vanished without an exit signal. Loops hold their publisher
	// handles for their whole lifetime, so this indicates a wiring bug,
	// not an orderly shutdown.
	ErrInboundDisconnected = errors.New("dispatcher inbound disconnected without exit signal")

	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("dispatcher is already running")
)
