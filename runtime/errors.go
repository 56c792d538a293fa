package runtime

import (
	"errors"
	"fmt"
)

// Sentinel errors for runtime construction and lifecycle.
var (
	// ErrNoLoops is returned by Build when no loop was added.
	ErrNoLoops = errors.New("runtime has no loops")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("runtime already started")

	// ErrNotStarted is returned when Run or Wait is called before Start.
	ErrNotStarted = errors.New("runtime not started")

	// ErrAlreadyBuilt is returned when the builder is reused after Build.
	ErrAlreadyBuilt = errors.New("builder already produced a runtime")

	// ErrWaitTimeout is returned by Wait when loops are still running at
	// context expiry. An active loop blocked inside its own step cannot be
	// interrupted; the caller decides whether to exit the process anyway.
	ErrWaitTimeout = errors.New("timed out waiting for loops to stop")
)

// ConfigError describes one invalid loop configuration, reported by Build
// before any goroutine starts.
type ConfigError struct {
	// Loop is the offending loop's name, empty for registry-level errors.
	Loop string

	// Reason describes what is wrong.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Loop == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration for loop %q: %s", e.Loop, e.Reason)
}
