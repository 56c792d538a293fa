package loop

import (
	"github.com/dshills/loopkit/event"
)

// Kind selects a loop's scheduling discipline.
type Kind int

const (
	// Active loops run a repeating step and poll their mailbox without
	// blocking.
	Active Kind = iota
	// Reactive loops block until an event arrives, drain, and re-block.
	Reactive
)

// String returns the configuration-file spelling of the loop kind.
func (k Kind) String() string {
	switch k {
	case Active:
		return "active"
	case Reactive:
		return "reactive"
	default:
		return "unknown"
	}
}

// ParseKind parses a configuration-file loop kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "active":
		return Active, true
	case "reactive":
		return Reactive, true
	default:
		return 0, false
	}
}

// HandlerFunc handles one delivered event. It runs on the loop's own
// goroutine; it may publish through the context and mutate any state it
// closes over without locking.
type HandlerFunc func(ctx *Context, ev event.Event)

// StepFunc is an active loop's repeating unit of work. It may sleep or
// block at its own pace; long-running steps should poll ctx.Stopping to
// notice shutdown.
type StepFunc func(ctx *Context)

// Config declares one loop: its identity, its scheduling discipline, the
// kinds it publishes and subscribes to, and the code that handles them.
// All validation happens once, when the runtime is built.
type Config struct {
	// Name identifies the loop. Must be unique within a runtime.
	Name string

	// Kind selects the scheduling discipline.
	Kind Kind

	// Publishes lists every kind the loop's handlers or step may publish.
	// Publishing an undeclared kind panics.
	Publishes []event.Kind

	// Subscribes lists every kind routed to this loop. Each must have an
	// entry in Handlers.
	Subscribes []event.Kind

	// Handlers maps each subscribed kind to its handler.
	Handlers map[event.Kind]HandlerFunc

	// Step is the repeating unit of work. Required for active loops,
	// forbidden for reactive ones.
	Step StepFunc
}
