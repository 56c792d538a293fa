package event

import (
	"time"

	"github.com/google/uuid"
)

// Kind names an event kind. Kinds are plain strings so that configuration
// files and scripts can refer to them directly, but only registered kinds
// participate in routing.
type Kind string

// reservedPrefix guards kind names the runtime claims for itself.
const reservedPrefix = "loopkit."

// KindExit is the reserved shutdown kind. The runtime publishes it to
// unwind every loop; it is never registrable, publishable, or subscribable
// by user code.
const KindExit Kind = reservedPrefix + "exit"

// Event is an immutable record of one occurrence of a Kind.
// Events are cheaply duplicable; fan-out hands each subscriber its own copy.
type Event struct {
	// Kind tags the event with its registered kind.
	Kind Kind

	// Payload carries the event-specific data. For loops defined in Go
	// this is whatever value the publisher chose; for configuration-defined
	// kinds it is a map[string]any checked against the kind's schema.
	Payload any

	// Meta carries standard per-instance information.
	Meta Metadata
}

// Metadata is stamped onto every event at publish time.
type Metadata struct {
	// ID uniquely identifies this logical event. Clones share the ID.
	ID string

	// Timestamp is when the event was published.
	Timestamp time.Time

	// Source is the name of the loop that published the event.
	Source string
}

// New creates an event of the given kind with fresh metadata.
func New(kind Kind, payload any, source string) Event {
	return Event{
		Kind:    kind,
		Payload: payload,
		Meta: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// Clone returns a copy of the event for delivery to one subscriber.
// The copy shares the payload and metadata; both are treated as immutable
// once published.
func (e Event) Clone() Event {
	return e
}

// IsExit reports whether the event is the reserved shutdown signal.
func (e Event) IsExit() bool {
	return e.Kind == KindExit
}

// Fields returns the payload as a field map, for schema-carrying events.
// It returns nil when the payload is not a field map.
func (e Event) Fields() map[string]any {
	m, _ := e.Payload.(map[string]any)
	return m
}
