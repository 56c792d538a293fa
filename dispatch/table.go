package dispatch

import (
	"sort"

	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/mailbox"
)

// Subscriber is one routing target: a loop and the producer side of its
// mailbox.
type Subscriber struct {
	// Loop is the subscribing loop's name.
	Loop string

	// Producer feeds the loop's inbound mailbox.
	Producer *mailbox.Producer
}

// Table maps each event kind to its subscribers. It is built once by the
// runtime and read-only afterward, so the dispatcher consults it without
// locking.
type Table struct {
	routes map[event.Kind][]Subscriber
	all    []Subscriber
}

// NewTable builds a routing table from per-kind subscriber lists plus the
// complete set of loop producers (used to broadcast the shutdown signal).
func NewTable(routes map[event.Kind][]Subscriber, all []Subscriber) *Table {
	copied := make(map[event.Kind][]Subscriber, len(routes))
	for k, subs := range routes {
		copied[k] = append([]Subscriber(nil), subs...)
	}
	return &Table{
		routes: copied,
		all:    append([]Subscriber(nil), all...),
	}
}

// Subscribers returns the routing targets for a kind. The returned slice
// must not be mutated.
func (t *Table) Subscribers(kind event.Kind) []Subscriber {
	return t.routes[kind]
}

// Kinds returns every routed kind in sorted order, for inspection and
// tests.
func (t *Table) Kinds() []event.Kind {
	out := make([]event.Kind, 0, len(t.routes))
	for k := range t.routes {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Routes reports whether the kind is routed to the named loop, for
// inspection and tests.
func (t *Table) Routes(kind event.Kind, loopName string) bool {
	for _, sub := range t.routes[kind] {
		if sub.Loop == loopName {
			return true
		}
	}
	return false
}
