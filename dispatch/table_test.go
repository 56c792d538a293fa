package dispatch

import (
	"testing"

	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/mailbox"
)

func TestTable_Subscribers(t *testing.T) {
	boxA, boxB := mailbox.New(), mailbox.New()
	subA := Subscriber{Loop: "A", Producer: boxA.Producer()}
	subB := Subscriber{Loop: "B", Producer: boxB.Producer()}

	table := NewTable(map[event.Kind][]Subscriber{
		"K1": {subA, subB},
		"K2": {subB},
	}, []Subscriber{subA, subB})

	if got := table.Subscribers("K1"); len(got) != 2 {
		t.Errorf("K1: expected 2 subscribers, got %d", len(got))
	}
	if got := table.Subscribers("K2"); len(got) != 1 || got[0].Loop != "B" {
		t.Errorf("K2: expected only loop B, got %v", got)
	}
	if got := table.Subscribers("K3"); got != nil {
		t.Errorf("unrouted kind: expected nil, got %v", got)
	}
}

func TestTable_Routes(t *testing.T) {
	box := mailbox.New()
	sub := Subscriber{Loop: "A", Producer: box.Producer()}
	table := NewTable(map[event.Kind][]Subscriber{"K": {sub}}, []Subscriber{sub})

	if !table.Routes("K", "A") {
		t.Error("expected K to route to A")
	}
	if table.Routes("K", "B") {
		t.Error("K must not route to B")
	}
	if table.Routes("J", "A") {
		t.Error("unrouted kind must not route anywhere")
	}
}

func TestTable_Kinds(t *testing.T) {
	box := mailbox.New()
	sub := Subscriber{Loop: "A", Producer: box.Producer()}
	table := NewTable(map[event.Kind][]Subscriber{
		"c": {sub}, "a": {sub}, "b": {sub},
	}, []Subscriber{sub})

	kinds := table.Kinds()
	want := []event.Kind{"a", "b", "c"}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d kinds, got %d", len(want), len(kinds))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d]: expected %q, got %q", i, want[i], kinds[i])
		}
	}
}

func TestNewTable_CopiesInput(t *testing.T) {
	box := mailbox.New()
	sub := Subscriber{Loop: "A", Producer: box.Producer()}
	routes := map[event.Kind][]Subscriber{"K": {sub}}
	table := NewTable(routes, []Subscriber{sub})

	// Mutating the caller's map must not affect the table.
	delete(routes, "K")
	if !table.Routes("K", "A") {
		t.Error("table must hold its own copy of the routes")
	}
}
