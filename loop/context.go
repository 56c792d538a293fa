package loop

import (
	"fmt"
	"sync/atomic"

	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/mailbox"
)

// Context is a loop's outbound surface, handed to every handler and step
// invocation. It is owned by the loop's goroutine and must not be retained
// past the loop's lifetime.
type Context struct {
	name     string
	out      *mailbox.Producer
	allowed  map[event.Kind]struct{}
	stopping *atomic.Bool
}

// NewContext builds a context publishing through out, restricted to the
// declared publish set. It is exported for the runtime builder; user code
// receives contexts, it does not create them.
func NewContext(name string, out *mailbox.Producer, publishes []event.Kind, stopping *atomic.Bool) *Context {
	allowed := make(map[event.Kind]struct{}, len(publishes))
	for _, k := range publishes {
		allowed[k] = struct{}{}
	}
	return &Context{
		name:     name,
		out:      out,
		allowed:  allowed,
		stopping: stopping,
	}
}

// Name returns the owning loop's name.
func (c *Context) Name() string {
	return c.name
}

// Publish forwards an event of the given kind to the dispatcher. It never
// blocks; if the dispatcher has already shut down the event is dropped.
//
// Publishing a kind outside the loop's declared publish set is a
// programming-model violation and panics.
func (c *Context) Publish(kind event.Kind, payload any) {
	if _, ok := c.allowed[kind]; !ok {
		panic(fmt.Sprintf("loop %q published undeclared event kind %q", c.name, kind))
	}
	c.out.Send(event.New(kind, payload, c.name))
}

// RequestExit triggers global shutdown: the dispatcher stops dispatching
// and every loop unwinds. Safe to call from any handler or step.
func (c *Context) RequestExit() {
	c.out.Send(event.New(event.KindExit, nil, c.name))
}

// Stopping reports whether shutdown has been requested. Long-running steps
// should poll this between units of work.
func (c *Context) Stopping() bool {
	return c.stopping.Load()
}
