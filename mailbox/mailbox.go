package mailbox

import (
	"sync"

	"github.com/dshills/loopkit/event"
)

// Mailbox is an unbounded FIFO queue of events with one consumer and any
// number of producers. The zero value is not usable; call New.
type Mailbox struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []event.Event
	producers int
	closed    bool
}

// New creates an empty mailbox with no producers.
func New() *Mailbox {
	m := &Mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Producer returns a new producer handle for this mailbox.
// Each handle must be closed by its owner when it will publish no more.
func (m *Mailbox) Producer() *Producer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.producers++
	return &Producer{m: m}
}

// TryReceive pops the head of the queue without blocking.
// It returns ErrEmpty when nothing is queued and ErrDisconnected when the
// mailbox can never yield another event.
func (m *Mailbox) TryReceive() (event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) > 0 {
		return m.pop(), nil
	}
	if m.closed || m.producers == 0 {
		return event.Event{}, ErrDisconnected
	}
	return event.Event{}, ErrEmpty
}

// WaitAndDrain blocks until at least one event is queued, then pops and
// returns every queued event in FIFO order. It returns ErrDisconnected
// when the queue is empty and no producer remains, or the consumer side
// has been closed.
func (m *Mailbox) WaitAndDrain() ([]event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.queue) == 0 {
		if m.closed || m.producers == 0 {
			return nil, ErrDisconnected
		}
		m.cond.Wait()
	}

	drained := m.queue
	m.queue = nil
	return drained, nil
}

// Close tears down the consumer side: queued events are discarded, any
// blocked waiter is woken, and subsequent sends are dropped. Close is
// idempotent and may be called from a goroutine other than the consumer
// to force a blocked consumer awake.
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.queue = nil
	m.mu.Unlock()
	m.cond.Broadcast()
}

// Len returns the number of queued events.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// pop removes and returns the head. Caller holds the lock.
func (m *Mailbox) pop() event.Event {
	ev := m.queue[0]
	m.queue[0] = event.Event{}
	m.queue = m.queue[1:]
	if len(m.queue) == 0 {
		m.queue = nil
	}
	return ev
}

// Producer is one producer's handle onto a mailbox. A Producer may be used
// from a single goroutine; distinct producers may send concurrently.
type Producer struct {
	m      *Mailbox
	closed bool
	mu     sync.Mutex
}

// Send appends the event to the mailbox and wakes the consumer.
// It never blocks. Sending to a closed mailbox, or through a closed
// handle, is a silent no-op.
func (p *Producer) Send(ev event.Event) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	m := p.m
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.queue = append(m.queue, ev)
	m.mu.Unlock()
	m.cond.Signal()
}

// Close releases the handle. Closing the last handle of a mailbox with an
// empty queue wakes a blocked consumer with ErrDisconnected. Close is
// idempotent.
func (p *Producer) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	m := p.m
	m.mu.Lock()
	m.producers--
	last := m.producers == 0
	m.mu.Unlock()
	if last {
		m.cond.Broadcast()
	}
}
