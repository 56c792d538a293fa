package dispatch

import (
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/mailbox"
)

// Dispatcher receives every published event, logs it, and fans it out to
// the subscribed loops' mailboxes.
type Dispatcher struct {
	inbox   *mailbox.Mailbox
	table   *Table
	log     zerolog.Logger
	running atomic.Bool

	// Stats
	published atomic.Uint64
	delivered atomic.Uint64
}

// Stats is a snapshot of dispatcher counters.
type Stats struct {
	// Published is the number of events received on the inbound mailbox,
	// excluding the shutdown signal.
	Published uint64

	// Delivered is the number of per-subscriber deliveries fanned out.
	Delivered uint64
}

// New creates a dispatcher draining inbox and routing through table.
func New(inbox *mailbox.Mailbox, table *Table, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		inbox: inbox,
		table: table,
		log:   log.With().Str("component", "dispatcher").Logger(),
	}
}

// Run executes the dispatch loop on the calling goroutine. It returns nil
// after an exit signal has been fanned out, or ErrInboundDisconnected if
// every publisher handle vanished first. Run may be called once.
func (d *Dispatcher) Run() error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer d.running.Store(false)

	for {
		events, err := d.inbox.WaitAndDrain()
		if err != nil {
			if errors.Is(err, mailbox.ErrDisconnected) {
				d.log.Error().Msg("all publishers gone without exit signal")
				return ErrInboundDisconnected
			}
			return err
		}

		for _, ev := range events {
			if ev.IsExit() {
				d.log.Info().Str("source", ev.Meta.Source).Msg("exit requested, shutting down")
				d.shutdown()
				return nil
			}
			d.published.Add(1)
			d.log.Debug().
				Str("kind", string(ev.Kind)).
				Str("source", ev.Meta.Source).
				Str("id", ev.Meta.ID).
				Msg("dispatch")

			for _, sub := range d.table.Subscribers(ev.Kind) {
				sub.Producer.Send(ev.Clone())
				d.delivered.Add(1)
			}
		}
	}
}

// shutdown fans the exit signal to every loop mailbox and tears down the
// inbound side so straggler publishes are dropped.
func (d *Dispatcher) shutdown() {
	for _, sub := range d.table.all {
		sub.Producer.Send(event.New(event.KindExit, nil, "dispatcher"))
	}
	d.inbox.Close()
}

// Stats returns a snapshot of the dispatch counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Published: d.published.Load(),
		Delivered: d.delivered.Load(),
	}
}
