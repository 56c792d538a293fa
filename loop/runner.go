package loop

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/mailbox"
)

// Runner executes one loop's scheduling discipline on its own goroutine.
// It owns the consumer side of the loop's inbound mailbox.
type Runner struct {
	name       string
	kind       Kind
	inbox      *mailbox.Mailbox
	ctx        *Context
	handlers   map[event.Kind]HandlerFunc
	step       StepFunc
	subscribed map[event.Kind]struct{}
	stopping   *atomic.Bool
	log        zerolog.Logger
}

// NewRunner wires a validated loop configuration to its mailbox and
// context. The runtime builder is the only expected caller.
func NewRunner(cfg Config, inbox *mailbox.Mailbox, ctx *Context, stopping *atomic.Bool, log zerolog.Logger) *Runner {
	subscribed := make(map[event.Kind]struct{}, len(cfg.Subscribes))
	for _, k := range cfg.Subscribes {
		subscribed[k] = struct{}{}
	}
	return &Runner{
		name:       cfg.Name,
		kind:       cfg.Kind,
		inbox:      inbox,
		ctx:        ctx,
		handlers:   cfg.Handlers,
		step:       cfg.Step,
		subscribed: subscribed,
		stopping:   stopping,
		log:        log.With().Str("loop", cfg.Name).Logger(),
	}
}

// Name returns the loop's name.
func (r *Runner) Name() string { return r.name }

// Kind returns the loop's scheduling discipline.
func (r *Runner) Kind() Kind { return r.kind }

// Run executes the loop body until shutdown or disconnection. It blocks
// the calling goroutine; the runtime starts one goroutine per runner.
func (r *Runner) Run() {
	defer r.teardown()

	switch r.kind {
	case Active:
		r.runActive()
	case Reactive:
		r.runReactive()
	}
}

// runActive alternates a non-blocking drain with the user step, forever.
// The step paces the loop; the drain never waits.
func (r *Runner) runActive() {
	for !r.stopping.Load() {
		if !r.processPending() {
			return
		}
		if r.stopping.Load() {
			return
		}
		r.step(r.ctx)
	}
}

// runReactive sleeps until events arrive, handles them in order, and goes
// back to sleep.
func (r *Runner) runReactive() {
	for {
		events, err := r.inbox.WaitAndDrain()
		if err != nil {
			if !errors.Is(err, mailbox.ErrDisconnected) {
				r.log.Error().Err(err).Msg("mailbox receive failed")
			}
			return
		}
		for _, ev := range events {
			if !r.deliver(ev) {
				return
			}
		}
	}
}

// processPending drains the inbox without blocking. It returns false when
// the loop must terminate (exit observed or mailbox disconnected).
func (r *Runner) processPending() bool {
	for {
		ev, err := r.inbox.TryReceive()
		switch {
		case err == nil:
			if !r.deliver(ev) {
				return false
			}
		case errors.Is(err, mailbox.ErrEmpty):
			return true
		default:
			return false
		}
	}
}

// deliver invokes the handler for one event. It returns false when the
// event is the shutdown signal. A kind outside the subscription set means
// the routing table and the declarations disagree; that cannot happen in a
// correct build, so it aborts rather than being tolerated.
func (r *Runner) deliver(ev event.Event) bool {
	if ev.IsExit() {
		r.stopping.Store(true)
		return false
	}
	if _, ok := r.subscribed[ev.Kind]; !ok {
		panic(fmt.Sprintf("loop %q received unsubscribed event kind %q", r.name, ev.Kind))
	}
	r.handlers[ev.Kind](r.ctx, ev)
	return true
}

// teardown marks the loop stopped, closes its mailbox so late fan-outs are
// dropped instead of accumulating, and releases its publisher handle on
// the dispatcher so producer accounting stays exact.
func (r *Runner) teardown() {
	r.stopping.Store(true)
	r.inbox.Close()
	r.ctx.out.Close()
	r.log.Debug().Msg("loop stopped")
}
