package runtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/loopkit/dispatch"
	"github.com/dshills/loopkit/event"
	"github.com/dshills/loopkit/loop"
	"github.com/dshills/loopkit/mailbox"
)

// Runtime is a wired loopkit system. Obtain one from Builder.Build.
type Runtime struct {
	registry   *event.Registry
	dispatcher *dispatch.Dispatcher
	table      *dispatch.Table
	runners    []*loop.Runner
	control    *mailbox.Producer
	log        zerolog.Logger

	started atomic.Bool
	wg      sync.WaitGroup
}

// Registry returns the frozen event registry.
func (rt *Runtime) Registry() *event.Registry {
	return rt.registry
}

// Table returns the immutable routing table, for inspection and tests.
func (rt *Runtime) Table() *dispatch.Table {
	return rt.table
}

// Start spawns one goroutine per loop. The dispatcher is not started;
// follow with Run or RunAsync.
func (rt *Runtime) Start() error {
	if !rt.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	for _, r := range rt.runners {
		rt.wg.Add(1)
		go func(r *loop.Runner) {
			defer rt.wg.Done()
			r.Run()
		}(r)
	}
	rt.log.Info().Int("loops", len(rt.runners)).Msg("runtime started")
	return nil
}

// Run executes the dispatcher on the calling goroutine, the normal "main
// thread hosts the dispatcher" mode. It blocks until an exit signal has
// been fanned out, returning nil, or until the inbound side disconnects
// unexpectedly, returning the dispatcher's error.
func (rt *Runtime) Run() error {
	if !rt.started.Load() {
		return ErrNotStarted
	}
	return rt.dispatcher.Run()
}

// RunAsync executes the dispatcher on its own goroutine and returns a
// channel that yields Run's result once.
func (rt *Runtime) RunAsync() (<-chan error, error) {
	if !rt.started.Load() {
		return nil, ErrNotStarted
	}
	done := make(chan error, 1)
	go func() {
		done <- rt.dispatcher.Run()
	}()
	return done, nil
}

// RequestExit triggers global shutdown from outside any loop, e.g. from a
// signal handler. Safe to call at any time after Build, any number of
// times.
func (rt *Runtime) RequestExit() {
	rt.control.Send(event.New(event.KindExit, nil, "runtime"))
}

// Wait blocks until every loop goroutine has returned or the context
// expires. An active loop blocked inside its own step cannot be woken by
// the runtime; a caller that must exit promptly bounds the wait and then
// terminates the process, which is the coordinated version of the global
// shutdown the exit signal begins.
func (rt *Runtime) Wait(ctx context.Context) error {
	if !rt.started.Load() {
		return ErrNotStarted
	}
	done := make(chan struct{})
	go func() {
		rt.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrWaitTimeout
	}
}

// Stats returns the dispatcher's counters.
func (rt *Runtime) Stats() dispatch.Stats {
	return rt.dispatcher.Stats()
}
