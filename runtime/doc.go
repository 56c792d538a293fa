// Package runtime builds and runs a loopkit system.
//
// The Builder consumes the static tables (registered event kinds and loop
// configurations), validates them, and wires the runtime: one mailbox per
// loop, one for the dispatcher, a routing table from the declared
// subscriptions, and a context per loop publishing into the dispatcher's
// inbound mailbox.
//
// Every configuration error surfaces synchronously from Build, before any
// goroutine starts: a loop missing a handler for a subscribed kind, an
// active loop without a step, a subscription to an unregistered kind, and
// so on. Once Build succeeds the kind set and routing are immutable.
//
// The normal lifecycle is:
//
//	rt, err := b.Build()
//	...
//	rt.Start()        // one goroutine per loop
//	err = rt.Run()    // dispatcher on the calling goroutine, blocks
//	rt.Wait(ctx)      // join loop goroutines, bounded by ctx
//
// Run returns after an exit signal (see Context.RequestExit) has been
// fanned out, or with an error if the dispatcher's inbound side
// disconnected unexpectedly. Shutdown is global: there is no per-loop
// cancellation.
package runtime
