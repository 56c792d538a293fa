// Package loop defines the two loop disciplines and the contracts user
// code plugs into them.
//
// A loop is a named goroutine with private state, one inbound mailbox, and
// an outbound handle to the dispatcher. Active loops alternate a
// non-blocking drain of their mailbox with a user-supplied Step function,
// forever; the step paces the loop and may itself sleep or block. Reactive
// loops do nothing until an event arrives, drain, invoke handlers in
// arrival order, and go back to sleep.
//
// Handlers and steps receive a Context, the loop's outbound surface:
// Publish forwards an event to the dispatcher, RequestExit triggers global
// shutdown. Loop state is whatever the handlers close over; because a
// loop's handlers and step only ever run on that loop's own goroutine, the
// state needs no locking.
//
// Receiving a kind outside the loop's declared subscription set is a fatal
// invariant violation and panics: the routing table and the declarations
// are built from the same configuration, so the branch is unreachable
// unless the wiring itself is broken.
package loop
