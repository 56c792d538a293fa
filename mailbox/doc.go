// Package mailbox implements the per-loop FIFO event queue.
//
// A Mailbox has exactly one consumer, the goroutine that drains it, and
// any number of producers, each holding a Producer handle. The queue is
// unbounded; Send never blocks. The consumer reads either non-blocking via
// TryReceive (active loops) or blocking via WaitAndDrain (reactive loops
// and the dispatcher).
//
// Disconnection is tracked on both sides. When every producer handle has
// been closed and the queue is empty, the consumer receives ErrDisconnected
// instead of blocking forever. When the consumer closes its side, pending
// events are discarded and further sends become silent no-ops: a vanished
// consumer is assumed to have shut down deliberately, not to be an error.
//
// The implementation is a mutex-guarded slice paired with a condition
// variable. The wait predicate is re-checked under the lock around every
// cond.Wait, so wakeups cannot be lost.
package mailbox
