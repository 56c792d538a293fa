// Package dispatch implements the hub every published event flows through.
//
// The dispatcher owns one inbound mailbox fed by every loop's publish
// calls, which serializes all publishes system-wide into a single total
// order. For each received event it consults an immutable routing table
// (event kind to subscriber mailboxes, built once from the declared
// subscriptions) and enqueues a copy of the event into every subscriber's
// mailbox. Fan-out preserves the inbound order per subscriber: if A is
// published before B and both route to loop X, X's mailbox holds A before B.
//
// Shutdown is cooperative. On the reserved exit kind the dispatcher fans
// the signal to every loop, stops dispatching, and returns; it never exits
// the process from library code. An inbound disconnect without an exit
// signal should not happen in normal operation and is reported as
// ErrInboundDisconnected rather than deadlocking.
package dispatch
