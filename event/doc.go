// Package event defines the typed event records exchanged between loops.
//
// Event kinds form a closed set: every kind is registered with a Registry
// before the runtime is built, and the registry is frozen once construction
// begins. After the freeze no kind can be added or removed for the lifetime
// of the process, which is what lets the dispatcher's routing table be built
// once and consulted without locking.
//
// An Event is an instance of a kind plus its payload and metadata. Events
// are treated as immutable: the same logical event is delivered to every
// subscriber, each receiving its own shallow copy via Clone. Payloads must
// therefore be values, or pointers to data the producer will not mutate
// after publishing.
//
// One kind is reserved: KindExit. It is created by the runtime to unwind
// loop goroutines on shutdown and is never publishable or subscribable by
// user code.
package event
