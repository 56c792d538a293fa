package event

import "errors"

// Sentinel errors for the event registry.
var (
	// ErrRegistryFrozen is returned when registering a kind after Freeze.
	ErrRegistryFrozen = errors.New("event registry is frozen")

	// ErrKindExists is returned when a kind name is registered twice.
	ErrKindExists = errors.New("event kind already registered")

	// ErrKindReserved is returned when a kind name uses the reserved prefix.
	ErrKindReserved = errors.New("event kind name is reserved")

	// ErrKindEmpty is returned when a kind name is empty.
	ErrKindEmpty = errors.New("event kind name cannot be empty")

	// ErrKindUnknown is returned when looking up a kind that was never registered.
	ErrKindUnknown = errors.New("unknown event kind")

	// ErrFieldMissing is returned when a payload lacks a field declared in the schema.
	ErrFieldMissing = errors.New("payload is missing a schema field")

	// ErrFieldType is returned when a payload field does not match its declared type.
	ErrFieldType = errors.New("payload field has wrong type")
)
