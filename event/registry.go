package event

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// FieldType is the declared type of one schema field.
type FieldType int

const (
	// FieldString is a UTF-8 string field.
	FieldString FieldType = iota
	// FieldInt is a signed integer field.
	FieldInt
	// FieldFloat is a floating-point field.
	FieldFloat
	// FieldBool is a boolean field.
	FieldBool
)

// String returns the configuration-file spelling of the field type.
func (t FieldType) String() string {
	switch t {
	case FieldString:
		return "string"
	case FieldInt:
		return "int"
	case FieldFloat:
		return "float"
	case FieldBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParseFieldType parses a configuration-file type name.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(s) {
	case "string", "str":
		return FieldString, nil
	case "int", "integer":
		return FieldInt, nil
	case "float", "number":
		return FieldFloat, nil
	case "bool", "boolean":
		return FieldBool, nil
	default:
		return 0, fmt.Errorf("unknown field type %q", s)
	}
}

// Schema declares the named, typed fields of one event kind.
// A nil Schema means the kind carries an opaque Go payload and is not
// validated or bridged into scripts field-by-field.
type Schema map[string]FieldType

// Registry holds the closed set of event kinds.
//
// Kinds are registered during configuration and the registry is frozen by
// the runtime builder before any goroutine starts. After the freeze all
// methods are read-only and safe for unsynchronized concurrent use.
type Registry struct {
	mu     sync.Mutex
	frozen bool
	kinds  map[Kind]Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[Kind]Schema)}
}

// Register adds a kind with an optional schema.
// It fails on an empty or reserved name, a duplicate, or a frozen registry.
func (r *Registry) Register(name Kind, schema Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("register %q: %w", name, ErrRegistryFrozen)
	}
	if name == "" {
		return ErrKindEmpty
	}
	if strings.HasPrefix(string(name), reservedPrefix) {
		return fmt.Errorf("register %q: %w", name, ErrKindReserved)
	}
	if _, ok := r.kinds[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrKindExists)
	}
	r.kinds[name] = schema
	return nil
}

// Freeze closes the kind set. Freezing twice is a no-op.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

// Contains reports whether the kind is registered.
// The reserved exit kind is not considered registered.
func (r *Registry) Contains(name Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.kinds[name]
	return ok
}

// Schema returns the schema declared for the kind, or an error if the kind
// is unknown. A registered kind may have a nil schema.
func (r *Registry) Schema(name Kind) (Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	schema, ok := r.kinds[name]
	if !ok {
		return nil, fmt.Errorf("schema for %q: %w", name, ErrKindUnknown)
	}
	return schema, nil
}

// Kinds returns all registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks a field-map payload against the kind's schema.
// Kinds with a nil schema accept any payload.
func (r *Registry) Validate(ev Event) error {
	schema, err := r.Schema(ev.Kind)
	if err != nil {
		return err
	}
	if schema == nil {
		return nil
	}

	fields := ev.Fields()
	for name, ft := range schema {
		value, ok := fields[name]
		if !ok {
			return fmt.Errorf("%q field %q: %w", ev.Kind, name, ErrFieldMissing)
		}
		if !matchesFieldType(value, ft) {
			return fmt.Errorf("%q field %q (want %s): %w", ev.Kind, name, ft, ErrFieldType)
		}
	}
	return nil
}

// matchesFieldType checks one payload value against its declared type.
func matchesFieldType(v any, ft FieldType) bool {
	switch ft {
	case FieldString:
		_, ok := v.(string)
		return ok
	case FieldInt:
		switch v.(type) {
		case int, int32, int64:
			return true
		}
		return false
	case FieldFloat:
		switch v.(type) {
		case float32, float64:
			return true
		}
		return false
	case FieldBool:
		_, ok := v.(bool)
		return ok
	default:
		return false
	}
}
