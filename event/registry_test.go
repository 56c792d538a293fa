package event

import (
	"errors"
	"testing"
)

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		wantErr error
	}{
		{name: "plain kind", kind: "LineReceived"},
		{name: "empty name", kind: "", wantErr: ErrKindEmpty},
		{name: "reserved prefix", kind: "loopkit.internal", wantErr: ErrKindReserved},
		{name: "reserved exit kind", kind: KindExit, wantErr: ErrKindReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.Register(tt.kind, nil)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Register(%q) failed: %v", tt.kind, err)
				}
				if !reg.Contains(tt.kind) {
					t.Errorf("expected registry to contain %q", tt.kind)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register(%q): expected %v, got %v", tt.kind, tt.wantErr, err)
			}
		})
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("A", nil); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := reg.Register("A", nil); !errors.Is(err, ErrKindExists) {
		t.Errorf("expected ErrKindExists, got %v", err)
	}
}

func TestRegistry_Freeze(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("A", nil); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	reg.Freeze()
	if !reg.Frozen() {
		t.Error("expected registry to report frozen")
	}
	if err := reg.Register("B", nil); !errors.Is(err, ErrRegistryFrozen) {
		t.Errorf("expected ErrRegistryFrozen, got %v", err)
	}
	if !reg.Contains("A") {
		t.Error("freeze must not drop existing kinds")
	}
}

func TestRegistry_Kinds(t *testing.T) {
	reg := NewRegistry()
	for _, k := range []Kind{"c", "a", "b"} {
		if err := reg.Register(k, nil); err != nil {
			t.Fatalf("Register(%q) failed: %v", k, err)
		}
	}

	kinds := reg.Kinds()
	want := []Kind{"a", "b", "c"}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d kinds, got %d", len(want), len(kinds))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d]: expected %q, got %q", i, want[i], kinds[i])
		}
	}
}

func TestRegistry_Validate(t *testing.T) {
	reg := NewRegistry()
	schema := Schema{"value1": FieldInt, "value2": FieldInt, "label": FieldString}
	if err := reg.Register("Counters", schema); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := reg.Register("Opaque", nil); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	tests := []struct {
		name    string
		ev      Event
		wantErr error
	}{
		{
			name: "valid payload",
			ev:   Event{Kind: "Counters", Payload: map[string]any{"value1": 1, "value2": int64(2), "label": "x"}},
		},
		{
			name:    "missing field",
			ev:      Event{Kind: "Counters", Payload: map[string]any{"value1": 1, "label": "x"}},
			wantErr: ErrFieldMissing,
		},
		{
			name:    "wrong type",
			ev:      Event{Kind: "Counters", Payload: map[string]any{"value1": "nope", "value2": 2, "label": "x"}},
			wantErr: ErrFieldType,
		},
		{
			name:    "unknown kind",
			ev:      Event{Kind: "Nope", Payload: nil},
			wantErr: ErrKindUnknown,
		},
		{
			name: "nil schema accepts anything",
			ev:   Event{Kind: "Opaque", Payload: struct{ X int }{X: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Validate(tt.ev)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseFieldType(t *testing.T) {
	tests := []struct {
		in      string
		want    FieldType
		wantErr bool
	}{
		{in: "string", want: FieldString},
		{in: "str", want: FieldString},
		{in: "int", want: FieldInt},
		{in: "Integer", want: FieldInt},
		{in: "float", want: FieldFloat},
		{in: "number", want: FieldFloat},
		{in: "bool", want: FieldBool},
		{in: "boolean", want: FieldBool},
		{in: "blob", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFieldType(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseFieldType(%q): expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFieldType(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFieldType(%q): expected %v, got %v", tt.in, tt.want, got)
			}
		})
	}
}
