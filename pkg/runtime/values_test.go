package runtime

import (
	"errors"
	"fmt"
	"testing"
)

func TestReprFormatting(t *testing.T) {
	cases := []struct {
		val  Value
		want string
	}{
		{None, "None"},
		{nil, "None"},
		{Bool(true), "True"},
		{Int(-3), "-3"},
		{Float(5), "5.0"},
		{Float(2.5), "2.5"},
		{Str("hi"), `"hi"`},
		{Tuple(Int(1)), "(1,)"},
		{Tuple(Int(1), Str("a")), `(1, "a")`},
		{NewList(Int(1), Int(2)), "[1, 2]"},
		{&HostHandleValue{HandleType: "socket"}, "<socket>"},
	}
	for _, tc := range cases {
		if got := Repr(tc.val); got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}
}

func TestSetKeepsInsertionSlots(t *testing.T) {
	s := NewSet()
	for _, v := range []Value{Int(1), Str("a"), Float(1), Int(2)} {
		if _, err := s.Add(v); err != nil {
			t.Fatalf("add %v: %v", v, err)
		}
	}
	// 1.0 hashes like 1
	if s.Len() != 3 || s.SlotCount() != 3 {
		t.Fatalf("expected 3 members, got len=%d slots=%d", s.Len(), s.SlotCount())
	}
	if ok, _ := s.Discard(Str("a")); !ok {
		t.Fatalf("expected discard to remove \"a\"")
	}
	if v, ok := s.Slot(1); !ok || v != nil {
		t.Fatalf("expected discarded slot to read nil, got %v", v)
	}
	if s.Contains(Str("a")) || !s.Contains(Int(2)) {
		t.Fatalf("unexpected membership after discard")
	}
	if Repr(s) != "{1, 2}" {
		t.Fatalf("unexpected repr %s", Repr(s))
	}
	if _, err := s.Add(NewList()); !IsKind(err, TypeError) {
		t.Fatalf("expected unhashable list to fail, got %v", err)
	}
}

func TestTupleHashing(t *testing.T) {
	a, err := HashKey(Tuple(Int(1), Str("x")))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, _ := HashKey(Tuple(Int(1), Str("x")))
	if a != b {
		t.Fatalf("expected equal tuples to hash alike")
	}
	if _, err := HashKey(Tuple(NewList())); err == nil {
		t.Fatalf("expected tuple containing a list to be unhashable")
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PropertyAccessError, cause, "reading 'x'")
	wrapped := fmt.Errorf("outer: %w", err)
	if !IsKind(wrapped, PropertyAccessError) {
		t.Fatalf("expected kind through fmt wrapping")
	}
	if !errors.Is(wrapped, cause) {
		t.Fatalf("expected cause to stay reachable")
	}
	if !errors.Is(wrapped, Signal(PropertyAccessError)) {
		t.Fatalf("expected message-less signal to match any message")
	}
	if errors.Is(wrapped, Signal(StopIteration)) {
		t.Fatalf("expected different kinds not to match")
	}
	if Signal(GeneratorExit).Error() != "GeneratorExit" {
		t.Fatalf("expected kind as message for signals")
	}
	if got := NoAttribute(Int(1), "real").Error(); got != "'int' object has no attribute 'real'" {
		t.Fatalf("unexpected message %q", got)
	}
}
