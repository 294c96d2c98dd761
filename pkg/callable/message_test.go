package callable

import (
	"testing"

	"github.com/jython/jython-sub004/pkg/runtime"
)

func TestArityMessageTable(t *testing.T) {
	cases := []struct {
		min, max, given int
		want            string
	}{
		{0, 0, 1, "f() takes no arguments (1 given)"},
		{1, 1, 0, "f() takes exactly one argument (0 given)"},
		{1, 1, 3, "f() takes exactly one argument (3 given)"},
		{2, 2, 1, "f() takes exactly 2 arguments (1 given)"},
		{4, 4, 5, "f() takes exactly 4 arguments (5 given)"},
		{2, Unbounded, 1, "f() requires at least 2 arguments (1 given)"},
		{0, Unbounded, 0, "f() requires at least 0 arguments (0 given)"},
		{0, 3, 4, "f() takes at most 3 arguments (4 given)"},
		{1, 3, 0, "f() takes 1-3 arguments (0 given)"},
		{2, 5, 6, "f() takes 2-5 arguments (6 given)"},
	}
	for _, tc := range cases {
		got := ArityMessage(Range("f", tc.min, tc.max), tc.given)
		if got != tc.want {
			t.Fatalf("min=%d max=%d given=%d: expected %q, got %q", tc.min, tc.max, tc.given, tc.want, got)
		}
	}
}

func TestUnexpectedCallKinds(t *testing.T) {
	err := UnexpectedCall(Fixed("g", 0), 0, true)
	if !runtime.IsKind(err, runtime.ArityMismatch) {
		t.Fatalf("expected ArityMismatch, got %v", err)
	}
	if err.Error() != "g() takes no keyword arguments" {
		t.Fatalf("unexpected keyword message: %q", err.Error())
	}
	err = UnexpectedCall(Fixed("g", 2), 3, false)
	if err.Error() != "g() takes exactly 2 arguments (3 given)" {
		t.Fatalf("unexpected arity message: %q", err.Error())
	}
}

func TestInfoValidate(t *testing.T) {
	if err := Range("ok", 0, Unbounded).Validate(); err != nil {
		t.Fatalf("expected unbounded info to validate, got %v", err)
	}
	if err := Range("neg", -1, 2).Validate(); err == nil {
		t.Fatalf("expected negative minimum to be rejected")
	}
	if err := Range("inverted", 3, 2).Validate(); err == nil {
		t.Fatalf("expected max < min to be rejected")
	}
	if _, err := NewBuiltin(Range("inverted", 3, 2), Impl{}); err == nil {
		t.Fatalf("expected NewBuiltin to validate arity")
	}
}
