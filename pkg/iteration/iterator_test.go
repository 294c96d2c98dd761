package iteration

import (
	"testing"

	"github.com/jython/jython-sub004/pkg/callable"
	"github.com/jython/jython-sub004/pkg/runtime"
)

func ints(vals ...int64) []runtime.Value {
	out := make([]runtime.Value, len(vals))
	for idx, v := range vals {
		out[idx] = runtime.Int(v)
	}
	return out
}

func reprs(vals []runtime.Value) string {
	return runtime.Repr(runtime.NewList(vals...))
}

func TestSequenceIterator(t *testing.T) {
	it := Iterate(runtime.Tuple(ints(1, 2, 3)...))
	got, err := Collect(it)
	if err != nil || reprs(got) != "[1, 2, 3]" {
		t.Fatalf("expected [1, 2, 3], got %s (%v)", reprs(got), err)
	}
	if _, done, err := it.Next(); !done || err != nil {
		t.Fatalf("expected exhausted iterator to stay done")
	}
}

func TestListMutationDetectedAtExhaustion(t *testing.T) {
	list := runtime.NewList(ints(1, 2)...)
	it := Iterate(list)
	v, _, err := it.Next()
	if err != nil || v != runtime.Int(1) {
		t.Fatalf("expected 1, got %v (%v)", v, err)
	}
	list.Append(runtime.Int(3))
	// the walk tolerates the change and sees the new element
	for _, want := range ints(2, 3) {
		v, done, err := it.Next()
		if err != nil || done || v != want {
			t.Fatalf("expected %v mid-walk, got %v done=%v err=%v", want, v, done, err)
		}
	}
	_, done, err := it.Next()
	if !done || !runtime.IsKind(err, runtime.ConcurrentMutation) {
		t.Fatalf("expected ConcurrentMutation at exhaustion, got done=%v err=%v", done, err)
	}
	if _, err := Advance(it); !runtime.IsKind(err, runtime.ConcurrentMutation) {
		t.Fatalf("expected stored cause from Advance, got %v", err)
	}
}

func TestSetIterator(t *testing.T) {
	set := runtime.NewSet()
	for _, v := range ints(1, 2, 3) {
		set.Add(v)
	}
	it := IterateSet(set)
	v, _, _ := it.Next()
	if v != runtime.Int(1) {
		t.Fatalf("expected 1, got %v", v)
	}
	set.Discard(runtime.Int(2))
	set.Add(runtime.Int(4))
	rest, err := Collect(it)
	if reprs(rest) != "[3, 4]" {
		t.Fatalf("expected [3, 4], got %s", reprs(rest))
	}
	if err != nil {
		t.Fatalf("expected same-size mutation to pass, got %v", err)
	}

	grow := IterateSet(set)
	set.Add(runtime.Int(5))
	if _, err := Collect(grow); !runtime.IsKind(err, runtime.ConcurrentMutation) {
		t.Fatalf("expected ConcurrentMutation, got %v", err)
	}
}

func TestStoredCause(t *testing.T) {
	cause := runtime.Errorf(runtime.StopIteration, "source drained at offset 2")
	n := 0
	it := NewFunc("reader", func() (runtime.Value, bool, error) {
		n++
		if n > 2 {
			return nil, false, cause
		}
		return runtime.Int(int64(n)), false, nil
	})
	got, err := Collect(it)
	if err != nil || reprs(got) != "[1, 2]" {
		t.Fatalf("expected [1, 2], got %s (%v)", reprs(got), err)
	}
	if _, err := Advance(it); err != cause {
		t.Fatalf("expected the original stop cause, got %v", err)
	}
	if n != 3 {
		t.Fatalf("expected source not re-entered after exhaustion, got %d calls", n)
	}

	plain := NewFunc("empty", func() (runtime.Value, bool, error) { return nil, true, nil })
	if _, err := Advance(plain); err == cause || !runtime.IsKind(err, runtime.StopIteration) {
		t.Fatalf("expected a fresh StopIteration, got %v", err)
	}
}

func TestChainAndMap(t *testing.T) {
	chain := Chain(Iterate(runtime.Tuple(ints(1, 2)...)), Iterate(runtime.Tuple()), Iterate(runtime.NewList(ints(3)...)))
	got, err := Collect(chain)
	if err != nil || reprs(got) != "[1, 2, 3]" {
		t.Fatalf("expected [1, 2, 3], got %s (%v)", reprs(got), err)
	}

	add := callable.MustBuiltin(callable.Fixed("add", 2), callable.Impl{
		Fn2: func(_, a, b runtime.Value) (runtime.Value, error) {
			return runtime.Int(a.(runtime.IntValue).Val + b.(runtime.IntValue).Val), nil
		},
	})
	mapped := Map(add, Iterate(runtime.Tuple(ints(1, 2, 3)...)), Iterate(runtime.Tuple(ints(10, 20)...)))
	got, err = Collect(mapped)
	if err != nil || reprs(got) != "[11, 22]" {
		t.Fatalf("expected [11, 22], got %s (%v)", reprs(got), err)
	}

	wrong := Map(add, Iterate(runtime.Tuple(ints(1)...)))
	if _, err := Collect(wrong); !runtime.IsKind(err, runtime.ArityMismatch) {
		t.Fatalf("expected ArityMismatch through map, got %v", err)
	}
}

func TestFor(t *testing.T) {
	it, err := For(runtime.Str("ab"))
	if err != nil {
		t.Fatalf("for string: %v", err)
	}
	got, _ := Collect(it)
	if reprs(got) != `["a", "b"]` {
		t.Fatalf("unexpected characters %s", reprs(got))
	}
	gen := Generate(countTo(1, nil), GeneratorOptions{})
	if same, _ := For(gen); same != gen {
		t.Fatalf("expected iterators to be returned as is")
	}
	if _, err := For(runtime.Int(1)); !runtime.IsKind(err, runtime.TypeError) {
		t.Fatalf("expected TypeError, got %v", err)
	}
}
