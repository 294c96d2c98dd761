package callable

import (
	"strings"
	"testing"

	"github.com/jython/jython-sub004/pkg/runtime"
)

func TestBuiltinFixedArityDispatch(t *testing.T) {
	var hits []string
	b := MustBuiltin(Range("pick", 0, 4), Impl{
		Fn0: func(runtime.Value) (runtime.Value, error) { hits = append(hits, "0"); return runtime.Int(0), nil },
		Fn1: func(_, a runtime.Value) (runtime.Value, error) { hits = append(hits, "1"); return a, nil },
		Fn2: func(_, a, b runtime.Value) (runtime.Value, error) { hits = append(hits, "2"); return b, nil },
		Fn3: func(_, a, b, c runtime.Value) (runtime.Value, error) { hits = append(hits, "3"); return c, nil },
		Fn4: func(_, a, b, c, d runtime.Value) (runtime.Value, error) { hits = append(hits, "4"); return d, nil },
	})
	for n := 0; n <= 4; n++ {
		args := make([]runtime.Value, n)
		for idx := range args {
			args[idx] = runtime.Int(int64(idx + 1))
		}
		got, err := b.Call(args, nil)
		if err != nil {
			t.Fatalf("call with %d args: %v", n, err)
		}
		want := runtime.Int(int64(n))
		if got != want {
			t.Fatalf("call with %d args: expected %v, got %v", n, want, got)
		}
	}
	if strings.Join(hits, "") != "01234" {
		t.Fatalf("expected each fixed entry point once, got %v", hits)
	}
}

func TestBuiltinGenericPathFails(t *testing.T) {
	b := MustBuiltin(Range("pair", 0, 2), Impl{
		Fn0: func(runtime.Value) (runtime.Value, error) { return runtime.None, nil },
		Fn2: func(_, a, b runtime.Value) (runtime.Value, error) { return runtime.None, nil },
	})
	// within bounds but without an entry point
	_, err := b.Call([]runtime.Value{runtime.Int(1)}, nil)
	if !runtime.IsKind(err, runtime.ArityMismatch) {
		t.Fatalf("expected ArityMismatch, got %v", err)
	}
	if err.Error() != "pair() takes at most 2 arguments (1 given)" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	_, err = b.Call(make([]runtime.Value, 5), nil)
	if err == nil || err.Error() != "pair() takes at most 2 arguments (5 given)" {
		t.Fatalf("expected five-arg call to fail, got %v", err)
	}
}

func TestBuiltinVariadicEntryPoint(t *testing.T) {
	sum := MustBuiltin(Range("sum", 1, Unbounded), Impl{
		FnN: func(_ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			var total int64
			for _, a := range args {
				total += a.(runtime.IntValue).Val
			}
			return runtime.Int(total), nil
		},
	})
	args := []runtime.Value{runtime.Int(1), runtime.Int(2), runtime.Int(3), runtime.Int(4), runtime.Int(5), runtime.Int(6)}
	got, err := sum.Call(args, nil)
	if err != nil {
		t.Fatalf("variadic call failed: %v", err)
	}
	if got != runtime.Int(21) {
		t.Fatalf("expected 21, got %v", got)
	}
	got, err = sum.Call(args[:2], nil)
	if err != nil || got != runtime.Int(3) {
		t.Fatalf("expected two-arg call through FnN to give 3, got %v (%v)", got, err)
	}
	_, err = sum.Call(nil, nil)
	if err == nil || err.Error() != "sum() requires at least 1 arguments (0 given)" {
		t.Fatalf("expected at-least failure, got %v", err)
	}
}

func TestBuiltinKeywords(t *testing.T) {
	plain := MustBuiltin(Fixed("plain", 1), Impl{
		Fn1: func(_, a runtime.Value) (runtime.Value, error) { return a, nil },
	})
	_, err := plain.Call(nil, []Keyword{{Name: "x", Value: runtime.Int(1)}})
	if err == nil || err.Error() != "plain() takes no keyword arguments" {
		t.Fatalf("expected keyword rejection, got %v", err)
	}

	info := Range("kw", 1, 2)
	withKw := MustBuiltin(info, Impl{
		FnKw: func(_ runtime.Value, args []runtime.Value, kw []Keyword) (runtime.Value, error) {
			bound, err := ParseArgs(info, []string{"a", "b"}, args, kw)
			if err != nil {
				return nil, err
			}
			if bound[1] == nil {
				return bound[0], nil
			}
			return runtime.Tuple(bound...), nil
		},
	})
	got, err := withKw.Call([]runtime.Value{runtime.Int(1)}, []Keyword{{Name: "b", Value: runtime.Int(2)}})
	if err != nil {
		t.Fatalf("keyword call failed: %v", err)
	}
	if runtime.Repr(got) != "(1, 2)" {
		t.Fatalf("expected (1, 2), got %s", runtime.Repr(got))
	}
	_, err = withKw.Call([]runtime.Value{runtime.Int(1)}, []Keyword{{Name: "a", Value: runtime.Int(2)}})
	if !runtime.IsKind(err, runtime.TypeError) {
		t.Fatalf("expected duplicate keyword TypeError, got %v", err)
	}
	_, err = withKw.Call(nil, []Keyword{{Name: "zzz", Value: runtime.Int(2)}})
	if !runtime.IsKind(err, runtime.TypeError) {
		t.Fatalf("expected unknown keyword TypeError, got %v", err)
	}
	_, err = withKw.Call(nil, []Keyword{{Name: "b", Value: runtime.Int(2)}})
	if !runtime.IsKind(err, runtime.ArityMismatch) {
		t.Fatalf("expected missing argument ArityMismatch, got %v", err)
	}
}

func TestParseArgsKeepsExtraPositionals(t *testing.T) {
	info := Range("gather", 1, Unbounded)
	args := []runtime.Value{runtime.Int(1), runtime.Int(2), runtime.Int(3), runtime.Int(4)}
	bound, err := ParseArgs(info, []string{"first", "second"}, args, nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if runtime.Repr(runtime.Tuple(bound...)) != "(1, 2, 3, 4)" {
		t.Fatalf("expected every positional kept, got %s", runtime.Repr(runtime.Tuple(bound...)))
	}
	bound, err = ParseArgs(info, []string{"first", "second"}, args[:1], []Keyword{{Name: "second", Value: runtime.Int(9)}})
	if err != nil || len(bound) != 2 || bound[1] != runtime.Int(9) {
		t.Fatalf("expected keyword in the named slot, got %v (%v)", bound, err)
	}
	_, err = ParseArgs(info, []string{"first", "second"}, args, []Keyword{{Name: "second", Value: runtime.Int(9)}})
	if !runtime.IsKind(err, runtime.TypeError) {
		t.Fatalf("expected duplicate keyword TypeError, got %v", err)
	}
}

func TestBindAndUnbound(t *testing.T) {
	echoSelf := MustBuiltin(Fixed("who", 0), Impl{
		Fn0: func(self runtime.Value) (runtime.Value, error) { return self, nil },
	})
	if echoSelf.Kind() != runtime.KindFunction {
		t.Fatalf("expected unbound builtin kind, got %v", echoSelf.Kind())
	}
	bound := echoSelf.Bind(runtime.Str("me"))
	if bound.Kind() != runtime.KindBoundMethod {
		t.Fatalf("expected bound kind, got %v", bound.Kind())
	}
	got, err := Call0(bound)
	if err != nil || got != runtime.Str("me") {
		t.Fatalf("expected bound receiver, got %v (%v)", got, err)
	}

	onlyStrings := func(v runtime.Value) bool { _, ok := v.(runtime.StringValue); return ok }
	unbound := NewUnbound(echoSelf, "str", onlyStrings)
	if info := unbound.Info(); info.MinArgs != 1 || info.MaxArgs != 1 {
		t.Fatalf("expected receiver counted in arity, got %+v", info)
	}
	got, err = Call1(unbound, runtime.Str("x"))
	if err != nil || got != runtime.Str("x") {
		t.Fatalf("expected unbound call to bind receiver, got %v (%v)", got, err)
	}
	_, err = Call1(unbound, runtime.Int(3))
	if !runtime.IsKind(err, runtime.WrongReceiverType) {
		t.Fatalf("expected WrongReceiverType, got %v", err)
	}
	_, err = Call0(unbound)
	if !runtime.IsKind(err, runtime.ArityMismatch) {
		t.Fatalf("expected missing receiver ArityMismatch, got %v", err)
	}
	_, err = Call2(unbound, runtime.Str("x"), runtime.Int(1))
	if err == nil || err.Error() != "who() takes no arguments (1 given)" {
		t.Fatalf("expected stripped-receiver arity message, got %v", err)
	}
}
