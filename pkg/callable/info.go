// Package callable dispatches calls to built-in (native) callables. Each
// callable declares its positional arity; calls with zero through four
// arguments go straight to fixed-arity entry points and everything else
// takes the generic path, which builds the arity failure message.
package callable

import (
	"fmt"

	"github.com/jython/jython-sub004/pkg/runtime"
)

// Unbounded marks a callable without an upper positional limit.
const Unbounded = -1

// Info is the arity metadata shared by every callable.
type Info struct {
	Name    string
	MinArgs int
	MaxArgs int
}

// Fixed builds metadata for a callable taking exactly n arguments.
func Fixed(name string, n int) Info {
	return Info{Name: name, MinArgs: n, MaxArgs: n}
}

// Range builds metadata for min..max arguments; pass Unbounded for max to
// accept any count above min.
func Range(name string, min, max int) Info {
	return Info{Name: name, MinArgs: min, MaxArgs: max}
}

// Validate enforces 0 <= MinArgs <= MaxArgs (unless MaxArgs is Unbounded).
func (i Info) Validate() error {
	if i.MinArgs < 0 {
		return fmt.Errorf("callable: %s: negative minimum arity %d", i.Name, i.MinArgs)
	}
	if i.MaxArgs != Unbounded && i.MaxArgs < i.MinArgs {
		return fmt.Errorf("callable: %s: maximum arity %d below minimum %d", i.Name, i.MaxArgs, i.MinArgs)
	}
	return nil
}

// Accepts reports whether n positional arguments fall inside the declared
// bounds.
func (i Info) Accepts(n int) bool {
	if n < i.MinArgs {
		return false
	}
	return i.MaxArgs == Unbounded || n <= i.MaxArgs
}

// Keyword is a single name=value argument. Keyword lists keep call-site
// order.
type Keyword struct {
	Name  string
	Value runtime.Value
}

// Callable is anything the runtime can invoke.
type Callable interface {
	runtime.Value
	Info() Info
	// Call invokes the callable with positional args and keywords.
	Call(args []runtime.Value, kw []Keyword) (runtime.Value, error)
	// Bind returns a callable whose receiver is self. Binding an already
	// bound callable rebinds it.
	Bind(self runtime.Value) Callable
	// Self is the bound receiver, nil when unbound.
	Self() runtime.Value
}

// Call0 is shorthand for a positional call with no arguments.
func Call0(c Callable) (runtime.Value, error) {
	return c.Call(nil, nil)
}

// Call1 and Call2 mirror Call0 for one and two arguments.
func Call1(c Callable, a runtime.Value) (runtime.Value, error) {
	return c.Call([]runtime.Value{a}, nil)
}

func Call2(c Callable, a, b runtime.Value) (runtime.Value, error) {
	return c.Call([]runtime.Value{a, b}, nil)
}
