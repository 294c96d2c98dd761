package callable

import (
	"fmt"

	"github.com/jython/jython-sub004/pkg/runtime"
)

// Unbound is a method reached through its owning type. The first
// positional argument is the receiver; it is validated before being stripped
// and bound.
type Unbound struct {
	method  Callable
	owner   string
	accepts func(runtime.Value) bool
}

// NewUnbound wraps method. accepts reports whether a receiver belongs to
// the owning type (or a subtype).
func NewUnbound(method Callable, owner string, accepts func(runtime.Value) bool) *Unbound {
	return &Unbound{method: method, owner: owner, accepts: accepts}
}

func (u *Unbound) Kind() runtime.Kind { return runtime.KindFunction }

func (u *Unbound) TypeName() string { return "method_descriptor" }

func (u *Unbound) String() string {
	return fmt.Sprintf("<method '%s' of '%s' objects>", u.method.Info().Name, u.owner)
}

// Info counts the receiver as a positional argument.
func (u *Unbound) Info() Info {
	inner := u.method.Info()
	info := Info{Name: inner.Name, MinArgs: inner.MinArgs + 1, MaxArgs: inner.MaxArgs}
	if inner.MaxArgs != Unbounded {
		info.MaxArgs = inner.MaxArgs + 1
	}
	return info
}

func (u *Unbound) Self() runtime.Value { return nil }

func (u *Unbound) Bind(self runtime.Value) Callable {
	return u.method.Bind(self)
}

// Method returns the wrapped callable.
func (u *Unbound) Method() Callable { return u.method }

func (u *Unbound) Call(args []runtime.Value, kw []Keyword) (runtime.Value, error) {
	name := u.method.Info().Name
	if len(args) == 0 {
		return nil, runtime.Errorf(runtime.ArityMismatch, "descriptor '%s' of '%s' object needs an argument", name, u.owner)
	}
	self := args[0]
	if u.accepts != nil && !u.accepts(self) {
		return nil, runtime.Errorf(runtime.WrongReceiverType,
			"descriptor '%s' requires a '%s' object but received a '%s'", name, u.owner, runtime.TypeName(self))
	}
	return u.method.Bind(self).Call(args[1:], kw)
}
