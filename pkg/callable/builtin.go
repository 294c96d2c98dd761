package callable

import (
	"fmt"

	"github.com/jython/jython-sub004/pkg/runtime"
)

// Fixed-arity entry points. self is the bound receiver, nil for plain
// functions.
type (
	Func0  func(self runtime.Value) (runtime.Value, error)
	Func1  func(self, a runtime.Value) (runtime.Value, error)
	Func2  func(self, a, b runtime.Value) (runtime.Value, error)
	Func3  func(self, a, b, c runtime.Value) (runtime.Value, error)
	Func4  func(self, a, b, c, d runtime.Value) (runtime.Value, error)
	FuncN  func(self runtime.Value, args []runtime.Value) (runtime.Value, error)
	FuncKw func(self runtime.Value, args []runtime.Value, kw []Keyword) (runtime.Value, error)
)

// Impl lists the entry points a builtin provides. Any subset may be set;
// shapes without an entry point fail through the generic path.
type Impl struct {
	Fn0 Func0
	Fn1 Func1
	Fn2 Func2
	Fn3 Func3
	Fn4 Func4
	// FnN serves counts without a fixed entry point, including more than
	// four arguments.
	FnN FuncN
	// FnKw is the only entry point that accepts keywords.
	FnKw FuncKw
}

// Builtin is a native callable. Bound copies share the entry points.
type Builtin struct {
	info Info
	impl *Impl
	self runtime.Value
}

// NewBuiltin validates info and returns an unbound builtin.
func NewBuiltin(info Info, impl Impl) (*Builtin, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return &Builtin{info: info, impl: &impl}, nil
}

// MustBuiltin is NewBuiltin for static tables.
func MustBuiltin(info Info, impl Impl) *Builtin {
	b, err := NewBuiltin(info, impl)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Builtin) Kind() runtime.Kind {
	if b.self != nil {
		return runtime.KindBoundMethod
	}
	return runtime.KindFunction
}

func (b *Builtin) TypeName() string { return "builtin_function_or_method" }

func (b *Builtin) String() string {
	if b.self != nil {
		return fmt.Sprintf("<built-in method %s of %s object>", b.info.Name, runtime.TypeName(b.self))
	}
	return fmt.Sprintf("<built-in function %s>", b.info.Name)
}

func (b *Builtin) Info() Info { return b.info }

func (b *Builtin) Self() runtime.Value { return b.self }

func (b *Builtin) Bind(self runtime.Value) Callable {
	return &Builtin{info: b.info, impl: b.impl, self: self}
}

// SupportsKeywords reports whether the builtin has a keyword entry point.
func (b *Builtin) SupportsKeywords() bool { return b.impl.FnKw != nil }

func (b *Builtin) Call(args []runtime.Value, kw []Keyword) (runtime.Value, error) {
	if len(kw) > 0 {
		if b.impl.FnKw == nil {
			return nil, UnexpectedCall(b.info, len(args), true)
		}
		return b.impl.FnKw(b.self, args, kw)
	}
	switch len(args) {
	case 0:
		return b.Call0()
	case 1:
		return b.Call1(args[0])
	case 2:
		return b.Call2(args[0], args[1])
	case 3:
		return b.Call3(args[0], args[1], args[2])
	case 4:
		return b.Call4(args[0], args[1], args[2], args[3])
	default:
		return b.fancyCall(args)
	}
}

func (b *Builtin) Call0() (runtime.Value, error) {
	if fn := b.impl.Fn0; fn != nil && b.info.Accepts(0) {
		return fn(b.self)
	}
	return b.fancyCall(nil)
}

func (b *Builtin) Call1(a runtime.Value) (runtime.Value, error) {
	if fn := b.impl.Fn1; fn != nil && b.info.Accepts(1) {
		return fn(b.self, a)
	}
	return b.fancyCall([]runtime.Value{a})
}

func (b *Builtin) Call2(a, c runtime.Value) (runtime.Value, error) {
	if fn := b.impl.Fn2; fn != nil && b.info.Accepts(2) {
		return fn(b.self, a, c)
	}
	return b.fancyCall([]runtime.Value{a, c})
}

func (b *Builtin) Call3(a, c, d runtime.Value) (runtime.Value, error) {
	if fn := b.impl.Fn3; fn != nil && b.info.Accepts(3) {
		return fn(b.self, a, c, d)
	}
	return b.fancyCall([]runtime.Value{a, c, d})
}

func (b *Builtin) Call4(a, c, d, e runtime.Value) (runtime.Value, error) {
	if fn := b.impl.Fn4; fn != nil && b.info.Accepts(4) {
		return fn(b.self, a, c, d, e)
	}
	return b.fancyCall([]runtime.Value{a, c, d, e})
}

// fancyCall is the generic path. Without a variadic entry point it always
// fails.
func (b *Builtin) fancyCall(args []runtime.Value) (runtime.Value, error) {
	if b.info.Accepts(len(args)) {
		if fn := b.impl.FnN; fn != nil {
			return fn(b.self, args)
		}
		if fn := b.impl.FnKw; fn != nil {
			return fn(b.self, args, nil)
		}
	}
	return nil, UnexpectedCall(b.info, len(args), false)
}
