package object

import (
	"fmt"

	"github.com/jython/jython-sub004/pkg/callable"
	"github.com/jython/jython-sub004/pkg/runtime"
)

const (
	ConstructorName = "__new__"
	InitializerName = "__init__"
)

// NewConstructor wraps factory as the type's __new__. factory is called
// bound to the requested subtype.
func NewConstructor(factory callable.Callable) *Descriptor {
	return &Descriptor{kind: ConstructorDescriptor, name: ConstructorName, fn: factory}
}

// Construct builds an instance of subtype. subtype must share the declaring
// type's static base, otherwise its storage would not match what the
// factory allocates.
func (d *Descriptor) Construct(subtype *Type, args []runtime.Value, kw []callable.Keyword) (runtime.Value, error) {
	if d.kind != ConstructorDescriptor {
		return nil, runtime.Errorf(runtime.TypeError, "'%s' descriptor '%s' is not a constructor", d.kind, d.name)
	}
	if subtype == nil {
		subtype = d.owner
	}
	if !subtype.IsSubtype(d.owner) {
		return nil, runtime.Errorf(runtime.WrongReceiverType,
			"%s.__new__(%s): %s is not a subtype of %s", d.ownerName(), subtype.name, subtype.name, d.ownerName())
	}
	if base := subtype.StaticBase(); base != d.owner {
		return nil, runtime.Errorf(runtime.UnsafeConstruction,
			"%s.__new__(%s) is not safe, use %s.__new__()", d.ownerName(), subtype.name, base.name)
	}
	return d.fn.Bind(subtype).Call(args, kw)
}

// New calls t: its constructor, then the initializer when the result is an
// instance of t.
func (t *Type) New(args []runtime.Value, kw []callable.Keyword) (runtime.Value, error) {
	ctor, _ := t.Lookup(ConstructorName)
	if ctor == nil || ctor.kind != ConstructorDescriptor {
		return nil, runtime.Errorf(runtime.TypeError, "cannot create '%s' instances", t.name)
	}
	result, err := ctor.Construct(t, args, kw)
	if err != nil {
		return nil, err
	}
	inst, ok := result.(*Instance)
	if !ok || !inst.typ.IsSubtype(t) {
		return result, nil
	}
	init, _ := t.Lookup(InitializerName)
	if init == nil {
		return inst, nil
	}
	bound, err := init.Get(inst, t)
	if err != nil {
		return nil, err
	}
	fn, ok := bound.(callable.Callable)
	if !ok {
		return nil, runtime.Errorf(runtime.TypeError, "'%s' object is not callable", runtime.TypeName(bound))
	}
	if _, err := fn.Call(args, kw); err != nil {
		return nil, err
	}
	return inst, nil
}

// constructorCallable is a constructor reached through a type. The first
// argument names the type to build unless the callable is bound.
type constructorCallable struct {
	d   *Descriptor
	sub *Type
}

func (c *constructorCallable) Kind() runtime.Kind {
	if c.sub != nil {
		return runtime.KindBoundMethod
	}
	return runtime.KindFunction
}

func (c *constructorCallable) TypeName() string { return "builtin_function_or_method" }

func (c *constructorCallable) String() string {
	return fmt.Sprintf("<built-in method __new__ of type object '%s'>", c.d.ownerName())
}

func (c *constructorCallable) Info() callable.Info {
	info := c.d.fn.Info()
	info.Name = ConstructorName
	if c.sub != nil {
		return info
	}
	info.MinArgs++
	if info.MaxArgs != callable.Unbounded {
		info.MaxArgs++
	}
	return info
}

func (c *constructorCallable) Self() runtime.Value {
	if c.sub == nil {
		return nil
	}
	return c.sub
}

func (c *constructorCallable) Bind(self runtime.Value) callable.Callable {
	sub, ok := self.(*Type)
	if !ok {
		return c
	}
	return &constructorCallable{d: c.d, sub: sub}
}

func (c *constructorCallable) Call(args []runtime.Value, kw []callable.Keyword) (runtime.Value, error) {
	if c.sub != nil {
		return c.d.Construct(c.sub, args, kw)
	}
	if len(args) == 0 {
		return nil, runtime.Errorf(runtime.ArityMismatch, "%s.__new__(): not enough arguments", c.d.ownerName())
	}
	sub, ok := args[0].(*Type)
	if !ok {
		return nil, runtime.Errorf(runtime.WrongReceiverType,
			"%s.__new__(X): X is not a type object (%s)", c.d.ownerName(), runtime.TypeName(args[0]))
	}
	return c.d.Construct(sub, args[1:], kw)
}
