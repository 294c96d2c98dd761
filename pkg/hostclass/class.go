// Package hostclass exposes native (host) classes as runtime types and
// memoises them, together with lazily loaded classes and adapters, in weak
// caches.
package hostclass

import (
	"fmt"

	"github.com/jython/jython-sub004/pkg/callable"
	"github.com/jython/jython-sub004/pkg/object"
	"github.com/jython/jython-sub004/pkg/runtime"
)

// HostClass describes a native class. Instances of the resulting type carry
// the native value in Instance.Host.
type HostClass struct {
	Name  string
	Super *HostClass
	// New builds the native value; nil leaves the type without its own
	// constructor.
	New        func(args []runtime.Value) (any, error)
	Properties []Property
	Fields     []Field
	Methods    []Method
}

// Property is a bean-style getter/setter pair. ValueType, when set, is the
// class tuples are converted to on assignment.
type Property struct {
	Name      string
	Get       func(host any) (runtime.Value, error)
	Set       func(host any, v runtime.Value) error
	ValueType *HostClass
}

// Field is directly addressable native storage. A nil Store makes it
// read-only.
type Field struct {
	Name  string
	Load  func(host any) (runtime.Value, error)
	Store func(host any, v runtime.Value) error
}

type Method struct {
	Name    string
	MinArgs int
	MaxArgs int
	Call    func(host any, args []runtime.Value) (runtime.Value, error)
}

type fieldAccessor struct {
	load  func(any) (runtime.Value, error)
	store func(any, runtime.Value) error
}

func (a fieldAccessor) Load(inst *object.Instance) (runtime.Value, error) {
	return a.load(inst.Host)
}

func (a fieldAccessor) Store(inst *object.Instance, v runtime.Value) error {
	return a.store(inst.Host, v)
}

// Build turns hc into a type deriving from base (the root when nil).
// valueType resolves the declared value types of properties.
func Build(reg *object.Registry, hc *HostClass, base *object.Type, valueType func(*HostClass) (*object.Type, error)) (*object.Type, error) {
	if base == nil {
		base = reg.Root()
	}
	typ, err := reg.NewType(object.TypeSpec{Name: hc.Name, Bases: []*object.Type{base}, Layout: true})
	if err != nil {
		return nil, err
	}
	if hc.New != nil {
		factory := hc.New
		ctor, err := callable.NewBuiltin(callable.Range(object.ConstructorName, 0, callable.Unbounded), callable.Impl{
			FnN: func(self runtime.Value, args []runtime.Value) (runtime.Value, error) {
				sub, ok := self.(*object.Type)
				if !ok {
					return nil, runtime.Errorf(runtime.TypeError, "%s.__new__(X): X is not a type object", typ.Name())
				}
				host, err := factory(args)
				if err != nil {
					return nil, err
				}
				inst := sub.Allocate()
				inst.Host = host
				return inst, nil
			},
		})
		if err != nil {
			return nil, err
		}
		if err := typ.Define(object.NewConstructor(ctor)); err != nil {
			return nil, err
		}
	}
	for _, f := range hc.Fields {
		accessor := fieldAccessor{load: f.Load, store: f.Store}
		if err := typ.Define(object.NewField(f.Name, accessor, f.Store == nil)); err != nil {
			return nil, err
		}
	}
	for _, p := range hc.Properties {
		spec := object.PropertySpec{Name: p.Name}
		if get := p.Get; get != nil {
			spec.Get = func(inst *object.Instance) (runtime.Value, error) { return get(inst.Host) }
		}
		if set := p.Set; set != nil {
			spec.Set = func(inst *object.Instance, v runtime.Value) error { return set(inst.Host, v) }
		}
		if p.ValueType != nil {
			if p.ValueType == hc {
				spec.ValueType = typ
			} else if spec.ValueType, err = valueType(p.ValueType); err != nil {
				return nil, fmt.Errorf("hostclass: %s.%s: %w", hc.Name, p.Name, err)
			}
		}
		if err := typ.Define(object.NewProperty(spec)); err != nil {
			return nil, err
		}
	}
	for _, m := range hc.Methods {
		call := m.Call
		fn, err := callable.NewBuiltin(callable.Range(m.Name, m.MinArgs, m.MaxArgs), callable.Impl{
			FnN: func(self runtime.Value, args []runtime.Value) (runtime.Value, error) {
				inst, ok := self.(*object.Instance)
				if !ok {
					return nil, runtime.Errorf(runtime.WrongReceiverType,
						"descriptor '%s' requires a '%s' object but received a '%s'", m.Name, typ.Name(), runtime.TypeName(self))
				}
				return call(inst.Host, args)
			},
		})
		if err != nil {
			return nil, fmt.Errorf("hostclass: %s.%s: %w", hc.Name, m.Name, err)
		}
		if err := typ.Define(object.NewMethod(fn)); err != nil {
			return nil, err
		}
	}
	return typ, nil
}
