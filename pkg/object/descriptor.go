package object

import (
	"fmt"

	"github.com/jython/jython-sub004/pkg/callable"
	"github.com/jython/jython-sub004/pkg/runtime"
)

type DescriptorKind int

const (
	FieldDescriptor DescriptorKind = iota
	SlotDescriptor
	MethodDescriptor
	ClassMethodDescriptor
	StaticMethodDescriptor
	PropertyDescriptor
	ConstructorDescriptor
)

func (k DescriptorKind) String() string {
	switch k {
	case FieldDescriptor:
		return "field"
	case SlotDescriptor:
		return "slot"
	case MethodDescriptor:
		return "method"
	case ClassMethodDescriptor:
		return "classmethod"
	case StaticMethodDescriptor:
		return "staticmethod"
	case PropertyDescriptor:
		return "property"
	case ConstructorDescriptor:
		return "constructor"
	default:
		return fmt.Sprintf("DescriptorKind(%d)", int(k))
	}
}

// FieldAccessor reads and writes native storage behind a Field.
type FieldAccessor interface {
	Load(inst *Instance) (runtime.Value, error)
	Store(inst *Instance, value runtime.Value) error
}

// Descriptor is a type member mediating attribute access. Which fields are
// meaningful depends on kind.
type Descriptor struct {
	kind     DescriptorKind
	name     string
	owner    *Type
	readonly bool

	accessor FieldAccessor
	index    int

	fn callable.Callable

	getter    PropertyGetter
	setter    PropertySetter
	deleter   PropertyDeleter
	valueType *Type
}

// NewField describes native storage reached through accessor.
func NewField(name string, accessor FieldAccessor, readonly bool) *Descriptor {
	return &Descriptor{kind: FieldDescriptor, name: name, accessor: accessor, readonly: readonly}
}

// NewSlot describes slot cell index of every instance.
func NewSlot(name string, index int, readonly bool) *Descriptor {
	return &Descriptor{kind: SlotDescriptor, name: name, index: index, readonly: readonly}
}

// NewMethod wraps fn; gets through an instance bind it.
func NewMethod(fn callable.Callable) *Descriptor {
	return &Descriptor{kind: MethodDescriptor, name: fn.Info().Name, fn: fn}
}

// NewClassMethod wraps fn; gets bind it to the owning type.
func NewClassMethod(fn callable.Callable) *Descriptor {
	return &Descriptor{kind: ClassMethodDescriptor, name: fn.Info().Name, fn: fn}
}

func NewStaticMethod(fn callable.Callable) *Descriptor {
	return &Descriptor{kind: StaticMethodDescriptor, name: fn.Info().Name, fn: fn}
}

func (d *Descriptor) Kind() runtime.Kind { return runtime.KindDescriptor }

func (d *Descriptor) TypeName() string {
	switch d.kind {
	case SlotDescriptor:
		return "member_descriptor"
	case FieldDescriptor:
		return "getset_descriptor"
	default:
		return d.kind.String()
	}
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("<%s '%s' of '%s' objects>", d.kind, d.name, d.ownerName())
}

func (d *Descriptor) ownerName() string {
	if d.owner == nil {
		return "?"
	}
	return d.owner.name
}

func (d *Descriptor) DescriptorKind() DescriptorKind { return d.kind }

func (d *Descriptor) Name() string { return d.name }

func (d *Descriptor) Owner() *Type { return d.owner }

// Callable returns the wrapped callable of method-shaped and constructor
// descriptors.
func (d *Descriptor) Callable() callable.Callable { return d.fn }

// IsData reports whether the descriptor takes priority over the instance's
// own store.
func (d *Descriptor) IsData() bool {
	switch d.kind {
	case FieldDescriptor, SlotDescriptor, PropertyDescriptor, ConstructorDescriptor:
		return true
	default:
		return false
	}
}

func (d *Descriptor) SupportsSet() bool {
	switch d.kind {
	case FieldDescriptor, SlotDescriptor:
		return !d.readonly
	case PropertyDescriptor:
		return d.setter != nil
	default:
		return false
	}
}

// Get reads the attribute for inst. A nil inst means access through the
// type itself.
func (d *Descriptor) Get(inst *Instance, owner *Type) (runtime.Value, error) {
	if owner == nil && inst != nil {
		owner = inst.typ
	}
	switch d.kind {
	case FieldDescriptor:
		if inst == nil {
			return d, nil
		}
		if err := d.checkReceiver(inst, owner); err != nil {
			return nil, err
		}
		return d.accessor.Load(inst)
	case SlotDescriptor:
		if inst == nil {
			return d, nil
		}
		if err := d.checkReceiver(inst, owner); err != nil {
			return nil, err
		}
		v := inst.slot(d.index)
		if v == nil {
			return nil, runtime.NoAttribute(inst, d.name)
		}
		return v, nil
	case MethodDescriptor:
		if inst == nil {
			return callable.NewUnbound(d.fn, d.ownerName(), d.accepts), nil
		}
		if err := d.checkReceiver(inst, owner); err != nil {
			return nil, err
		}
		return d.fn.Bind(inst), nil
	case ClassMethodDescriptor:
		if owner == nil {
			owner = d.owner
		}
		return d.fn.Bind(owner), nil
	case StaticMethodDescriptor:
		return d.fn, nil
	case PropertyDescriptor:
		if inst == nil {
			return d, nil
		}
		return d.getProperty(inst)
	case ConstructorDescriptor:
		if inst != nil {
			return nil, runtime.Errorf(runtime.WrongReceiverType,
				"constructor '%s' of '%s' is only reachable through a type, not a '%s' object",
				d.name, d.ownerName(), inst.typ.name)
		}
		return &constructorCallable{d: d}, nil
	default:
		return nil, runtime.Errorf(runtime.InternalError, "unknown descriptor kind %v", d.kind)
	}
}

// Set stores value on inst.
func (d *Descriptor) Set(inst *Instance, value runtime.Value) error {
	if !d.SupportsSet() {
		return d.readonlyError(inst)
	}
	if err := d.checkReceiver(inst, nil); err != nil {
		return err
	}
	switch d.kind {
	case FieldDescriptor:
		return d.accessor.Store(inst, value)
	case SlotDescriptor:
		inst.setSlot(d.index, value)
		return nil
	case PropertyDescriptor:
		return d.setProperty(inst, value)
	default:
		return d.readonlyError(inst)
	}
}

// Delete clears the attribute on inst. Only writable slots and properties
// with a deleter support it.
func (d *Descriptor) Delete(inst *Instance) error {
	if err := d.checkReceiver(inst, nil); err != nil {
		return err
	}
	switch d.kind {
	case SlotDescriptor:
		if d.readonly {
			return d.readonlyError(inst)
		}
		if inst.slot(d.index) == nil {
			return runtime.NoAttribute(inst, d.name)
		}
		inst.setSlot(d.index, nil)
		return nil
	case PropertyDescriptor:
		if d.deleter == nil {
			return runtime.Errorf(runtime.ImmutableAttribute, "can't delete attribute '%s'", d.name)
		}
		if err := d.deleter(inst); err != nil {
			return runtime.Wrap(runtime.PropertyAccessError, err, "deleting '%s' of '%s' object: %v", d.name, inst.typ.name, err)
		}
		return nil
	default:
		return runtime.Errorf(runtime.ImmutableAttribute, "can't delete '%s' attribute '%s'", d.kind, d.name)
	}
}

func (d *Descriptor) accepts(v runtime.Value) bool {
	inst, ok := v.(*Instance)
	return ok && inst.typ.IsSubtype(d.owner)
}

func (d *Descriptor) checkReceiver(inst *Instance, owner *Type) error {
	if inst == nil {
		return runtime.Errorf(runtime.WrongReceiverType, "descriptor '%s' needs an instance", d.name)
	}
	if owner != nil && owner != inst.typ && !inst.typ.IsSubtype(owner) {
		return runtime.Errorf(runtime.WrongReceiverType,
			"descriptor '%s' for '%s' objects doesn't apply to a '%s' object", d.name, owner.name, inst.typ.name)
	}
	if d.owner != nil && !inst.typ.IsSubtype(d.owner) {
		return runtime.Errorf(runtime.WrongReceiverType,
			"descriptor '%s' for '%s' objects doesn't apply to a '%s' object", d.name, d.owner.name, inst.typ.name)
	}
	return nil
}

func (d *Descriptor) readonlyError(inst *Instance) error {
	typeName := "?"
	if inst != nil {
		typeName = inst.typ.name
	}
	switch d.kind {
	case FieldDescriptor, SlotDescriptor:
		return runtime.Errorf(runtime.ImmutableAttribute, "'%s' object attribute '%s' is read-only", typeName, d.name)
	case PropertyDescriptor:
		return runtime.Errorf(runtime.ImmutableAttribute, "can't set attribute '%s'", d.name)
	default:
		return runtime.Errorf(runtime.ImmutableAttribute, "'%s' object attribute '%s' is read-only", typeName, d.name)
	}
}
