package object

import (
	"github.com/rs/zerolog/log"

	"github.com/jython/jython-sub004/pkg/runtime"
)

// Property delegates. Host bean properties and computed attributes supply
// these.
type (
	PropertyGetter  func(inst *Instance) (runtime.Value, error)
	PropertySetter  func(inst *Instance, value runtime.Value) error
	PropertyDeleter func(inst *Instance) error
)

// PropertySpec describes a computed attribute. ValueType, when set, lets
// tuple values be coerced by constructing ValueType from the elements.
type PropertySpec struct {
	Name      string
	Get       PropertyGetter
	Set       PropertySetter
	Delete    PropertyDeleter
	ValueType *Type
}

func NewProperty(spec PropertySpec) *Descriptor {
	return &Descriptor{
		kind:      PropertyDescriptor,
		name:      spec.Name,
		getter:    spec.Get,
		setter:    spec.Set,
		deleter:   spec.Delete,
		valueType: spec.ValueType,
	}
}

// ValueType is the declared type of a property, or nil.
func (d *Descriptor) ValueType() *Type { return d.valueType }

func (d *Descriptor) getProperty(inst *Instance) (runtime.Value, error) {
	if d.getter == nil {
		return nil, runtime.Errorf(runtime.PropertyAccessError, "unreadable attribute '%s'", d.name)
	}
	if err := d.checkReceiver(inst, nil); err != nil {
		return nil, err
	}
	v, err := d.getter(inst)
	if err != nil {
		return nil, runtime.Wrap(runtime.PropertyAccessError, err, "reading '%s' of '%s' object: %v", d.name, inst.typ.name, err)
	}
	if v == nil {
		return runtime.None, nil
	}
	return v, nil
}

func (d *Descriptor) setProperty(inst *Instance, value runtime.Value) error {
	value = d.coerce(value)
	if err := d.setter(inst, value); err != nil {
		return runtime.Wrap(runtime.PropertyAccessError, err, "writing '%s' of '%s' object: %v", d.name, inst.typ.name, err)
	}
	return nil
}

// coerce builds the declared value type from a tuple. A failed construction
// leaves value unchanged.
func (d *Descriptor) coerce(value runtime.Value) runtime.Value {
	tuple, ok := value.(*runtime.TupleValue)
	if !ok || d.valueType == nil {
		return value
	}
	built, err := d.valueType.New(tuple.Elements, nil)
	if err != nil {
		log.Debug().Str("property", d.name).Str("type", d.valueType.name).Err(err).Msg("tuple coercion skipped")
		return value
	}
	return built
}
