package object

import (
	"github.com/rs/zerolog/log"

	"github.com/jython/jython-sub004/pkg/callable"
	"github.com/jython/jython-sub004/pkg/runtime"
)

// GetAttr resolves name on inst. A not-found failure is handed to the type's
// fallback hook when it has one; other failures surface unchanged.
func (r *Registry) GetAttr(inst *Instance, name string) (runtime.Value, error) {
	v, err := r.getAttribute(inst, name)
	if err == nil || !runtime.IsKind(err, runtime.AttributeNotFound) {
		return v, err
	}
	hook, _ := inst.typ.Lookup(FallbackName)
	if hook == nil {
		return nil, err
	}
	fn, hookErr := hook.Get(inst, inst.typ)
	if hookErr != nil {
		return nil, hookErr
	}
	return Invoke(fn, []runtime.Value{runtime.Str(name)}, nil)
}

func (r *Registry) getAttribute(inst *Instance, name string) (runtime.Value, error) {
	t := inst.typ
	if t.FastPathEligible() {
		return r.lookup(inst, name)
	}
	getter, _ := t.Lookup(GetterName)
	if getter == nil {
		return nil, runtime.Errorf(runtime.InternalError, "type '%s' has no %s", t.name, GetterName)
	}
	if getter == r.defaultGetter {
		if r.opts.FastPath && t.markFastPath() {
			log.Debug().Str("type", t.name).Msg("attribute fast path enabled")
		}
		return r.lookup(inst, name)
	}
	fn, err := getter.Get(inst, t)
	if err != nil {
		return nil, err
	}
	return Invoke(fn, []runtime.Value{runtime.Str(name)}, nil)
}

// lookup is the built-in getter: data descriptors, then the own store, then
// non-data descriptors.
func (r *Registry) lookup(inst *Instance, name string) (runtime.Value, error) {
	d, _ := inst.typ.Lookup(name)
	if d != nil && d.IsData() {
		return d.Get(inst, inst.typ)
	}
	if v, ok := inst.DictGet(name); ok {
		return v, nil
	}
	if d != nil {
		return d.Get(inst, inst.typ)
	}
	return nil, runtime.NoAttribute(inst, name)
}

// SetAttr assigns name on inst. Data descriptors take the write; otherwise
// it lands in the own store.
func (r *Registry) SetAttr(inst *Instance, name string, value runtime.Value) error {
	d, _ := inst.typ.Lookup(name)
	if d != nil && d.IsData() {
		return d.Set(inst, value)
	}
	if inst.DictSet(name, value) {
		return nil
	}
	if d != nil {
		return d.readonlyError(inst)
	}
	return runtime.NoAttribute(inst, name)
}

// DelAttr removes name from inst.
func (r *Registry) DelAttr(inst *Instance, name string) error {
	d, _ := inst.typ.Lookup(name)
	if d != nil && d.IsData() {
		return d.Delete(inst)
	}
	if inst.DictDelete(name) {
		return nil
	}
	if d != nil {
		return runtime.Errorf(runtime.ImmutableAttribute, "'%s' object attribute '%s' is read-only", inst.typ.name, name)
	}
	return runtime.NoAttribute(inst, name)
}

// TypeAttr resolves name on the type itself.
func (r *Registry) TypeAttr(t *Type, name string) (runtime.Value, error) {
	d, _ := t.Lookup(name)
	if d == nil {
		return nil, runtime.Errorf(runtime.AttributeNotFound, "type object '%s' has no attribute '%s'", t.name, name)
	}
	return d.Get(nil, t)
}

// Attribute resolves name on any runtime value the registry knows about.
func (r *Registry) Attribute(v runtime.Value, name string) (runtime.Value, error) {
	switch target := v.(type) {
	case *Instance:
		return r.GetAttr(target, name)
	case *Type:
		return r.TypeAttr(target, name)
	default:
		return nil, runtime.NoAttribute(v, name)
	}
}

// CallMethod resolves name on inst and calls the result.
func (r *Registry) CallMethod(inst *Instance, name string, args ...runtime.Value) (runtime.Value, error) {
	fn, err := r.GetAttr(inst, name)
	if err != nil {
		return nil, err
	}
	return Invoke(fn, args, nil)
}

// Invoke calls fn: callables directly, types through their constructor.
func Invoke(fn runtime.Value, args []runtime.Value, kw []callable.Keyword) (runtime.Value, error) {
	switch target := fn.(type) {
	case callable.Callable:
		return target.Call(args, kw)
	case *Type:
		return target.New(args, kw)
	default:
		return nil, runtime.Errorf(runtime.TypeError, "'%s' object is not callable", runtime.TypeName(fn))
	}
}
