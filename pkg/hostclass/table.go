package hostclass

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jython/jython-sub004/pkg/object"
	"github.com/jython/jython-sub004/pkg/runtime"
	"github.com/jython/jython-sub004/pkg/weakcache"
)

// Loader resolves a class name to its host description.
type Loader func(name string) (*HostClass, error)

// AdapterFactory constructs an adapter object of the given shape for target.
type AdapterFactory func(target *object.Instance, shape *object.Type) (*object.Instance, error)

type classKey struct {
	category weakcache.Category
	name     string
}

type adapterKey struct {
	target uint64
	shape  uint64
}

// Table memoises the types derived from host classes.
//
// Canonical classes are keyed by host class identity and vanish once the
// description is unreachable. Lazy and adapter classes are keyed by name
// and held until flushed. Adapters are held weakly per target object.
type Table struct {
	reg    *object.Registry
	loader Loader

	canonical *weakcache.IdentityCache[HostClass, *object.Type]
	classes   *weakcache.Cache[classKey, *object.Type]
	adapters  *weakcache.WeakValueCache[adapterKey, object.Instance]
	ids       *weakcache.IDMap[object.Instance]

	loads singleflight.Group
}

func NewTable(reg *object.Registry, loader Loader, opts weakcache.Options) *Table {
	return &Table{
		reg:       reg,
		loader:    loader,
		canonical: weakcache.NewIdentity[HostClass, *object.Type](opts),
		classes:   weakcache.New[classKey, *object.Type](opts),
		adapters:  weakcache.NewWeakValues[adapterKey, object.Instance](opts),
		ids:       weakcache.NewIDMap[object.Instance](opts),
	}
}

// IDs is the identity map used to key adapters.
func (t *Table) IDs() *weakcache.IDMap[object.Instance] { return t.ids }

// Canonical returns the type for hc, building it on first use.
func (t *Table) Canonical(hc *HostClass) (*object.Type, error) {
	return t.canonicalFor(hc, map[*HostClass]bool{})
}

func (t *Table) canonicalFor(hc *HostClass, visiting map[*HostClass]bool) (*object.Type, error) {
	if hc == nil {
		return nil, fmt.Errorf("hostclass: nil host class")
	}
	if typ, ok := t.canonical.Get(hc); ok {
		return typ, nil
	}
	if visiting[hc] {
		return nil, fmt.Errorf("hostclass: %s: cyclic class reference", hc.Name)
	}
	visiting[hc] = true
	defer delete(visiting, hc)

	var base *object.Type
	if hc.Super != nil {
		var err error
		if base, err = t.canonicalFor(hc.Super, visiting); err != nil {
			return nil, err
		}
	}
	valueTypes := map[*HostClass]*object.Type{}
	for _, p := range hc.Properties {
		if p.ValueType == nil || p.ValueType == hc {
			continue
		}
		vt, err := t.canonicalFor(p.ValueType, visiting)
		if err != nil {
			return nil, err
		}
		valueTypes[p.ValueType] = vt
	}
	resolve := func(vc *HostClass) (*object.Type, error) {
		if vt, ok := valueTypes[vc]; ok {
			return vt, nil
		}
		return nil, fmt.Errorf("hostclass: %s: unresolved value type", vc.Name)
	}

	typ, loaded, err := t.canonical.LoadOrStore(hc, weakcache.CanonicalClass, func() (*object.Type, error) {
		return Build(t.reg, hc, base, resolve)
	})
	if err != nil {
		return nil, err
	}
	if !loaded {
		t.classes.Remove(classKey{weakcache.LazyClass, hc.Name})
		log.Debug().Str("class", hc.Name).Msg("canonical class materialised")
	}
	return typ, nil
}

// Lazy returns the class registered under name, loading it through the
// table's loader. Concurrent loads of one name share a single call.
func (t *Table) Lazy(name string) (*object.Type, error) {
	key := classKey{weakcache.LazyClass, name}
	if typ, ok := t.classes.Get(key); ok {
		return typ, nil
	}
	if t.loader == nil {
		return nil, runtime.Errorf(runtime.AttributeNotFound, "no class named '%s'", name)
	}
	v, err, _ := t.loads.Do(name, func() (any, error) {
		if typ, ok := t.classes.Get(key); ok {
			return typ, nil
		}
		hc, err := t.loader(name)
		if err != nil {
			return nil, fmt.Errorf("hostclass: loading %s: %w", name, err)
		}
		if hc == nil {
			return nil, runtime.Errorf(runtime.AttributeNotFound, "no class named '%s'", name)
		}
		typ, err := t.Canonical(hc)
		if err != nil {
			return nil, err
		}
		t.classes.Put(key, typ, weakcache.LazyClass)
		return typ, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*object.Type), nil
}

// AdapterClass returns the adapter class for shape, building it once.
func (t *Table) AdapterClass(shape *object.Type, build func(shape *object.Type) (*object.Type, error)) (*object.Type, error) {
	typ, _, err := t.classes.LoadOrStore(classKey{weakcache.AdapterClass, shape.Name()}, weakcache.AdapterClass, func() (*object.Type, error) {
		typ, err := build(shape)
		if err == nil && typ == nil {
			return nil, runtime.Errorf(runtime.TypeError, "no adapter class built for '%s'", shape.Name())
		}
		return typ, err
	})
	return typ, err
}

// Adapt returns the adapter of the given shape for target. The adapter is
// reused while it stays reachable. A factory that produces no adapter is a
// TypeError and nothing is cached.
func (t *Table) Adapt(target *object.Instance, shape *object.Type, factory AdapterFactory) (*object.Instance, error) {
	if target == nil {
		return nil, runtime.Errorf(runtime.TypeError, "cannot adapt nothing to '%s'", shape.Name())
	}
	key := adapterKey{target: t.ids.ID(target), shape: shape.ID()}
	adapter, _, err := t.adapters.LoadOrStore(key, weakcache.Adapter, func() (*object.Instance, error) {
		ad, err := factory(target, shape)
		if err == nil && ad == nil {
			return nil, runtime.Errorf(runtime.TypeError, "adapter factory produced no '%s' adapter", shape.Name())
		}
		return ad, err
	})
	return adapter, err
}

// Query reports whether a class named name is known, either canonically or
// as a lazy entry.
func (t *Table) Query(name string) bool {
	if _, ok := t.classes.Get(classKey{weakcache.LazyClass, name}); ok {
		return true
	}
	found := false
	t.canonical.Range(weakcache.CanonicalClass, func(hc *HostClass, _ *object.Type) bool {
		found = hc.Name == name
		return !found
	})
	return found
}

// Count is the number of live entries in category.
func (t *Table) Count(category weakcache.Category) int {
	n := 0
	t.Range(category, func(string, *object.Type) bool {
		n++
		return true
	})
	return n
}

// Range enumerates category in stable mode. For adapters the type reported
// is the adapter's own type.
func (t *Table) Range(category weakcache.Category, fn func(name string, typ *object.Type) bool) {
	switch category {
	case weakcache.CanonicalClass:
		t.canonical.Range(category, func(hc *HostClass, typ *object.Type) bool { return fn(hc.Name, typ) })
	case weakcache.LazyClass, weakcache.AdapterClass:
		t.classes.Range(category, func(k classKey, typ *object.Type) bool { return fn(k.name, typ) })
	case weakcache.Adapter:
		t.adapters.Range(category, func(_ adapterKey, inst *object.Instance) bool {
			return fn(inst.Type().Name(), inst.Type())
		})
	}
}

// Flush forgets typ wherever it is cached as a class, so the next request
// rebuilds it.
func (t *Table) Flush(typ *object.Type) bool {
	flushed := t.classes.Remove(classKey{weakcache.LazyClass, typ.Name()})
	it := t.canonical.BeginIteration(weakcache.CanonicalClass)
	defer it.Close()
	for {
		_, cached, ok := it.Next()
		if !ok {
			break
		}
		if cached == typ && it.Remove() {
			flushed = true
		}
	}
	if flushed {
		log.Debug().Str("class", typ.Name()).Msg("class flushed")
	}
	return flushed
}

// FlushAll drops every lazy and adapter class.
func (t *Table) FlushAll() {
	for _, category := range []weakcache.Category{weakcache.LazyClass, weakcache.AdapterClass} {
		it := t.classes.BeginIteration(category)
		for {
			if _, _, ok := it.Next(); !ok {
				break
			}
			it.Remove()
		}
		it.Close()
	}
}
