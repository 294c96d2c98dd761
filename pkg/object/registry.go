package object

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jython/jython-sub004/pkg/callable"
	"github.com/jython/jython-sub004/pkg/runtime"
)

const (
	RootTypeName = "object"
	// GetterName is the attribute-getter hook every type inherits from the
	// root.
	GetterName = "__attributeGetter__"
	// FallbackName is consulted after a failed lookup.
	FallbackName = "__attributeFallback__"
)

// Options tune a Registry.
type Options struct {
	// FastPath lets the resolver flag types that use the built-in getter
	// and skip the hook lookup afterwards.
	FastPath bool
}

func DefaultOptions() Options {
	return Options{FastPath: true}
}

// Registry owns the root type, the built-in attribute getter and every type
// defined through it.
type Registry struct {
	opts          Options
	root          *Type
	defaultGetter *Descriptor

	mu    sync.RWMutex
	types map[string]*Type
}

func NewRegistry(opts Options) *Registry {
	r := &Registry{opts: opts, types: map[string]*Type{}}
	root, err := newType(TypeSpec{Name: RootTypeName, Layout: true})
	if err != nil {
		panic(err)
	}
	r.defaultGetter = NewMethod(callable.MustBuiltin(callable.Fixed(GetterName, 1), callable.Impl{
		Fn1: func(self, name runtime.Value) (runtime.Value, error) {
			inst, ok := self.(*Instance)
			if !ok {
				return nil, runtime.Errorf(runtime.WrongReceiverType,
					"descriptor '%s' requires a 'object' instance but received a '%s'", GetterName, runtime.TypeName(self))
			}
			key, ok := name.(runtime.StringValue)
			if !ok {
				return nil, runtime.Errorf(runtime.TypeError, "attribute name must be string, not '%s'", runtime.TypeName(name))
			}
			return r.lookup(inst, key.Val)
		},
	}))
	root.MustDefine(
		r.defaultGetter,
		NewConstructor(callable.MustBuiltin(callable.Range(ConstructorName, 0, callable.Unbounded), callable.Impl{
			FnN: func(self runtime.Value, _ []runtime.Value) (runtime.Value, error) {
				t, ok := self.(*Type)
				if !ok {
					return nil, runtime.Errorf(runtime.TypeError, "object.__new__(X): X is not a type object")
				}
				return t.Allocate(), nil
			},
			FnKw: func(self runtime.Value, _ []runtime.Value, _ []callable.Keyword) (runtime.Value, error) {
				t, ok := self.(*Type)
				if !ok {
					return nil, runtime.Errorf(runtime.TypeError, "object.__new__(X): X is not a type object")
				}
				return t.Allocate(), nil
			},
		})),
		NewMethod(callable.MustBuiltin(callable.Range(InitializerName, 0, callable.Unbounded), callable.Impl{
			FnN: func(runtime.Value, []runtime.Value) (runtime.Value, error) { return runtime.None, nil },
			FnKw: func(runtime.Value, []runtime.Value, []callable.Keyword) (runtime.Value, error) {
				return runtime.None, nil
			},
		})),
	)
	r.root = root
	r.types[root.name] = root
	return r
}

// Root is the type every other type derives from.
func (r *Registry) Root() *Type { return r.root }

// DefaultGetter is the built-in attribute getter installed on the root.
func (r *Registry) DefaultGetter() *Descriptor { return r.defaultGetter }

// NewType defines a type. Without bases it derives from the root.
func (r *Registry) NewType(spec TypeSpec) (*Type, error) {
	if len(spec.Bases) == 0 {
		spec.Bases = []*Type{r.root}
	}
	t, err := newType(spec)
	if err != nil {
		return nil, err
	}
	if !t.IsSubtype(r.root) {
		return nil, fmt.Errorf("object: %s: bases do not derive from %s", t.name, r.root.name)
	}
	r.mu.Lock()
	r.types[t.name] = t
	r.mu.Unlock()
	log.Debug().Str("type", t.name).Int("slots", t.nslots).Bool("dict", t.dict).Msg("type defined")
	return t, nil
}

// MustType is NewType for static type tables.
func (r *Registry) MustType(spec TypeSpec) *Type {
	t, err := r.NewType(spec)
	if err != nil {
		panic(err)
	}
	return t
}

// Type returns the most recently defined type with name.
func (r *Registry) Type(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// TypeNames lists registered type names in sorted order.
func (r *Registry) TypeNames() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
