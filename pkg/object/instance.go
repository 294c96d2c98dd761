package object

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/jython/jython-sub004/pkg/runtime"
)

var instanceIDs atomic.Uint64

// Instance is an object of a Type. Slot cells are fixed at allocation; the
// own-attribute store exists only when the type permits it.
type Instance struct {
	id  uint64
	typ *Type

	mu    sync.RWMutex
	slots []runtime.Value
	dict  map[string]runtime.Value

	// Host is the native payload read by Field accessors.
	Host any
}

// Allocate builds a raw instance of t without running any constructor.
func (t *Type) Allocate() *Instance {
	inst := &Instance{
		id:    instanceIDs.Add(1),
		typ:   t,
		slots: make([]runtime.Value, t.nslots),
	}
	if t.dict {
		inst.dict = map[string]runtime.Value{}
	}
	return inst
}

func (i *Instance) Kind() runtime.Kind { return runtime.KindInstance }

func (i *Instance) TypeName() string { return i.typ.name }

func (i *Instance) String() string {
	return fmt.Sprintf("<%s object #%d>", i.typ.name, i.id)
}

func (i *Instance) ID() uint64 { return i.id }

func (i *Instance) Type() *Type { return i.typ }

// HasDict reports whether i has an own-attribute store.
func (i *Instance) HasDict() bool { return i.dict != nil }

// DictGet reads the own-attribute store.
func (i *Instance) DictGet(name string) (runtime.Value, bool) {
	if i.dict == nil {
		return nil, false
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.dict[name]
	return v, ok
}

// DictSet writes the own-attribute store and reports whether one exists.
func (i *Instance) DictSet(name string, v runtime.Value) bool {
	if i.dict == nil {
		return false
	}
	i.mu.Lock()
	i.dict[name] = v
	i.mu.Unlock()
	return true
}

// DictDelete removes name from the own-attribute store.
func (i *Instance) DictDelete(name string) bool {
	if i.dict == nil {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.dict[name]; !ok {
		return false
	}
	delete(i.dict, name)
	return true
}

// DictNames lists own attribute names in sorted order.
func (i *Instance) DictNames() []string {
	if i.dict == nil {
		return nil
	}
	i.mu.RLock()
	names := make([]string, 0, len(i.dict))
	for name := range i.dict {
		names = append(names, name)
	}
	i.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (i *Instance) slot(idx int) runtime.Value {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.slots[idx]
}

func (i *Instance) setSlot(idx int, v runtime.Value) {
	i.mu.Lock()
	i.slots[idx] = v
	i.mu.Unlock()
}
