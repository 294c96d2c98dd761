package object

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-set/v3"

	"github.com/jython/jython-sub004/pkg/runtime"
)

var typeIDs atomic.Uint64

// TypeSpec describes a type at definition time.
type TypeSpec struct {
	Name  string
	Bases []*Type
	// Slots declares fixed per-instance storage; each name gets a Slot
	// descriptor.
	Slots []string
	// Dict gives instances an own-attribute store. Inherited from bases.
	Dict bool
	// Layout marks a type whose instances have a native storage layout.
	// Constructors declared on it only build instances whose static base
	// is this type.
	Layout bool
}

// Type is a class: a named member table searched in method-resolution
// order.
type Type struct {
	id     uint64
	name   string
	bases  []*Type
	mro    []*Type
	layout bool
	dict   bool
	nslots int
	// solid is the type whose slot layout instances follow.
	solid *Type

	// fastPath is set once resolution has seen that this type uses the
	// built-in attribute getter. It is never cleared.
	fastPath atomic.Bool

	mu      sync.RWMutex
	members map[string]*Descriptor
}

func newType(spec TypeSpec) (*Type, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("object: type name is required")
	}
	if set.From(spec.Bases).Size() != len(spec.Bases) {
		return nil, fmt.Errorf("object: %s: duplicate base type", name)
	}
	for _, base := range spec.Bases {
		if base == nil {
			return nil, fmt.Errorf("object: %s: nil base type", name)
		}
	}
	t := &Type{
		id:      typeIDs.Add(1),
		name:    name,
		bases:   append([]*Type(nil), spec.Bases...),
		layout:  spec.Layout,
		dict:    spec.Dict,
		members: map[string]*Descriptor{},
	}
	mro, err := linearize(t, t.bases)
	if err != nil {
		return nil, err
	}
	t.mro = mro
	solid, err := solidBase(name, t.bases)
	if err != nil {
		return nil, err
	}
	for _, base := range t.bases {
		if base.dict {
			t.dict = true
		}
	}
	t.solid = t
	if solid != nil {
		t.nslots = solid.nslots
		if len(spec.Slots) == 0 {
			t.solid = solid
		}
	}
	seen := set.New[string](len(spec.Slots))
	for _, slot := range spec.Slots {
		if !seen.Insert(slot) {
			return nil, fmt.Errorf("object: %s: duplicate slot %q", name, slot)
		}
		d := NewSlot(slot, t.nslots, false)
		t.nslots++
		if err := t.Define(d); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// linearize computes the C3 method-resolution order.
func linearize(t *Type, bases []*Type) ([]*Type, error) {
	seqs := make([][]*Type, 0, len(bases)+1)
	for _, base := range bases {
		seqs = append(seqs, append([]*Type(nil), base.mro...))
	}
	seqs = append(seqs, append([]*Type(nil), bases...))
	result := []*Type{t}
	for {
		live := seqs[:0]
		for _, seq := range seqs {
			if len(seq) > 0 {
				live = append(live, seq)
			}
		}
		seqs = live
		if len(seqs) == 0 {
			return result, nil
		}
		tails := set.New[*Type](8)
		for _, seq := range seqs {
			tails.InsertSlice(seq[1:])
		}
		var next *Type
		for _, seq := range seqs {
			if !tails.Contains(seq[0]) {
				next = seq[0]
				break
			}
		}
		if next == nil {
			names := make([]string, len(bases))
			for idx, base := range bases {
				names[idx] = base.name
			}
			return nil, fmt.Errorf("object: %s: cannot create a consistent method resolution order for bases %s",
				t.name, strings.Join(names, ", "))
		}
		result = append(result, next)
		for idx, seq := range seqs {
			if seq[0] == next {
				seqs[idx] = seq[1:]
			}
		}
	}
}

// solidBase picks the base whose slot layout the new type extends. Bases
// with unrelated slot layouts conflict.
func solidBase(name string, bases []*Type) (*Type, error) {
	var winner *Type
	for _, base := range bases {
		candidate := base.solid
		if winner == nil {
			winner = candidate
			continue
		}
		switch {
		case winner.IsSubtype(candidate):
		case candidate.IsSubtype(winner):
			winner = candidate
		default:
			return nil, fmt.Errorf("object: %s: multiple bases have instance layout conflict (%s, %s)",
				name, winner.name, candidate.name)
		}
	}
	return winner, nil
}

func (t *Type) Kind() runtime.Kind { return runtime.KindType }

func (t *Type) TypeName() string { return "type" }

func (t *Type) String() string { return fmt.Sprintf("<class '%s'>", t.name) }

func (t *Type) ID() uint64 { return t.id }

func (t *Type) Name() string { return t.name }

func (t *Type) Bases() []*Type { return append([]*Type(nil), t.bases...) }

// MRO returns the member chain, starting with t.
func (t *Type) MRO() []*Type { return append([]*Type(nil), t.mro...) }

// HasDict reports whether instances carry an own-attribute store.
func (t *Type) HasDict() bool { return t.dict }

// SlotCount is the number of slot cells an instance needs.
func (t *Type) SlotCount() int { return t.nslots }

// FastPathEligible reports whether resolution may skip the getter-override
// lookup for this type.
func (t *Type) FastPathEligible() bool { return t.fastPath.Load() }

func (t *Type) markFastPath() bool {
	return t.fastPath.CompareAndSwap(false, true)
}

// IsSubtype reports whether other appears in t's member chain.
func (t *Type) IsSubtype(other *Type) bool {
	if other == nil {
		return false
	}
	for _, cur := range t.mro {
		if cur == other {
			return true
		}
	}
	return false
}

// StaticBase is the nearest type in the member chain with a native layout.
func (t *Type) StaticBase() *Type {
	for _, cur := range t.mro {
		if cur.layout {
			return cur
		}
	}
	return t.mro[len(t.mro)-1]
}

// Define attaches d under its name. A descriptor belongs to exactly one
// type.
func (t *Type) Define(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("object: %s: nil descriptor", t.name)
	}
	if d.name == "" {
		return fmt.Errorf("object: %s: descriptor without a name", t.name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if d.owner != nil && d.owner != t {
		return fmt.Errorf("object: descriptor %q already belongs to %s", d.name, d.owner.name)
	}
	d.owner = t
	t.members[d.name] = d
	return nil
}

// MustDefine is Define for static type tables.
func (t *Type) MustDefine(descriptors ...*Descriptor) *Type {
	for _, d := range descriptors {
		if err := t.Define(d); err != nil {
			panic(err)
		}
	}
	return t
}

// Undefine removes a member from t's own table. The fast-path flag is left
// as is.
func (t *Type) Undefine(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.members[name]; !ok {
		return false
	}
	delete(t.members, name)
	return true
}

// Own returns the descriptor defined directly on t.
func (t *Type) Own(name string) (*Descriptor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.members[name]
	return d, ok
}

// OwnNames lists t's own member names in sorted order.
func (t *Type) OwnNames() []string {
	t.mu.RLock()
	names := make([]string, 0, len(t.members))
	for name := range t.members {
		names = append(names, name)
	}
	t.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Lookup searches the member chain and reports where the descriptor was
// found.
func (t *Type) Lookup(name string) (*Descriptor, *Type) {
	for _, cur := range t.mro {
		if d, ok := cur.Own(name); ok {
			return d, cur
		}
	}
	return nil, nil
}
