package iteration

import (
	"sync"

	"github.com/jython/jython-sub004/pkg/runtime"
)

// Sequence is an indexable container. Tuples and lists satisfy it.
type Sequence interface {
	runtime.Value
	Len() int
	Item(idx int) runtime.Value
}

// walk is the shared state of size-checked collection iterators. The size is
// recorded at the start and compared only once the walk runs out.
type walk struct {
	mu    sync.Mutex
	size  int
	pos   int
	done  bool
	cause error
}

func (w *walk) exhaust(container runtime.Value, current int) error {
	w.done = true
	if current == w.size {
		return nil
	}
	w.cause = runtime.Errorf(runtime.ConcurrentMutation, "%s changed size during iteration", runtime.TypeName(container))
	return w.cause
}

// Cause is the ConcurrentMutation failure raised at exhaustion, if any.
func (w *walk) Cause() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cause
}

// SequenceIterator walks a Sequence by index.
type SequenceIterator struct {
	walk
	seq Sequence
}

func Iterate(seq Sequence) *SequenceIterator {
	return &SequenceIterator{walk: walk{size: seq.Len()}, seq: seq}
}

func (it *SequenceIterator) Kind() runtime.Kind { return runtime.KindIterator }

func (it *SequenceIterator) TypeName() string { return runtime.TypeName(it.seq) + "iterator" }

func (it *SequenceIterator) Next() (runtime.Value, bool, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.done {
		return nil, true, nil
	}
	n := it.seq.Len()
	if it.pos < n {
		v := it.seq.Item(it.pos)
		it.pos++
		return v, false, nil
	}
	if err := it.exhaust(it.seq, n); err != nil {
		return nil, true, err
	}
	return nil, true, nil
}

// SetIterator walks a set in insertion order, skipping discarded members.
type SetIterator struct {
	walk
	set *runtime.SetValue
}

func IterateSet(set *runtime.SetValue) *SetIterator {
	return &SetIterator{walk: walk{size: set.Len()}, set: set}
}

func (it *SetIterator) Kind() runtime.Kind { return runtime.KindIterator }

func (it *SetIterator) TypeName() string { return "setiterator" }

func (it *SetIterator) Next() (runtime.Value, bool, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.done {
		return nil, true, nil
	}
	for it.pos < it.set.SlotCount() {
		v, _ := it.set.Slot(it.pos)
		it.pos++
		if v != nil {
			return v, false, nil
		}
	}
	if err := it.exhaust(it.set, it.set.Len()); err != nil {
		return nil, true, err
	}
	return nil, true, nil
}

// For returns an iterator over v: iterators are returned as is,
// collections get a size-checked walk.
func For(v runtime.Value) (Iterator, error) {
	switch val := v.(type) {
	case Iterator:
		return val, nil
	case *runtime.SetValue:
		return IterateSet(val), nil
	case Sequence:
		return Iterate(val), nil
	case runtime.StringValue:
		runes := []rune(val.Val)
		els := make([]runtime.Value, len(runes))
		for idx, r := range runes {
			els[idx] = runtime.Str(string(r))
		}
		return Iterate(runtime.Tuple(els...)), nil
	default:
		return nil, runtime.Errorf(runtime.TypeError, "'%s' object is not iterable", runtime.TypeName(v))
	}
}
