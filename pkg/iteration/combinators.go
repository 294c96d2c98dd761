package iteration

import (
	"sync"

	"github.com/jython/jython-sub004/pkg/callable"
	"github.com/jython/jython-sub004/pkg/runtime"
)

// ChainIterator yields from each source in turn.
type ChainIterator struct {
	mu      sync.Mutex
	sources []Iterator
}

func Chain(sources ...Iterator) *ChainIterator {
	return &ChainIterator{sources: sources}
}

func (it *ChainIterator) Kind() runtime.Kind { return runtime.KindIterator }

func (it *ChainIterator) TypeName() string { return "chain" }

func (it *ChainIterator) Next() (runtime.Value, bool, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	for len(it.sources) > 0 {
		v, done, err := it.sources[0].Next()
		if err != nil {
			it.sources = nil
			return nil, true, err
		}
		if !done {
			return v, false, nil
		}
		it.sources = it.sources[1:]
	}
	return nil, true, nil
}

// MapIterator calls fn with one value from every source and stops with the
// shortest source.
type MapIterator struct {
	mu      sync.Mutex
	fn      callable.Callable
	sources []Iterator
	done    bool
}

func Map(fn callable.Callable, sources ...Iterator) *MapIterator {
	return &MapIterator{fn: fn, sources: sources}
}

func (it *MapIterator) Kind() runtime.Kind { return runtime.KindIterator }

func (it *MapIterator) TypeName() string { return "map" }

func (it *MapIterator) Next() (runtime.Value, bool, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.done || len(it.sources) == 0 {
		it.done = true
		return nil, true, nil
	}
	args := make([]runtime.Value, len(it.sources))
	for idx, src := range it.sources {
		v, done, err := src.Next()
		if err != nil || done {
			it.done = true
			return nil, true, err
		}
		args[idx] = v
	}
	v, err := it.fn.Call(args, nil)
	if err != nil {
		it.done = true
		return nil, true, err
	}
	return v, false, nil
}
