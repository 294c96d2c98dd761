// Package iteration implements forward-only iterators and the generator
// suspension protocol.
package iteration

import (
	"fmt"
	"sync"

	"github.com/jython/jython-sub004/pkg/runtime"
)

// Iterator yields values until done. Once done it stays done.
type Iterator interface {
	runtime.Value
	Next() (runtime.Value, bool, error)
}

// causer is implemented by iterators that remember why they stopped.
type causer interface {
	Cause() error
}

// Advance is Next for callers that expect an exception-like end: exhaustion
// becomes the iterator's stored cause, or a fresh StopIteration.
func Advance(it Iterator) (runtime.Value, error) {
	v, done, err := it.Next()
	if err != nil {
		return nil, err
	}
	if !done {
		return v, nil
	}
	if c, ok := it.(causer); ok {
		if cause := c.Cause(); cause != nil {
			return nil, cause
		}
	}
	return nil, runtime.Signal(runtime.StopIteration)
}

// Collect drains it.
func Collect(it Iterator) ([]runtime.Value, error) {
	var out []runtime.Value
	for {
		v, done, err := it.Next()
		if err != nil {
			return out, err
		}
		if done {
			return out, nil
		}
		out = append(out, v)
	}
}

// NextFunc produces the next value. Returning a StopIteration error ends the
// iteration and keeps that error as the stored cause.
type NextFunc func() (runtime.Value, bool, error)

// FuncIterator adapts a NextFunc.
type FuncIterator struct {
	name string
	next NextFunc

	mu    sync.Mutex
	done  bool
	cause error
}

func NewFunc(name string, next NextFunc) *FuncIterator {
	return &FuncIterator{name: name, next: next}
}

func (it *FuncIterator) Kind() runtime.Kind { return runtime.KindIterator }

func (it *FuncIterator) TypeName() string { return it.name }

func (it *FuncIterator) String() string { return fmt.Sprintf("<%s object>", it.name) }

func (it *FuncIterator) Next() (runtime.Value, bool, error) {
	it.mu.Lock()
	if it.done {
		it.mu.Unlock()
		return nil, true, nil
	}
	it.mu.Unlock()
	v, done, err := it.next()
	if err != nil && runtime.IsKind(err, runtime.StopIteration) {
		it.finish(err)
		return nil, true, nil
	}
	if err != nil {
		it.finish(nil)
		return nil, true, err
	}
	if done {
		it.finish(nil)
		return nil, true, nil
	}
	return v, false, nil
}

func (it *FuncIterator) finish(cause error) {
	it.mu.Lock()
	it.done = true
	it.cause = cause
	it.mu.Unlock()
}

// Cause is the stop error seen at exhaustion, if any.
func (it *FuncIterator) Cause() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.cause
}
