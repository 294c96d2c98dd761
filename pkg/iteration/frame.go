package iteration

import (
	"fmt"
	goruntime "runtime"
	"sync"

	"github.com/jython/jython-sub004/pkg/runtime"
)

type ResumeKind int

const (
	// ResumeValue delivers a value at the suspension point.
	ResumeValue ResumeKind = iota
	// ResumeThrow raises Err at the suspension point.
	ResumeThrow
	// ResumeClose raises the cancellation signal at the suspension point.
	ResumeClose
)

// Resumption is what a frame receives when resumed.
type Resumption struct {
	Kind  ResumeKind
	Value runtime.Value
	Err   error
}

type OutcomeKind int

const (
	Yielded OutcomeKind = iota
	Completed
	Failed
)

// Outcome is how a resumed frame gave control back. Completed carries the
// return value, Failed the escaping error.
type Outcome struct {
	Kind  OutcomeKind
	Value runtime.Value
	Err   error
}

// Frame is a suspended computation, run by the execution engine until it
// yields, returns or raises.
type Frame interface {
	Resume(r Resumption) Outcome
}

// Releaser is implemented by frames holding resources beyond the frame
// itself; Release is called once the generator will never resume again.
type Releaser interface {
	Release()
}

// Body is the code of a FuncFrame. It yields through y and returns its
// result value.
type Body func(y *Yielder) (runtime.Value, error)

// FuncFrame runs a Go function as a frame on its own goroutine, handing
// control back and forth over unbuffered channels.
type FuncFrame struct {
	body Body

	requests chan Resumption
	results  chan Outcome

	mu       sync.Mutex
	started  bool
	finished bool
	released bool
}

func NewFuncFrame(body Body) *FuncFrame {
	return &FuncFrame{
		body:     body,
		requests: make(chan Resumption),
		results:  make(chan Outcome),
	}
}

func (f *FuncFrame) Resume(r Resumption) Outcome {
	f.mu.Lock()
	if f.finished || f.released {
		f.mu.Unlock()
		return Outcome{Kind: Completed, Value: runtime.None}
	}
	if !f.started {
		f.started = true
		go f.run()
	}
	requests := f.requests
	f.mu.Unlock()

	requests <- r
	out, ok := <-f.results
	if !ok {
		out = Outcome{Kind: Completed, Value: runtime.None}
	}
	if out.Kind != Yielded {
		f.mu.Lock()
		f.finished = true
		f.mu.Unlock()
	}
	return out
}

// Release stops a goroutine parked at a yield. It never returns to the body.
func (f *FuncFrame) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released {
		return
	}
	f.released = true
	close(f.requests)
}

func (f *FuncFrame) run() {
	defer close(f.results)

	first, ok := <-f.requests
	if !ok {
		return
	}
	switch first.Kind {
	case ResumeThrow:
		f.results <- Outcome{Kind: Failed, Err: first.Err}
		return
	case ResumeClose:
		f.results <- Outcome{Kind: Failed, Err: runtime.Signal(runtime.GeneratorExit)}
		return
	}

	var (
		value runtime.Value
		err   error
	)
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = runtime.Errorf(runtime.InternalError, "generator body panicked: %v", p)
			}
		}()
		value, err = f.body(&Yielder{frame: f})
	}()
	if err != nil {
		f.results <- Outcome{Kind: Failed, Err: err}
		return
	}
	if value == nil {
		value = runtime.None
	}
	f.results <- Outcome{Kind: Completed, Value: value}
}

// Yielder is the body's handle on its suspension point.
type Yielder struct {
	frame *FuncFrame
}

// Yield suspends with v. It returns the value sent on resumption, or the
// error thrown into the frame; close arrives as GeneratorExit.
func (y *Yielder) Yield(v runtime.Value) (runtime.Value, error) {
	if v == nil {
		v = runtime.None
	}
	y.frame.results <- Outcome{Kind: Yielded, Value: v}
	r, ok := <-y.frame.requests
	if !ok {
		goruntime.Goexit()
	}
	switch r.Kind {
	case ResumeValue:
		if r.Value == nil {
			return runtime.None, nil
		}
		return r.Value, nil
	case ResumeThrow:
		return nil, r.Err
	case ResumeClose:
		return nil, runtime.Signal(runtime.GeneratorExit)
	default:
		return nil, fmt.Errorf("iteration: unknown resumption kind %d", r.Kind)
	}
}
