package iteration

import (
	"fmt"
	goruntime "runtime"
	"sync"

	"github.com/jython/jython-sub004/pkg/diag"
	"github.com/jython/jython-sub004/pkg/runtime"
)

type State int

const (
	Created State = iota
	Suspended
	Running
	Exhausted
	Closed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Exhausted:
		return "exhausted"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// GeneratorOptions configure a Generator.
type GeneratorOptions struct {
	Name string
	// ImplicitClose closes a suspended generator once it becomes
	// unreachable.
	ImplicitClose bool
	// Sink receives failures from implicit closes. Nil discards them.
	Sink diag.Sink
}

// Generator drives a Frame through the suspension protocol. Callers must
// not resume one generator concurrently; doing so fails with AlreadyRunning.
type Generator struct {
	c *generatorCore
}

// generatorCore is kept apart from the handle so an unreachable handle can
// be cleaned up through it.
type generatorCore struct {
	name string
	sink diag.Sink

	mu    sync.Mutex
	state State
	// frame is nil while checked out by a running resume.
	frame  Frame
	result runtime.Value
}

func NewGenerator(frame Frame, opts GeneratorOptions) *Generator {
	name := opts.Name
	if name == "" {
		name = "generator"
	}
	sink := opts.Sink
	if sink == nil {
		sink = diag.Discard
	}
	g := &Generator{c: &generatorCore{name: name, sink: sink, frame: frame}}
	if opts.ImplicitClose {
		goruntime.AddCleanup(g, (*generatorCore).startReclaim, g.c)
	}
	return g
}

// Generate is NewGenerator over a FuncFrame running body.
func Generate(body Body, opts GeneratorOptions) *Generator {
	return NewGenerator(NewFuncFrame(body), opts)
}

func (g *Generator) Kind() runtime.Kind { return runtime.KindGenerator }

func (g *Generator) TypeName() string { return "generator" }

func (g *Generator) String() string { return fmt.Sprintf("<generator object %s>", g.c.name) }

func (g *Generator) Name() string { return g.c.name }

func (g *Generator) State() State {
	g.c.mu.Lock()
	defer g.c.mu.Unlock()
	return g.c.state
}

// Result is the frame's return value once exhausted, None before.
func (g *Generator) Result() runtime.Value {
	g.c.mu.Lock()
	defer g.c.mu.Unlock()
	if g.c.result == nil {
		return runtime.None
	}
	return g.c.result
}

// Next resumes with None.
func (g *Generator) Next() (runtime.Value, bool, error) {
	return g.c.send(runtime.None)
}

// Send resumes with v. A just-created generator only accepts None.
func (g *Generator) Send(v runtime.Value) (runtime.Value, bool, error) {
	return g.c.send(v)
}

// Throw raises err at the suspension point. A generator that never started
// raises it directly and is exhausted.
func (g *Generator) Throw(err error) (runtime.Value, bool, error) {
	return g.c.throw(err)
}

// Close cancels the generator. Closing an exhausted or closed generator is a
// no-op.
func (g *Generator) Close() error {
	return g.c.close()
}

func (c *generatorCore) alreadyRunning() error {
	return runtime.Errorf(runtime.AlreadyRunning, "generator already executing")
}

func (c *generatorCore) send(v runtime.Value) (runtime.Value, bool, error) {
	c.mu.Lock()
	switch c.state {
	case Running:
		c.mu.Unlock()
		return nil, false, c.alreadyRunning()
	case Exhausted, Closed:
		c.mu.Unlock()
		return nil, true, nil
	case Created:
		if !runtime.IsNone(v) {
			c.mu.Unlock()
			return nil, false, runtime.Errorf(runtime.InvalidResumeValue,
				"can't send non-None value to a just-started generator")
		}
	}
	frame := c.checkout()
	c.mu.Unlock()
	out := c.resume(frame, Resumption{Kind: ResumeValue, Value: v})
	return c.settle(frame, out)
}

func (c *generatorCore) throw(err error) (runtime.Value, bool, error) {
	c.mu.Lock()
	switch c.state {
	case Running:
		c.mu.Unlock()
		return nil, false, c.alreadyRunning()
	case Created:
		frame := c.frame
		c.state = Exhausted
		c.mu.Unlock()
		release(frame)
		return nil, true, err
	case Exhausted, Closed:
		c.mu.Unlock()
		return nil, true, err
	}
	frame := c.checkout()
	c.mu.Unlock()
	out := c.resume(frame, Resumption{Kind: ResumeThrow, Err: err})
	return c.settle(frame, out)
}

func (c *generatorCore) close() error {
	c.mu.Lock()
	switch c.state {
	case Running:
		c.mu.Unlock()
		return c.alreadyRunning()
	case Closed:
		c.mu.Unlock()
		return nil
	case Created, Exhausted:
		frame := c.frame
		c.state = Closed
		c.mu.Unlock()
		release(frame)
		return nil
	}
	frame := c.checkout()
	c.mu.Unlock()

	out := c.resume(frame, Resumption{Kind: ResumeClose})
	var err error
	switch out.Kind {
	case Yielded:
		err = runtime.Errorf(runtime.IgnoredCancellation, "generator ignored GeneratorExit")
	case Failed:
		if !runtime.IsKind(out.Err, runtime.GeneratorExit) && !runtime.IsKind(out.Err, runtime.StopIteration) {
			err = out.Err
		}
	}
	c.mu.Lock()
	c.frame = frame
	c.state = Closed
	c.mu.Unlock()
	release(frame)
	return err
}

// checkout hands the frame to the caller. c.mu must be held.
func (c *generatorCore) checkout() Frame {
	frame := c.frame
	c.frame = nil
	c.state = Running
	return frame
}

// resume runs a checked-out frame. If Resume panics the frame is handed
// back and the generator is exhausted before the panic continues.
func (c *generatorCore) resume(frame Frame, r Resumption) Outcome {
	defer func() {
		if p := recover(); p != nil {
			c.mu.Lock()
			c.frame = frame
			c.state = Exhausted
			c.mu.Unlock()
			release(frame)
			panic(p)
		}
	}()
	return frame.Resume(r)
}

func (c *generatorCore) settle(frame Frame, out Outcome) (runtime.Value, bool, error) {
	c.mu.Lock()
	c.frame = frame
	switch out.Kind {
	case Yielded:
		c.state = Suspended
		c.mu.Unlock()
		return out.Value, false, nil
	case Completed:
		c.state = Exhausted
		c.result = out.Value
		c.mu.Unlock()
		return nil, true, nil
	default:
		c.state = Exhausted
		c.mu.Unlock()
		if runtime.IsKind(out.Err, runtime.StopIteration) {
			return nil, true, nil
		}
		return nil, true, out.Err
	}
}

// startReclaim is the cleanup for an unreachable handle. Closing runs frame
// code that may block, so it must not run on the shared cleanup goroutine.
func (c *generatorCore) startReclaim() {
	go c.reclaim()
}

// reclaim closes the generator. Failures go to the sink.
func (c *generatorCore) reclaim() {
	if err := c.close(); err != nil {
		c.sink.Report("generator "+c.name, err)
	}
}

func release(frame Frame) {
	if r, ok := frame.(Releaser); ok {
		r.Release()
	}
}
