// Package interpreter wires the object model, class tables and generator
// machinery into one runtime instance.
package interpreter

import (
	"github.com/rs/zerolog/log"

	"github.com/jython/jython-sub004/pkg/callable"
	"github.com/jython/jython-sub004/pkg/config"
	"github.com/jython/jython-sub004/pkg/diag"
	"github.com/jython/jython-sub004/pkg/hostclass"
	"github.com/jython/jython-sub004/pkg/iteration"
	"github.com/jython/jython-sub004/pkg/object"
	"github.com/jython/jython-sub004/pkg/runtime"
	"github.com/jython/jython-sub004/pkg/weakcache"
)

type Interpreter struct {
	cfg     config.Config
	reg     *object.Registry
	classes *hostclass.Table
	sink    diag.Sink
}

// New builds an interpreter from cfg. loader resolves class names for
// LoadClass and may be nil.
func New(cfg config.Config, loader hostclass.Loader) *Interpreter {
	reg := object.NewRegistry(object.Options{FastPath: cfg.Resolver.FastPath})
	var sink diag.Sink = diag.Discard
	if cfg.Generators.ReportCleanupFailures {
		sink = diag.LogSink{}
	}
	interp := &Interpreter{
		cfg:     cfg,
		reg:     reg,
		classes: hostclass.NewTable(reg, loader, weakcache.Options{Name: "classes", TraceEvictions: cfg.Cache.TraceEvictions}),
		sink:    sink,
	}
	log.Debug().
		Bool("fast_path", cfg.Resolver.FastPath).
		Bool("implicit_close", cfg.Generators.ImplicitClose).
		Msg("interpreter ready")
	return interp
}

func (i *Interpreter) Config() config.Config { return i.cfg }

func (i *Interpreter) Registry() *object.Registry { return i.reg }

func (i *Interpreter) Classes() *hostclass.Table { return i.classes }

// DefineType registers a type; bases default to the root.
func (i *Interpreter) DefineType(spec object.TypeSpec) (*object.Type, error) {
	return i.reg.NewType(spec)
}

// GetAttr resolves name on an instance or a type.
func (i *Interpreter) GetAttr(v runtime.Value, name string) (runtime.Value, error) {
	return i.reg.Attribute(v, name)
}

func (i *Interpreter) SetAttr(inst *object.Instance, name string, value runtime.Value) error {
	return i.reg.SetAttr(inst, name, value)
}

func (i *Interpreter) DelAttr(inst *object.Instance, name string) error {
	return i.reg.DelAttr(inst, name)
}

// Call invokes fn, which may be any callable or a type.
func (i *Interpreter) Call(fn runtime.Value, args ...runtime.Value) (runtime.Value, error) {
	return object.Invoke(fn, args, nil)
}

func (i *Interpreter) CallKw(fn runtime.Value, args []runtime.Value, kw []callable.Keyword) (runtime.Value, error) {
	return object.Invoke(fn, args, kw)
}

// CallMethod resolves name on inst and calls the result.
func (i *Interpreter) CallMethod(inst *object.Instance, name string, args ...runtime.Value) (runtime.Value, error) {
	return i.reg.CallMethod(inst, name, args...)
}

func (i *Interpreter) Iterate(v runtime.Value) (iteration.Iterator, error) {
	return iteration.For(v)
}

// Generate starts a generator over body using the configured close policy.
func (i *Interpreter) Generate(name string, body iteration.Body) *iteration.Generator {
	return iteration.Generate(body, iteration.GeneratorOptions{
		Name:          name,
		ImplicitClose: i.cfg.Generators.ImplicitClose,
		Sink:          i.sink,
	})
}

// ID is the identity id of inst. Ids are never reused.
func (i *Interpreter) ID(inst *object.Instance) uint64 {
	return i.classes.IDs().ID(inst)
}

// ClassFor returns the canonical type of a host class.
func (i *Interpreter) ClassFor(hc *hostclass.HostClass) (*object.Type, error) {
	return i.classes.Canonical(hc)
}

// LoadClass resolves a class by name through the loader.
func (i *Interpreter) LoadClass(name string) (*object.Type, error) {
	return i.classes.Lazy(name)
}
