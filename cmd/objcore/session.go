package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jython/jython-sub004/pkg/interpreter"
	"github.com/jython/jython-sub004/pkg/iteration"
	"github.com/jython/jython-sub004/pkg/object"
	"github.com/jython/jython-sub004/pkg/runtime"
	"github.com/jython/jython-sub004/pkg/weakcache"
)

var errQuit = errors.New("quit")

// session evaluates one shell command at a time against an interpreter.
type session struct {
	interp *interpreter.Interpreter
	vars   map[string]runtime.Value
}

func newSession(interp *interpreter.Interpreter) *session {
	return &session{interp: interp, vars: map[string]runtime.Value{}}
}

func (s *session) exec(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case ":quit", "quit", "exit":
		return "", errQuit
	case "help", ":help":
		printReplHelp()
		return "", nil
	case "type":
		return s.defineType(args)
	case "new":
		if len(args) < 2 {
			return "", usageError("new <var> <Type> [arg ...]")
		}
		typ, err := s.resolveType(args[1])
		if err != nil {
			return "", err
		}
		ctorArgs, err := s.values(args[2:])
		if err != nil {
			return "", err
		}
		v, err := s.interp.Call(typ, ctorArgs...)
		if err != nil {
			return "", err
		}
		s.vars[args[0]] = v
		return runtime.Repr(v), nil
	case "get":
		if len(args) != 2 {
			return "", usageError("get <var> <attr>")
		}
		target, err := s.lookup(args[0])
		if err != nil {
			return "", err
		}
		v, err := s.interp.GetAttr(target, args[1])
		if err != nil {
			return "", err
		}
		return runtime.Repr(v), nil
	case "set":
		if len(args) != 3 {
			return "", usageError("set <var> <attr> <value>")
		}
		inst, err := s.instance(args[0])
		if err != nil {
			return "", err
		}
		v, err := s.value(args[2])
		if err != nil {
			return "", err
		}
		return "", s.interp.SetAttr(inst, args[1], v)
	case "del":
		if len(args) != 2 {
			return "", usageError("del <var> <attr>")
		}
		inst, err := s.instance(args[0])
		if err != nil {
			return "", err
		}
		return "", s.interp.DelAttr(inst, args[1])
	case "call":
		if len(args) < 2 {
			return "", usageError("call <var> <method> [arg ...]")
		}
		target, err := s.lookup(args[0])
		if err != nil {
			return "", err
		}
		fn, err := s.interp.GetAttr(target, args[1])
		if err != nil {
			return "", err
		}
		callArgs, err := s.values(args[2:])
		if err != nil {
			return "", err
		}
		v, err := s.interp.Call(fn, callArgs...)
		if err != nil {
			return "", err
		}
		return runtime.Repr(v), nil
	case "gen":
		if len(args) != 2 {
			return "", usageError("gen <var> <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("gen: %q is not a count", args[1])
		}
		s.vars[args[0]] = s.interp.Generate(args[0], countTo(int64(n)))
		return "", nil
	case "iter":
		if len(args) != 2 {
			return "", usageError("iter <var> <source>")
		}
		src, err := s.value(args[1])
		if err != nil {
			return "", err
		}
		it, err := s.interp.Iterate(src)
		if err != nil {
			return "", err
		}
		s.vars[args[0]] = it
		return "", nil
	case "next":
		if len(args) != 1 {
			return "", usageError("next <var>")
		}
		v, err := s.lookup(args[0])
		if err != nil {
			return "", err
		}
		it, ok := v.(iteration.Iterator)
		if !ok {
			return "", runtime.Errorf(runtime.TypeError, "'%s' object is not an iterator", runtime.TypeName(v))
		}
		item, err := iteration.Advance(it)
		if err != nil {
			return "", err
		}
		return runtime.Repr(item), nil
	case "close":
		if len(args) != 1 {
			return "", usageError("close <var>")
		}
		v, err := s.lookup(args[0])
		if err != nil {
			return "", err
		}
		gen, ok := v.(*iteration.Generator)
		if !ok {
			return "", runtime.Errorf(runtime.TypeError, "'%s' object is not a generator", runtime.TypeName(v))
		}
		return "", gen.Close()
	case "mro":
		if len(args) != 1 {
			return "", usageError("mro <Type>")
		}
		typ, err := s.resolveType(args[0])
		if err != nil {
			return "", err
		}
		names := make([]string, 0, len(typ.MRO()))
		for _, t := range typ.MRO() {
			names = append(names, t.Name())
		}
		return strings.Join(names, " "), nil
	case "id":
		if len(args) != 1 {
			return "", usageError("id <var>")
		}
		inst, err := s.instance(args[0])
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(s.interp.ID(inst), 10), nil
	case "types":
		return strings.Join(s.interp.Registry().TypeNames(), " "), nil
	case "classes":
		table := s.interp.Classes()
		parts := make([]string, 0, 4)
		for _, c := range []weakcache.Category{weakcache.CanonicalClass, weakcache.LazyClass, weakcache.AdapterClass, weakcache.Adapter} {
			parts = append(parts, fmt.Sprintf("%s=%d", c, table.Count(c)))
		}
		return strings.Join(parts, " "), nil
	case "vars":
		names := make([]string, 0, len(s.vars))
		for name, v := range s.vars {
			names = append(names, name+"="+runtime.Repr(v))
		}
		sort.Strings(names)
		return strings.Join(names, "\n"), nil
	default:
		return "", fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (s *session) defineType(args []string) (string, error) {
	if len(args) == 0 {
		return "", usageError("type <Name> [base ...] [--slots a,b] [--dict]")
	}
	spec := object.TypeSpec{Name: args[0]}
	for idx := 1; idx < len(args); idx++ {
		switch arg := args[idx]; {
		case arg == "--dict":
			spec.Dict = true
		case arg == "--slots":
			if idx+1 >= len(args) {
				return "", usageError("--slots a,b")
			}
			idx++
			spec.Slots = strings.Split(args[idx], ",")
		default:
			base, err := s.resolveType(arg)
			if err != nil {
				return "", err
			}
			spec.Bases = append(spec.Bases, base)
		}
	}
	typ, err := s.interp.DefineType(spec)
	if err != nil {
		return "", err
	}
	s.vars[typ.Name()] = typ
	return typ.String(), nil
}

// resolveType finds a defined type, falling back to the host class loader.
func (s *session) resolveType(name string) (*object.Type, error) {
	if typ, ok := s.interp.Registry().Type(name); ok {
		return typ, nil
	}
	return s.interp.LoadClass(name)
}

func (s *session) lookup(name string) (runtime.Value, error) {
	if v, ok := s.vars[name]; ok {
		return v, nil
	}
	if typ, ok := s.interp.Registry().Type(name); ok {
		return typ, nil
	}
	return nil, fmt.Errorf("undefined variable %q", name)
}

func (s *session) instance(name string) (*object.Instance, error) {
	v, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	inst, ok := v.(*object.Instance)
	if !ok {
		return nil, runtime.Errorf(runtime.TypeError, "'%s' is not an instance", name)
	}
	return inst, nil
}

func (s *session) values(tokens []string) ([]runtime.Value, error) {
	out := make([]runtime.Value, len(tokens))
	for idx, tok := range tokens {
		v, err := s.value(tok)
		if err != nil {
			return nil, err
		}
		out[idx] = v
	}
	return out, nil
}

// value parses a literal. Comma-separated tokens become tuples and bare
// names refer to session variables.
func (s *session) value(tok string) (runtime.Value, error) {
	if strings.Contains(tok, ",") && !strings.HasPrefix(tok, `"`) {
		parts := strings.Split(tok, ",")
		els := make([]runtime.Value, 0, len(parts))
		for _, part := range parts {
			if part == "" {
				continue
			}
			v, err := s.value(part)
			if err != nil {
				return nil, err
			}
			els = append(els, v)
		}
		return runtime.Tuple(els...), nil
	}
	switch tok {
	case "None":
		return runtime.None, nil
	case "True":
		return runtime.Bool(true), nil
	case "False":
		return runtime.Bool(false), nil
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return runtime.Int(n), nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return runtime.Float(f), nil
	}
	if strings.HasPrefix(tok, `"`) {
		str, err := strconv.Unquote(tok)
		if err != nil {
			return nil, fmt.Errorf("bad string literal %s", tok)
		}
		return runtime.Str(str), nil
	}
	return s.lookup(tok)
}

func countTo(n int64) iteration.Body {
	return func(y *iteration.Yielder) (runtime.Value, error) {
		for i := int64(0); i < n; i++ {
			if _, err := y.Yield(runtime.Int(i)); err != nil {
				return nil, err
			}
		}
		return runtime.Int(n), nil
	}
}

func usageError(form string) error {
	return fmt.Errorf("usage: %s", form)
}

func describe(err error) string {
	return interpreter.Describe(interpreter.BuildDiagnostic(err))
}
