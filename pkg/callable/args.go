package callable

import (
	"github.com/jython/jython-sub004/pkg/runtime"
)

// ParseArgs binds positional and keyword arguments to the parameter names
// of a keyword-capable callable. Missing optional parameters are left nil.
// Positional arguments past the named parameters, which an unbounded
// callable may receive, follow the named slots in order.
func ParseArgs(info Info, names []string, args []runtime.Value, kw []Keyword) ([]runtime.Value, error) {
	if info.MaxArgs != Unbounded && len(args) > info.MaxArgs {
		return nil, UnexpectedCall(info, len(args), false)
	}
	bound := make([]runtime.Value, len(names), max(len(names), len(args)))
	copy(bound, args)
	for _, k := range kw {
		pos := -1
		for idx, name := range names {
			if name == k.Name {
				pos = idx
				break
			}
		}
		if pos < 0 {
			return nil, runtime.Errorf(runtime.TypeError, "%s() got an unexpected keyword argument '%s'", info.Name, k.Name)
		}
		if bound[pos] != nil {
			return nil, runtime.Errorf(runtime.TypeError, "%s() got multiple values for keyword argument '%s'", info.Name, k.Name)
		}
		bound[pos] = k.Value
	}
	for idx := 0; idx < info.MinArgs && idx < len(names); idx++ {
		if bound[idx] == nil {
			given := len(args) + len(kw)
			err := runtime.NewError(runtime.ArityMismatch, ArityMessage(info, given))
			err.Message += ": missing '" + names[idx] + "'"
			return nil, err
		}
	}
	if len(args) > len(names) {
		bound = append(bound, args[len(names):]...)
	}
	return bound, nil
}
