package callable

import (
	"fmt"

	"github.com/jython/jython-sub004/pkg/runtime"
)

// ArityMessage renders the failure text for a call to info with given
// positional arguments.
func ArityMessage(info Info, given int) string {
	min, max := info.MinArgs, info.MaxArgs
	if max == Unbounded {
		return fmt.Sprintf("%s() requires at least %d arguments (%d given)", info.Name, min, given)
	}
	var blurb string
	switch {
	case min == max && min == 0:
		blurb = "no arguments"
	case min == max && min == 1:
		blurb = "exactly one argument"
	case min == max:
		blurb = fmt.Sprintf("exactly %d arguments", min)
	case min <= 0:
		blurb = fmt.Sprintf("at most %d arguments", max)
	default:
		blurb = fmt.Sprintf("%d-%d arguments", min, max)
	}
	return fmt.Sprintf("%s() takes %s (%d given)", info.Name, blurb, given)
}

// UnexpectedCall builds the error raised when no entry point of a callable
// accepts the call shape.
func UnexpectedCall(info Info, given int, keywords bool) error {
	if keywords {
		return runtime.Errorf(runtime.ArityMismatch, "%s() takes no keyword arguments", info.Name)
	}
	return runtime.NewError(runtime.ArityMismatch, ArityMessage(info, given))
}
