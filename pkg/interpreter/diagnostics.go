package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jython/jython-sub004/pkg/runtime"
)

type Diagnostic struct {
	Kind    runtime.ErrorKind
	Message string
	Notes   []string
}

// BuildDiagnostic summarises err. Each distinct cause in the chain becomes
// a note.
func BuildDiagnostic(err error) Diagnostic {
	if err == nil {
		return Diagnostic{}
	}
	diag := Diagnostic{Message: err.Error()}
	var rtErr *runtime.Error
	if errors.As(err, &rtErr) {
		diag.Kind = rtErr.Kind
		if rtErr.Message != "" {
			diag.Message = rtErr.Message
		}
	}
	seen := diag.Message
	for cause := errors.Unwrap(err); cause != nil && len(diag.Notes) < 8; cause = errors.Unwrap(cause) {
		msg := cause.Error()
		if msg == "" || strings.Contains(seen, msg) {
			continue
		}
		diag.Notes = append(diag.Notes, "caused by: "+msg)
		seen = msg
	}
	return diag
}

func Describe(d Diagnostic) string {
	message := strings.TrimSpace(d.Message)
	var b strings.Builder
	if d.Kind != "" && message != string(d.Kind) {
		fmt.Fprintf(&b, "runtime: %s: %s", d.Kind, message)
	} else {
		fmt.Fprintf(&b, "runtime: %s", message)
	}
	for _, note := range d.Notes {
		fmt.Fprintf(&b, "\nnote: %s", note)
	}
	return b.String()
}
