package main

import (
	"fmt"
	"io"

	"github.com/jython/jython-sub004/pkg/interpreter"
)

// demoScript walks through attribute resolution, host classes, generators
// and iteration. Lines marked as failing are expected to raise.
var demoScript = []struct {
	line  string
	fails bool
}{
	{line: "type A --dict"},
	{line: "type B A"},
	{line: "type C A"},
	{line: "type D B C"},
	{line: "mro D"},
	{line: "new d D"},
	{line: "set d colour \"red\""},
	{line: "get d colour"},
	{line: "get d missing", fails: true},
	{line: "type Slotted --slots a,b"},
	{line: "new s Slotted"},
	{line: "set s a 1"},
	{line: "get s a"},
	{line: "get s b", fails: true},
	{line: "set s c 3", fails: true},
	{line: "new p Point 3 4"},
	{line: "call p norm"},
	{line: "call p norm 1", fails: true},
	{line: "new l Line"},
	{line: "set l end 6,8"},
	{line: "set l start p"},
	{line: "get l end"},
	{line: "call l length"},
	{line: "gen g 3"},
	{line: "next g"},
	{line: "next g"},
	{line: "close g"},
	{line: "next g", fails: true},
	{line: "iter it 1,2"},
	{line: "next it"},
	{line: "next it"},
	{line: "next it", fails: true},
	{line: "classes"},
}

func runDemo(interp *interpreter.Interpreter, out io.Writer) int {
	sess := newSession(interp)
	status := 0
	for _, step := range demoScript {
		fmt.Fprintf(out, "> %s\n", step.line)
		result, err := sess.exec(step.line)
		switch {
		case err != nil && step.fails:
			fmt.Fprintln(out, describe(err))
		case err != nil:
			fmt.Fprintln(out, describe(err))
			status = 1
		case step.fails:
			fmt.Fprintln(out, "expected a failure")
			status = 1
		case result != "":
			fmt.Fprintln(out, result)
		}
	}
	return status
}
